package xlsexport

type opKind int

const (
	opAdd opKind = iota
	opDelete
)

// columnOp is a mutation recorded before the set is resolved.
type columnOp struct {
	kind   opKind
	column Column
	names  []string
}

// ColumnSet is the ordered column list of an export. Mutations issued before
// the schema is known are queued and replayed, in order, on the first Resolve.
type ColumnSet struct {
	columns  []Column
	pending  []columnOp
	resolved bool
}

// DefaultColumns returns the identifier column followed by one column per
// schema field.
func DefaultColumns(schema Schema) []Column {
	fields := schema.FieldNames()
	cols := make([]Column, 0, len(fields)+1)
	cols = append(cols, NewColumn(schema.PrimaryKey(), nil))
	for _, name := range fields {
		cols = append(cols, NewColumn(name, nil))
	}
	return cols
}

// Resolved reports whether defaults have been computed (or bypassed by Clear).
func (s *ColumnSet) Resolved() bool { return s.resolved }

// Add appends a column.
func (s *ColumnSet) Add(col Column) {
	if !s.resolved {
		s.pending = append(s.pending, columnOp{kind: opAdd, column: col})
		return
	}
	s.columns = append(s.columns, col)
}

// Remove drops every column whose name is listed.
func (s *ColumnSet) Remove(names ...string) {
	if !s.resolved {
		s.pending = append(s.pending, columnOp{kind: opDelete, names: names})
		return
	}
	s.remove(names)
}

func (s *ColumnSet) remove(names []string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := s.columns[:0]
	for _, col := range s.columns {
		if _, ok := drop[col.Name]; !ok {
			kept = append(kept, col)
		}
	}
	s.columns = kept
}

// Clear discards all columns and pending operations. The set counts as
// resolved afterwards, so the schema defaults are never computed.
func (s *ColumnSet) Clear() {
	s.columns = nil
	s.pending = nil
	s.resolved = true
}

// Only replaces the columns with exactly the named ones, in order.
func (s *ColumnSet) Only(names ...string) {
	s.Clear()
	for _, n := range names {
		s.Add(NewColumn(n, nil))
	}
}

// Resolve computes the defaults from schema on first use and replays the
// queued operations. Later calls return the current columns.
func (s *ColumnSet) Resolve(schema Schema) []Column {
	if !s.resolved {
		s.columns = DefaultColumns(schema)
		s.resolved = true
		for _, op := range s.pending {
			switch op.kind {
			case opAdd:
				s.columns = append(s.columns, op.column)
			case opDelete:
				s.remove(op.names)
			}
		}
		s.pending = nil
	}
	return s.Columns()
}

// Columns returns a copy of the current columns. Before resolution it is
// empty.
func (s *ColumnSet) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}
