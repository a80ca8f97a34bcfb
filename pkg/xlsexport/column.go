package xlsexport

// ComputeFunc produces the value of a computed column for one record.
// The view gives access to host helpers such as URL generation.
type ComputeFunc func(record interface{}, view ViewContext) (interface{}, error)

// Accessor tells a column where its value comes from.
// It is either a Field or a Computed function.
type Accessor interface {
	isAccessor()
}

// Field reads the named attribute off each record.
type Field string

// Computed calls a user function with the record.
type Computed ComputeFunc

func (Field) isAccessor()    {}
func (Computed) isAccessor() {}

// Column is one exported field.
type Column struct {
	// Name identifies the column for lookup, removal and label resolution.
	Name string
	// Literal marks a column whose name is a display label rather than an
	// attribute name. Literal columns are exported for every record.
	Literal bool
	// Accessor produces the cell value.
	Accessor Accessor
}

// NewColumn returns a column named after a record attribute. A nil fn reads
// the attribute itself.
func NewColumn(name string, fn ComputeFunc) Column {
	col := Column{Name: name, Accessor: Field(name)}
	if fn != nil {
		col.Accessor = Computed(fn)
	}
	return col
}

// NewLabelColumn returns a literal column that is never scoped out.
func NewLabelColumn(label string, fn ComputeFunc) Column {
	col := NewColumn(label, fn)
	col.Literal = true
	return col
}

// inScope is the scope check: literal columns always apply, named columns
// only when the record exposes the attribute.
func (c Column) inScope(rec Record) bool {
	if c.Literal {
		return true
	}
	if rec == nil {
		return false
	}
	return rec.RespondsTo(c.Name)
}

func (c Column) value(rec Record, item interface{}, view ViewContext) (interface{}, error) {
	switch acc := c.Accessor.(type) {
	case Computed:
		return acc(item, view)
	case Field:
		return rec.Attribute(string(acc))
	default:
		return rec.Attribute(c.Name)
	}
}
