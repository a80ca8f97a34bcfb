package xlsexport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// Sentinel errors for programmatic error handling.
var (
	ErrNotSlice     = errors.New("collection must be a slice")
	ErrNoTranslator = errors.New("i18n scope set without a translator")
)

// Filter runs once before or after the data rows are written. It gets the
// live sheet and the bound collection, and may mutate both.
type Filter func(sheet Sheet, collection []interface{}, view ViewContext) error

// Builder serializes collections of records into spreadsheet documents.
//
// Columns default to the schema's identifier and content fields and can be
// customized before the first export. Configuration persists across
// Serialize calls; per-call state does not.
//
// A Builder is not safe for concurrent use. Use one Builder per goroutine.
type Builder struct {
	schema       Schema
	columns      ColumnSet
	headerFormat Format
	i18nScope    []string
	skipHeader   bool
	before       Filter
	after        Filter
	translator   Translator
	sheetName    string
	newDocument  DocumentFactory

	// Per Serialize call, reset by cleanUp.
	collection []interface{}
	view       ViewContext
	doc        Document
	sheet      Sheet
}

// NewBuilder returns a Builder for records described by schema.
//
//	b := xlsexport.NewBuilder(xlsexport.SchemaOf(Post{}), xlsexport.WithI18nScope("xls", "post"))
//	b.DeleteColumns("id", "created_at")
//	b.Column("author", func(rec interface{}, _ xlsexport.ViewContext) (interface{}, error) {
//		return rec.(*Post).Author.Name(), nil
//	})
func NewBuilder(schema Schema, opts ...Option) *Builder {
	b := &Builder{
		schema:       schema,
		headerFormat: Format{},
		sheetName:    DefaultSheetName,
		newDocument:  NewWorkbook,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Configure runs fn against the builder and returns it.
func (b *Builder) Configure(fn func(*Builder)) *Builder {
	if fn != nil {
		fn(b)
	}
	return b
}

// HeaderFormat returns a copy of the header style.
func (b *Builder) HeaderFormat() Format {
	return Format{}.Merge(b.headerFormat)
}

// SetHeaderFormat merges format over the current header style. Keys in
// format win.
func (b *Builder) SetHeaderFormat(format Format) {
	b.headerFormat = b.headerFormat.Merge(format)
}

// I18nScope returns the translation scope, nil when labels are humanized.
func (b *Builder) I18nScope() []string {
	if b.i18nScope == nil {
		return nil
	}
	return append([]string{}, b.i18nScope...)
}

// SetI18nScope sets the scope used to look up column labels. An empty scope
// switches back to humanized labels.
func (b *Builder) SetI18nScope(scope ...string) {
	if len(scope) == 0 {
		b.i18nScope = nil
		return
	}
	b.i18nScope = append([]string{}, scope...)
}

// SkipHeader turns off the header row.
func (b *Builder) SkipHeader() { b.skipHeader = true }

// HeaderSkipped reports whether SkipHeader was called.
func (b *Builder) HeaderSkipped() bool { return b.skipHeader }

// BeforeFilter registers fn to run before any row is written.
func (b *Builder) BeforeFilter(fn Filter) { b.before = fn }

// AfterFilter registers fn to run after the data rows are written.
func (b *Builder) AfterFilter(fn Filter) { b.after = fn }

// Column adds a column named after a record attribute. A nil fn reads the
// attribute.
func (b *Builder) Column(name string, fn ComputeFunc) {
	b.columns.Add(NewColumn(name, fn))
}

// LabelColumn adds a column whose name is a display label. It is exported
// for every record regardless of its attributes.
func (b *Builder) LabelColumn(label string, fn ComputeFunc) {
	b.columns.Add(NewLabelColumn(label, fn))
}

// DeleteColumns removes columns by name.
func (b *Builder) DeleteColumns(names ...string) { b.columns.Remove(names...) }

// OnlyColumns restricts the export to the named columns, in order.
func (b *Builder) OnlyColumns(names ...string) { b.columns.Only(names...) }

// ClearColumns removes every column, defaults included.
func (b *Builder) ClearColumns() { b.columns.Clear() }

// Whitelist clears the defaults so that only columns added afterwards are
// exported.
func (b *Builder) Whitelist() { b.columns.Clear() }

// DocumentFactory returns the factory that creates documents.
func (b *Builder) DocumentFactory() DocumentFactory { return b.newDocument }

// SetDocumentFactory changes the document type of later exports. A nil
// factory restores the xlsx workbook.
func (b *Builder) SetDocumentFactory(factory DocumentFactory) {
	if factory == nil {
		factory = NewWorkbook
	}
	b.newDocument = factory
}

// Columns returns the resolved columns.
func (b *Builder) Columns() []Column {
	return b.columns.Resolve(b.schema)
}

// Collection is the collection bound by the Serialize call in progress. It
// is nil outside of Serialize.
func (b *Builder) Collection() []interface{} { return b.collection }

// Serialize exports collection, a slice of records, and returns the encoded
// document. view is handed to computed columns and filters; it may be nil.
//
// Any error from a filter, accessor or translation aborts the export and no
// bytes are returned.
func (b *Builder) Serialize(ctx context.Context, collection interface{}, view ViewContext) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	items, err := toItems(collection)
	if err != nil {
		return nil, err
	}

	// Setup
	b.collection = items
	b.view = view
	defer b.cleanUp(logger)

	cols := b.Columns()
	logger.Debug().Int("columns", len(cols)).Int("records", len(items)).Msg("xls columns resolved")

	b.doc = b.newDocument()
	if b.sheet, err = b.doc.CreateSheet(b.sheetName); err != nil {
		return nil, err
	}

	// Export
	if err := b.applyFilter(b.before, "before"); err != nil {
		return nil, err
	}
	if err := b.exportCollection(cols); err != nil {
		return nil, err
	}
	if err := b.applyFilter(b.after, "after"); err != nil {
		return nil, err
	}

	// Finalize
	buf := new(bytes.Buffer)
	if err := b.doc.Write(buf); err != nil {
		return nil, err
	}
	logger.Debug().
		Int("rows", b.sheet.NextRow()).
		Int("bytes", buf.Len()).
		Msg("xls export finished")
	return buf.Bytes(), nil
}

func (b *Builder) applyFilter(fn Filter, name string) error {
	if fn == nil {
		return nil
	}
	if err := fn(b.sheet, b.collection, b.view); err != nil {
		return fmt.Errorf("%s filter: %w", name, err)
	}
	return nil
}

func (b *Builder) cleanUp(logger *zerolog.Logger) {
	if b.doc != nil {
		if err := b.doc.Close(); err != nil {
			logger.Warn().Err(err).Msg("close xls document")
		}
	}
	b.doc = nil
	b.sheet = nil
	b.collection = nil
	b.view = nil
}

func (b *Builder) exportCollection(cols []Column) error {
	if len(cols) == 0 {
		return nil
	}

	rowIndex := b.sheet.NextRow()
	if !b.skipHeader {
		if err := b.headerRow(rowIndex, cols); err != nil {
			return err
		}
		rowIndex++
	}

	for i, item := range b.collection {
		row := b.sheet.Row(rowIndex)
		if styled, ok := item.(Styled); ok {
			if format := styled.XLSStyle(); len(format) > 0 {
				if err := row.SetStyle(format); err != nil {
					return err
				}
			}
		}
		cells, err := b.resourceData(item, cols, i)
		if err != nil {
			return err
		}
		if err := row.Push(cells...); err != nil {
			return err
		}
		rowIndex++
	}
	return nil
}

// headerRow writes the labels of the columns in scope for the first record,
// or for a blank schema record when the collection is empty.
func (b *Builder) headerRow(index int, cols []Column) error {
	var first interface{}
	if len(b.collection) > 0 {
		first = b.collection[0]
	} else if b.schema != nil {
		first = b.schema.New()
	}
	rec := recordOrNil(first)

	labels := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		if !col.inScope(rec) {
			continue
		}
		label, err := b.localizedName(col)
		if err != nil {
			return fmt.Errorf("header %q: %w", col.Name, err)
		}
		labels = append(labels, label)
	}

	row := b.sheet.Row(index)
	if err := row.SetStyle(b.headerFormat); err != nil {
		return err
	}
	return row.Push(labels...)
}

func (b *Builder) resourceData(item interface{}, cols []Column, index int) ([]interface{}, error) {
	rec := recordOrNil(item)
	var cells []interface{}
	for _, col := range cols {
		if !col.inScope(rec) {
			continue
		}
		val, err := col.value(rec, item, b.view)
		if err != nil {
			return nil, fmt.Errorf("column %q (row %d): %w", col.Name, index, err)
		}
		cells = appendCells(cells, val)
	}
	return cells, nil
}

// localizedName is the header label of col.
func (b *Builder) localizedName(col Column) (string, error) {
	if b.i18nScope == nil {
		return Humanize(col.Name), nil
	}
	if b.translator == nil {
		return "", ErrNoTranslator
	}
	return b.translator.Translate(col.Name, b.i18nScope)
}

func recordOrNil(item interface{}) Record {
	if item == nil {
		return nil
	}
	return RecordOf(item)
}

// toItems flattens a slice or array (or a pointer to one) into its elements.
func toItems(collection interface{}) ([]interface{}, error) {
	switch c := collection.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return c, nil
	}

	v := reflect.ValueOf(collection)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w, got %T", ErrNotSlice, collection)
	}
	items := make([]interface{}, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items, nil
}
