package xlsexport

import "io"

// Format is a set of style properties for a row, e.g.
// {"weight": "bold", "color": "#FFFFFF", "pattern_bg_color": "#1565C0"}.
type Format map[string]interface{}

// Merge returns a new Format with the keys of other written over f.
// The merge is one level deep.
func (f Format) Merge(other Format) Format {
	out := make(Format, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Document is an in-memory spreadsheet being built by an export.
type Document interface {
	// CreateSheet adds a sheet and returns its handle.
	CreateSheet(name string) (Sheet, error)
	// Write encodes the document into w.
	Write(w io.Writer) error
	// Close releases the resources held by the document.
	Close() error
}

// Sheet is the handle handed to before and after filters. Row indices are
// zero based.
type Sheet interface {
	// Row returns the row at index, creating it if needed.
	Row(index int) Row
	// NextRow is the index of the first row below everything written so far.
	NextRow() int
	// UpdateRow replaces the contents of the row at index with values.
	UpdateRow(index int, values ...interface{}) error
}

// Row is a single sheet row. Push appends cells after the last one written.
type Row interface {
	Index() int
	Len() int
	Push(values ...interface{}) error
	SetStyle(format Format) error
}

// DocumentFactory creates the document for one Serialize call.
type DocumentFactory func() Document

// ViewContext is the capability bag of the host, passed through to computed
// columns and filters. The builder never calls it.
type ViewContext interface {
	// URL builds the path of a named host route.
	URL(name string, params ...interface{}) string
}

// Styled records choose the format of their own data row.
type Styled interface {
	XLSStyle() Format
}
