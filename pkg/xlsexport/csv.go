package xlsexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// CSVDocument renders the first sheet of an export as CSV. Styles are
// ignored. It is significantly lighter than a workbook for large exports.
type CSVDocument struct {
	sheets []*csvSheet
}

// NewCSVDocument returns an empty CSV document.
func NewCSVDocument() Document {
	return &CSVDocument{}
}

func (d *CSVDocument) CreateSheet(name string) (Sheet, error) {
	s := &csvSheet{name: name}
	d.sheets = append(d.sheets, s)
	return s, nil
}

func (d *CSVDocument) Write(w io.Writer) error {
	if len(d.sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}
	csvWriter := csv.NewWriter(w)
	for _, row := range d.sheets[0].rows {
		record := make([]string, len(row.cells))
		for i, v := range row.cells {
			record[i] = csvValue(v)
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func (d *CSVDocument) Close() error {
	d.sheets = nil
	return nil
}

func csvValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	}
	return fmt.Sprintf("%v", v)
}

type csvSheet struct {
	name string
	rows []*csvRow
}

func (s *csvSheet) Row(index int) Row {
	for len(s.rows) <= index {
		s.rows = append(s.rows, &csvRow{index: len(s.rows)})
	}
	return s.rows[index]
}

func (s *csvSheet) NextRow() int { return len(s.rows) }

func (s *csvSheet) UpdateRow(index int, values ...interface{}) error {
	r := s.Row(index).(*csvRow)
	r.cells = append([]interface{}{}, values...)
	return nil
}

type csvRow struct {
	index int
	cells []interface{}
}

func (r *csvRow) Index() int { return r.index }

func (r *csvRow) Len() int { return len(r.cells) }

func (r *csvRow) Push(values ...interface{}) error {
	r.cells = append(r.cells, values...)
	return nil
}

func (r *csvRow) SetStyle(Format) error { return nil }
