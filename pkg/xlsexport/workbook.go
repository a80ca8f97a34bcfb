package xlsexport

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName names the sheet of an export unless WithSheetName is used.
const DefaultSheetName = "Sheet1"

// Workbook is the excelize-backed Document. It produces .xlsx bytes.
type Workbook struct {
	file   *excelize.File
	sheets map[string]*workbookSheet

	// Performance caches
	styleCache   map[string]int
	colNameCache map[int]string
}

// NewWorkbook returns an empty xlsx document.
func NewWorkbook() Document {
	return &Workbook{
		file:         excelize.NewFile(),
		sheets:       make(map[string]*workbookSheet),
		styleCache:   make(map[string]int),
		colNameCache: make(map[int]string),
	}
}

// File exposes the underlying excelize file for filters that need features
// beyond the Sheet interface (merged cells, formulas, column widths).
func (w *Workbook) File() *excelize.File { return w.file }

func (w *Workbook) CreateSheet(name string) (Sheet, error) {
	if name == "" {
		name = DefaultSheetName
	}
	if _, ok := w.sheets[name]; ok {
		return nil, fmt.Errorf("sheet %s already exists", name)
	}

	if len(w.sheets) == 0 {
		if name != DefaultSheetName {
			if err := w.file.SetSheetName(DefaultSheetName, name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", name, err)
	}

	sheet := &workbookSheet{
		book:    w,
		name:    name,
		rows:    make(map[int]*workbookRow),
		lastRow: -1,
	}
	w.sheets[name] = sheet
	return sheet, nil
}

func (w *Workbook) Write(out io.Writer) error {
	if _, err := w.file.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// getColName returns the column name for a given column number, with caching.
func (w *Workbook) getColName(col int) string {
	if name, ok := w.colNameCache[col]; ok {
		return name
	}
	name, _ := excelize.ColumnNumberToName(col)
	w.colNameCache[col] = name
	return name
}

// getCellAddress converts zero based coordinates into an A1 address.
func (w *Workbook) getCellAddress(col, row int) string {
	return w.getColName(col+1) + strconv.Itoa(row+1)
}

// styleFor returns the excelize style ID of format, creating it once.
func (w *Workbook) styleFor(format Format) (int, error) {
	key := formatKey(format)
	if id, ok := w.styleCache[key]; ok {
		return id, nil
	}
	id, err := w.file.NewStyle(styleFromFormat(format))
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styleCache[key] = id
	return id, nil
}

// formatKey is a canonical string for a format, used as the style cache key.
func formatKey(format Format) string {
	keys := make([]string, 0, len(format))
	for k := range format {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s:%v|", k, format[k])
	}
	return sb.String()
}

// styleFromFormat maps format properties onto an excelize style. Unknown
// properties are ignored.
func styleFromFormat(format Format) *excelize.Style {
	style := &excelize.Style{}
	font := &excelize.Font{}
	hasFont := false

	for key, raw := range format {
		switch key {
		case "weight":
			if fmt.Sprint(raw) == "bold" {
				font.Bold, hasFont = true, true
			}
		case "bold":
			font.Bold, hasFont = truthy(raw), true
		case "italic":
			font.Italic, hasFont = truthy(raw), true
		case "underline":
			if truthy(raw) {
				font.Underline, hasFont = "single", true
			}
		case "color":
			font.Color, hasFont = colorValue(raw), true
		case "size":
			if size, err := strconv.ParseFloat(fmt.Sprint(raw), 64); err == nil {
				font.Size, hasFont = size, true
			}
		case "name", "font":
			font.Family, hasFont = fmt.Sprint(raw), true
		case "pattern_bg_color", "pattern_fg_color", "fill":
			style.Fill = excelize.Fill{
				Type:    "pattern",
				Color:   []string{colorValue(raw)},
				Pattern: 1,
			}
		case "horizontal_align":
			if style.Alignment == nil {
				style.Alignment = &excelize.Alignment{}
			}
			style.Alignment.Horizontal = fmt.Sprint(raw)
		case "vertical_align":
			if style.Alignment == nil {
				style.Alignment = &excelize.Alignment{}
			}
			style.Alignment.Vertical = fmt.Sprint(raw)
		case "number_format":
			numFmt := fmt.Sprint(raw)
			style.CustomNumFmt = &numFmt
		}
	}
	if hasFont {
		style.Font = font
	}
	return style
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	}
	return v != nil
}

func colorValue(v interface{}) string {
	return strings.ToUpper(strings.TrimPrefix(fmt.Sprint(v), "#"))
}

type workbookSheet struct {
	book    *Workbook
	name    string
	rows    map[int]*workbookRow
	lastRow int
}

func (s *workbookSheet) Row(index int) Row {
	if r, ok := s.rows[index]; ok {
		return r
	}
	r := &workbookRow{sheet: s, index: index}
	s.rows[index] = r
	if index > s.lastRow {
		s.lastRow = index
	}
	return r
}

func (s *workbookSheet) NextRow() int { return s.lastRow + 1 }

func (s *workbookSheet) UpdateRow(index int, values ...interface{}) error {
	r := s.Row(index).(*workbookRow)
	previous := r.length
	r.length = 0
	if err := r.Push(values...); err != nil {
		return err
	}
	for col := len(values); col < previous; col++ {
		if err := s.book.file.SetCellValue(s.name, s.book.getCellAddress(col, index), nil); err != nil {
			return err
		}
	}
	return nil
}

type workbookRow struct {
	sheet  *workbookSheet
	index  int
	length int
}

func (r *workbookRow) Index() int { return r.index }

func (r *workbookRow) Len() int { return r.length }

func (r *workbookRow) Push(values ...interface{}) error {
	book := r.sheet.book
	for _, v := range values {
		cell := book.getCellAddress(r.length, r.index)
		if err := book.file.SetCellValue(r.sheet.name, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
		r.length++
	}
	return nil
}

func (r *workbookRow) SetStyle(format Format) error {
	if len(format) == 0 {
		return nil
	}
	book := r.sheet.book
	id, err := book.styleFor(format)
	if err != nil {
		return err
	}
	return book.file.SetRowStyle(r.sheet.name, r.index+1, r.index+1, id)
}
