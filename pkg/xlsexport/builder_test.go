package xlsexport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// readRows decodes xlsx bytes and returns the rows of the named sheet.
func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

type blogPost struct {
	ID     int
	Title  string
	Body   string
	Author *testUser
}

func (p *blogPost) AuthorName() string { return p.Author.FullName() }

func hotDawg() []*blogPost {
	return []*blogPost{{ID: 1, Title: "Hot Dawg", Body: "x", Author: &testUser{ID: 3, FirstName: "A", LastName: "B"}}}
}

var translations = map[string]string{
	"xls.post.id":     "Identifiant",
	"xls.post.title":  "Titre",
	"xls.post.body":   "Contenu",
	"xls.post.author": "Auteur",
}

var mapTranslator = TranslatorFunc(func(key string, scope []string) (string, error) {
	full := strings.Join(append(append([]string{}, scope...), key), ".")
	if v, ok := translations[full]; ok {
		return v, nil
	}
	return "", fmt.Errorf("translation missing: %s", full)
})

func TestBuilder_Defaults(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))

	assert.Equal(t, Format{}, b.HeaderFormat())
	assert.Nil(t, b.I18nScope())
	assert.False(t, b.HeaderSkipped())
	assert.Len(t, b.Columns(), 3)
	assert.Nil(t, b.Collection())
}

func TestBuilder_DefaultExport(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Id", "Title", "Body"}, rows[0])
	assert.Equal(t, []string{"1", "Hot Dawg", "x"}, rows[1])
}

func TestBuilder_CustomColumns(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.DeleteColumns("id", "body")
	b.Column("author", func(rec interface{}, _ ViewContext) (interface{}, error) {
		return rec.(*blogPost).Author.FullName(), nil
	})

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Title", "Author"}, rows[0])
	assert.Equal(t, []string{"Hot Dawg", "A B"}, rows[1])
}

func TestBuilder_SkipHeader(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}), WithHeaderFormat(Format{"weight": "bold"}))
	b.SkipHeader()

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"1", "Hot Dawg", "x"}, rows[0])
}

func TestBuilder_LocalizedHeader(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}),
		WithI18nScope("xls", "post"),
		WithTranslator(mapTranslator),
	)
	assert.Equal(t, []string{"xls", "post"}, b.I18nScope())

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	assert.Equal(t, []string{"Identifiant", "Titre", "Contenu"}, rows[0])
}

func TestBuilder_LocalizationMissPropagates(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}), WithI18nScope("xls", "post"), WithTranslator(mapTranslator))
	b.LabelColumn("unknown", func(interface{}, ViewContext) (interface{}, error) { return 1, nil })

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "xls.post.unknown")
	assert.Nil(t, data)
}

func TestBuilder_ScopeWithoutTranslator(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}), WithI18nScope("xls"))

	_, err := b.Serialize(context.Background(), hotDawg(), nil)
	assert.ErrorIs(t, err, ErrNoTranslator)
}

func TestBuilder_AfterFilterAppendsSummary(t *testing.T) {
	bob := &testUser{ID: 1, FirstName: "bob", LastName: "nancy"}
	ann := &testUser{ID: 2, FirstName: "ann", LastName: "lee"}
	posts := []*blogPost{
		{ID: 1, Title: "one", Author: bob},
		{ID: 2, Title: "two", Author: bob},
		{ID: 3, Title: "three", Author: ann},
	}

	b := NewBuilder(SchemaOf(blogPost{}))
	b.AfterFilter(func(sheet Sheet, collection []interface{}, _ ViewContext) error {
		counts := map[string]int{}
		for _, item := range collection {
			counts[item.(*blogPost).Author.FullName()]++
		}
		row := sheet.NextRow()
		if err := sheet.UpdateRow(row, "Author Name", "Number of Posts"); err != nil {
			return err
		}
		return sheet.UpdateRow(row+1, "bob nancy", counts["bob nancy"])
	})

	data, err := b.Serialize(context.Background(), posts, nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 1+len(posts)+2)
	assert.Equal(t, []string{"Author Name", "Number of Posts"}, rows[4])
	assert.Equal(t, []string{"bob nancy", "2"}, rows[5])
}

func TestBuilder_AccessorFailureAborts(t *testing.T) {
	errBoom := errors.New("boom")
	b := NewBuilder(SchemaOf(blogPost{}))
	b.Column("author", func(interface{}, ViewContext) (interface{}, error) {
		return nil, errBoom
	})

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), `column "author" (row 0)`)
	assert.Nil(t, data)
	assert.Nil(t, b.Collection())
}

func TestBuilder_AttributeFailurePropagates(t *testing.T) {
	b := NewBuilder(SchemaOf(testPost{}))
	b.OnlyColumns("title", "broken")

	_, err := b.Serialize(context.Background(), []*testPost{{Title: "t"}}, nil)
	assert.ErrorIs(t, err, errBroken)
}

func TestBuilder_BeforeFilter(t *testing.T) {
	posts := hotDawg()
	b := NewBuilder(SchemaOf(blogPost{}))
	b.OnlyColumns("title")
	b.BeforeFilter(func(sheet Sheet, collection []interface{}, _ ViewContext) error {
		for _, item := range collection {
			p := item.(*blogPost)
			p.Title = strings.ToUpper(p.Title)
		}
		if err := sheet.UpdateRow(0, "Created", "today"); err != nil {
			return err
		}
		return sheet.UpdateRow(1, "")
	})

	data, err := b.Serialize(context.Background(), posts, nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Created", "today"}, rows[0])
	assert.Equal(t, []string{"Title"}, rows[2])
	assert.Equal(t, []string{"HOT DAWG"}, rows[3])
	assert.Equal(t, "HOT DAWG", posts[0].Title)
}

func TestBuilder_FilterErrorAborts(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.BeforeFilter(func(Sheet, []interface{}, ViewContext) error { return errBroken })

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	assert.ErrorIs(t, err, errBroken)
	assert.Nil(t, data)
}

func TestBuilder_ScopeMismatchOmitsCells(t *testing.T) {
	schema := StaticSchema{Fields: []string{"title", "body"}}
	records := []map[string]interface{}{
		{"id": 1, "title": "first", "body": "b"},
		{"id": 2, "body": "only body"},
	}

	b := NewBuilder(schema)
	b.LabelColumn("Source", func(interface{}, ViewContext) (interface{}, error) { return "import", nil })

	data, err := b.Serialize(context.Background(), records, nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Id", "Title", "Body", "Source"}, rows[0])
	assert.Equal(t, []string{"1", "first", "b", "import"}, rows[1])
	assert.Equal(t, []string{"2", "only body", "import"}, rows[2])
}

func TestBuilder_HeaderScopeFromFirstRecord(t *testing.T) {
	records := []map[string]interface{}{
		{"id": 1},
		{"id": 2, "title": "late"},
	}

	b := NewBuilder(StaticSchema{Fields: []string{"title"}})
	data, err := b.Serialize(context.Background(), records, nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	assert.Equal(t, []string{"Id"}, rows[0])
	assert.Equal(t, []string{"2", "late"}, rows[2])
}

func TestBuilder_EmptyCollectionUsesSchemaPrototype(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))

	data, err := b.Serialize(context.Background(), []blogPost{}, nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Id", "Title", "Body"}, rows[0])
}

func TestBuilder_FlattensNestedValues(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.OnlyColumns("id")
	b.LabelColumn("Extra", func(interface{}, ViewContext) (interface{}, error) {
		return []interface{}{"a", Mapping{{"k1", 1}, {"k2", []string{"x", "y"}}}}, nil
	})

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	assert.Equal(t, []string{"Id", "Extra"}, rows[0])
	assert.Equal(t, []string{"1", "a", "1", "x", "y"}, rows[1])
}

func TestBuilder_ClearColumnsWritesNothing(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.ClearColumns()
	assert.Empty(t, b.Columns())

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)
	assert.Empty(t, readRows(t, data, DefaultSheetName))
}

func TestBuilder_WhitelistSheet(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}), WithSheetName("Posts"))
	b.Configure(func(b *Builder) {
		b.SkipHeader()
		b.Whitelist()
		b.Column("title", nil)
	})

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	rows := readRows(t, data, "Posts")
	assert.Equal(t, [][]string{{"Hot Dawg"}}, rows)
}

func TestBuilder_HeaderFormatMerge(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.SetHeaderFormat(Format{"a": 1})
	b.SetHeaderFormat(Format{"a": 2, "b": 3})
	assert.Equal(t, Format{"a": 2, "b": 3}, b.HeaderFormat())

	b = NewBuilder(SchemaOf(blogPost{}))
	b.SetHeaderFormat(Format{"a": 2, "b": 3})
	b.SetHeaderFormat(Format{"a": 1})
	assert.Equal(t, Format{"a": 1, "b": 3}, b.HeaderFormat())
}

func TestBuilder_StyledHeaderAndRows(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}), WithHeaderFormat(Format{
		"weight":           "bold",
		"color":            "#FFFFFF",
		"pattern_bg_color": "#1565C0",
		"size":             10,
	}))

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	styleID, err := f.GetCellStyle(DefaultSheetName, "A1")
	require.NoError(t, err)
	assert.NotZero(t, styleID)
}

func TestBuilder_SerializeTwiceStartsFresh(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.DeleteColumns("body")

	first, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)
	second, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)

	assert.Equal(t, readRows(t, first, DefaultSheetName), readRows(t, second, DefaultSheetName))
	assert.Len(t, readRows(t, second, DefaultSheetName), 2)
	assert.Nil(t, b.Collection())
}

type stubView struct{}

func (stubView) URL(name string, params ...interface{}) string {
	return fmt.Sprintf("/%s/%v", name, params[0])
}

func TestBuilder_ViewContextReachesComputedColumns(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.OnlyColumns("title")
	b.LabelColumn("Link", func(rec interface{}, view ViewContext) (interface{}, error) {
		return view.URL("posts", rec.(*blogPost).ID), nil
	})

	data, err := b.Serialize(context.Background(), hotDawg(), stubView{})
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	assert.Equal(t, []string{"Hot Dawg", "/posts/1"}, rows[1])
}

func TestBuilder_CollectionAvailableToFilters(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	var seen int
	b.AfterFilter(func(Sheet, []interface{}, ViewContext) error {
		seen = len(b.Collection())
		return nil
	})

	_, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestBuilder_RejectsNonSlice(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	_, err := b.Serialize(context.Background(), blogPost{}, nil)
	assert.ErrorIs(t, err, ErrNotSlice)
}

func TestBuilder_CSVDocument(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}), WithDocument(NewCSVDocument))

	data, err := b.Serialize(context.Background(), hotDawg(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Id,Title,Body\n1,Hot Dawg,x\n", string(data))
}

type archivedPost struct {
	ID         int
	Title      string
	ArchivedOn *time.Time
}

func TestBuilder_NilTimestampIsBlankCell(t *testing.T) {
	archived := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	posts := []archivedPost{
		{ID: 1, Title: "kept"},
		{ID: 2, Title: "gone", ArchivedOn: &archived},
	}

	b := NewBuilder(SchemaOf(archivedPost{}))
	assert.Equal(t, []string{"id", "title", "archived_on"}, columnNames(b.Columns()))

	data, err := b.Serialize(context.Background(), posts, nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Id", "Title", "Archived On"}, rows[0])
	assert.Equal(t, []string{"1", "kept"}, rows[1][:2])
	if len(rows[1]) > 2 {
		assert.Empty(t, rows[1][2])
	}
	require.Len(t, rows[2], 3)
	assert.NotEmpty(t, rows[2][2])
}

func TestBuilder_NilRecordPointer(t *testing.T) {
	b := NewBuilder(SchemaOf(blogPost{}))
	b.Column("author_name", nil)

	data, err := b.Serialize(context.Background(), []*blogPost{hotDawg()[0], nil}, nil)
	require.NoError(t, err)

	rows := readRows(t, data, DefaultSheetName)
	assert.Equal(t, []string{"Id", "Title", "Body", "Author Name"}, rows[0])
	assert.Equal(t, []string{"1", "Hot Dawg", "x", "A B"}, rows[1])
}
