package xlsexport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromMap_IgnoresUnknownKeys(t *testing.T) {
	opts := OptionsFromMap(map[string]interface{}{
		"header_format": map[string]interface{}{"weight": "bold"},
		"i18n_scope":    []interface{}{"xls", "post"},
		"sheet_name":    "Posts",
		"header_style":  map[string]interface{}{"size": 10},
		"unknown":       true,
		"skip":          nil,
	})

	b := NewBuilder(StaticSchema{Fields: []string{"title"}}, opts...)
	assert.Equal(t, Format{"weight": "bold"}, b.HeaderFormat())
	assert.Equal(t, []string{"xls", "post"}, b.I18nScope())
	assert.Equal(t, "Posts", b.sheetName)
}

func TestOptionsFromMap_DottedScope(t *testing.T) {
	b := NewBuilder(StaticSchema{}, OptionsFromMap(map[string]interface{}{"i18n_scope": "active_admin.xls.post"})...)
	assert.Equal(t, []string{"active_admin", "xls", "post"}, b.I18nScope())
}

func TestLoadOptions(t *testing.T) {
	yamlConfig := `
header_format:
  weight: bold
  color: "#1565C0"
i18n_scope: [xls, post]
skip_header: true
delete_columns: [id, body]
sheet_name: Posts
not_an_option: 3
`
	o, err := LoadOptions([]byte(yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, Format{"weight": "bold", "color": "#1565C0"}, o.HeaderFormat)
	assert.Equal(t, []string{"xls", "post"}, o.I18nScope)
	assert.True(t, o.SkipHeader)

	b := NewBuilder(StaticSchema{Fields: []string{"title", "body"}})
	o.Configure(b)

	assert.True(t, b.HeaderSkipped())
	assert.Equal(t, "Posts", b.sheetName)
	assert.Equal(t, []string{"title"}, columnNames(b.Columns()))
}

func TestLoadOptions_OnlyThenDelete(t *testing.T) {
	o, err := LoadOptions([]byte("only_columns: [title, body, author]\ndelete_columns: [body]\n"))
	require.NoError(t, err)

	b := NewBuilder(StaticSchema{Fields: []string{"title", "body"}})
	o.Configure(b)
	assert.Equal(t, []string{"title", "author"}, columnNames(b.Columns()))
}

func TestLoadOptions_InvalidYAML(t *testing.T) {
	_, err := LoadOptions([]byte("header_format: [unclosed"))
	assert.Error(t, err)
}

func TestLoadOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.yaml")
	require.NoError(t, os.WriteFile(path, []byte("i18n_scope: [xls]\n"), 0o644))

	o, err := LoadOptionsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"xls"}, o.I18nScope)

	_, err = LoadOptionsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
