package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestInitialize_MemoryBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("XLS_LOCALE", "fr")
	t.Setenv("XLS_LOCALE_DIR", "../../config/locales")
	t.Setenv("XLS_EXPORTS_FILE", "../../config/exports.yaml")

	app := NewApp()
	require.NoError(t, app.Initialize(context.Background()))
	assert.Equal(t, []string{"posts"}, app.Admin.Names())
	assert.Nil(t, app.DB)

	req := httptest.NewRequest(http.MethodGet, "/admin/posts/export.xlsx", nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Titre", "Contenu", "Publié le", "Auteur", "Lien"}, rows[0])
	assert.Equal(t, "/posts/1", rows[1][5])
}

func TestInitialize_BadExportConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("XLS_EXPORTS_FILE", "does-not-exist.yaml")

	assert.Error(t, NewApp().Initialize(context.Background()))
}
