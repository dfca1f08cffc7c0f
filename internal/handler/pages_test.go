package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarly/avatarly/internal/testutil"
)

func newTestPages(t *testing.T) (*PageHandler, string) {
	t.Helper()
	root := t.TempDir()
	public := filepath.Join(root, "public")
	assets := filepath.Join(root, "assets")

	for route, file := range Pages {
		testutil.WriteFile(t, public, file, []byte("<html>"+route+"</html>"))
	}
	testutil.WriteFile(t, public, "robots.txt", []byte("User-agent: *"))
	testutil.WriteFile(t, assets, "css/site.css", []byte("body{}"))
	testutil.WriteFile(t, assets, "guide/index.html", []byte("guide"))
	require.NoError(t, os.MkdirAll(filepath.Join(assets, "empty"), 0o755))

	return NewPageHandler(public, assets), root
}

func TestPageHandler_Page(t *testing.T) {
	t.Parallel()

	h, _ := newTestPages(t)

	for route, file := range Pages {
		rec := httptest.NewRecorder()
		h.Page(file)(rec, httptest.NewRequest(http.MethodGet, route, nil))

		assert.Equal(t, http.StatusOK, rec.Code, route)
		assert.Equal(t, "<html>"+route+"</html>", rec.Body.String(), route)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", route)
	}
}

func TestPageHandler_PageMissingFile(t *testing.T) {
	t.Parallel()

	h := NewPageHandler(t.TempDir(), t.TempDir())

	rec := httptest.NewRecorder()
	h.Page("about.html")(rec, httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageHandler_StaticTrees(t *testing.T) {
	t.Parallel()

	h, _ := newTestPages(t)

	tests := []struct {
		name    string
		handler http.Handler
		path    string
		code    int
		body    string
	}{
		{"asset", h.Assets(), "/assets/css/site.css", http.StatusOK, "body{}"},
		{"missing asset", h.Assets(), "/assets/css/nope.css", http.StatusNotFound, ""},
		{"asset dir listing", h.Assets(), "/assets/empty/", http.StatusNotFound, ""},
		{"public file", h.Public(), "/robots.txt", http.StatusOK, "User-agent: *"},
		{"public missing", h.Public(), "/nope.html", http.StatusNotFound, ""},
		{"traversal", h.Public(), "/../assets/css/site.css", http.StatusNotFound, ""},
		{"index by name", h.Public(), "/index.html", http.StatusOK, "<html>/</html>"},
		{"missing index by name", h.Public(), "/nested/index.html", http.StatusNotFound, ""},
		{"asset index by name", h.Assets(), "/assets/guide/index.html", http.StatusOK, "guide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.URL.Path = tt.path
			tt.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
