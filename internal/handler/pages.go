package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Pages maps fixed routes to files under the public directory.
var Pages = map[string]string{
	"/":         "index.html",
	"/register": "register.html",
	"/login":    "login.html",
	"/settings": "settings.html",
	"/about":    "about.html",
}

// PageHandler serves the fixed HTML pages and the static file trees.
type PageHandler struct {
	publicDir string
	assetsDir string
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(publicDir, assetsDir string) *PageHandler {
	return &PageHandler{publicDir: publicDir, assetsDir: assetsDir}
}

// Page returns a handler that sends file byte-for-byte from the public dir.
func (h *PageHandler) Page(file string) http.HandlerFunc {
	full := filepath.Join(h.publicDir, file)
	return func(w http.ResponseWriter, r *http.Request) {
		serveFile(w, r, full)
	}
}

// Assets serves GET /assets/*.
func (h *PageHandler) Assets() http.Handler {
	return http.StripPrefix("/assets", fileServer(h.assetsDir))
}

// Public serves any other GET path from the public dir.
func (h *PageHandler) Public() http.Handler {
	return fileServer(h.publicDir)
}

// serveFile sends a regular file or a 404; it never redirects or lists.
func serveFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := os.Open(name)
	if err != nil {
		NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		NotFound(w, r)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// fileServer serves dir without listings. Explicit index.html requests are
// answered with the file instead of http.FileServer's redirect to "./".
func fileServer(dir string) http.Handler {
	files := http.FileServer(noListingFS{http.Dir(dir)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/index.html") {
			name := path.Clean("/" + r.URL.Path)
			serveFile(w, r, filepath.Join(dir, filepath.FromSlash(name)))
			return
		}
		files.ServeHTTP(w, r)
	})
}

// noListingFS hides directories that have no index.html.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := n.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		_ = f.Close()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	_ = index.Close()
	return f, nil
}
