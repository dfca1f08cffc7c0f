package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/avatarly/avatarly/internal/model"
)

// FormField is the multipart field carrying the avatar file.
const FormField = "avatar"

const maxExtLen = 10

// Uploader stores avatar files under generated names and serves them back.
type Uploader struct {
	storage Storage
	logger  *slog.Logger
}

// NewUploader creates an Uploader over storage.
func NewUploader(storage Storage, logger *slog.Logger) *Uploader {
	return &Uploader{storage: storage, logger: logger}
}

// Save stores the uploaded file and returns its public path (/uploads/<name>).
func (u *Uploader) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	name := GenerateName(fh.Filename)
	if err := u.storage.Put(ctx, name, f, contentType(name, fh.Header.Get("Content-Type"))); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	return model.AvatarURLPrefix + name, nil
}

// Remove deletes a file previously returned by Save.
func (u *Uploader) Remove(ctx context.Context, path string) error {
	name := strings.TrimPrefix(path, model.AvatarURLPrefix)
	if !validName(name) {
		return ErrNotFound
	}
	return u.storage.Delete(ctx, name)
}

// ServeHTTP serves GET /uploads/{name}.
func (u *Uploader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, model.AvatarURLPrefix)
	if !validName(name) {
		http.NotFound(w, r)
		return
	}

	body, err := u.storage.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		u.logger.Error("failed to read upload", "name", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer body.Close()

	if rs, ok := body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, time.Time{}, rs)
		return
	}

	w.Header().Set("Content-Type", contentType(name, ""))
	if _, err := io.Copy(w, body); err != nil {
		u.logger.Warn("failed to stream upload", "name", name, "error", err)
	}
}

// GenerateName returns a collision-resistant file name that keeps the
// original extension, e.g. "01J9Z8X7R2T3V4W5X6Y7Z8A9BC.png".
func GenerateName(original string) string {
	return ulid.Make().String() + sanitizeExt(filepath.Ext(original))
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || len(ext) > maxExtLen {
		return ""
	}
	for _, c := range ext {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return "." + ext
}

// validName accepts a single path element that is not hidden.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func contentType(name, declared string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}
