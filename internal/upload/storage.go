// Package upload stores avatar images and serves them back under /uploads/.
package upload

import (
	"context"
	"errors"
	"io"
)

// Storage errors.
var (
	ErrNotFound = errors.New("upload not found")
	ErrExists   = errors.New("upload already exists")
)

// Storage is a flat namespace of uploaded files keyed by generated name.
type Storage interface {
	Put(ctx context.Context, name string, body io.Reader, contentType string) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}
