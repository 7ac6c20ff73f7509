package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"recruitflow/internal/config"
)

var ErrNotFound = errors.New("file not found")

// Storage stores uploaded resume files by key.
type Storage interface {
	// Save stores the content of reader under key.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Open returns the content stored under key. Missing keys return ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content under key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Type. Local storage roots files at uploadPath.
func New(cfg config.StorageConfig, uploadPath string) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(uploadPath)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
