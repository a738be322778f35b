// Package storage provides scratch file storage for uploads that downstream
// libraries can only read by path.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Absolute path on disk
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for scratch file operations
type Storage interface {
	// Upload stores a file and returns its metadata
	Upload(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Download retrieves a file by its ID
	Download(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, fileID uuid.UUID) error

	// List returns all stored files
	List(ctx context.Context) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without downloading
	GetInfo(ctx context.Context, fileID uuid.UUID) (*FileInfo, error)

	// Purge removes files created before cutoff and returns how many were removed
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}

// Config holds storage configuration
type Config struct {
	LocalPath string
}

// New creates the scratch storage described by cfg
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
