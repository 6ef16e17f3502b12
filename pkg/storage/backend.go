package storage

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/sdejongh/canvasync/pkg/ratelimit"
)

// FileInfo represents metadata about a file or directory
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Backend defines the filesystem operations used by the image batch and
// the sync runner. Paths are native paths, not relative to a root.
type Backend interface {
	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// ListDir returns the direct children of a directory, sorted by name
	ListDir(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ReadFile reads a whole file
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces path with data. Readers never observe a partial file.
	WriteFile(ctx context.Context, path string, data []byte) error

	// Move renames src to dst, replacing dst if it exists
	Move(ctx context.Context, src, dst string) error

	// Copy streams src to dst, replacing dst if it exists. The source is
	// left in place. limiter may be nil.
	Copy(ctx context.Context, src, dst string, limiter *ratelimit.Limiter) (int64, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error
}

// IsNotExist reports whether err says a path does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
