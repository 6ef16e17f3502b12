package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/sdejongh/canvasync/pkg/ratelimit"
)

// nativeOS is a billy filesystem that takes native absolute paths as is
type nativeOS struct {
	osfs.ChrootOS
}

func (n *nativeOS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (n *nativeOS) Root() string {
	return string(filepath.Separator)
}

// FS implements Backend on top of a go-billy filesystem
type FS struct {
	fs billy.Filesystem

	// mu serializes access to filesystems that are not safe for
	// concurrent use (memfs). nil for the native filesystem.
	mu *sync.Mutex
}

// NewFS wraps an existing billy filesystem
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewOS returns a backend over the native filesystem
func NewOS() *FS {
	return &FS{fs: &nativeOS{}}
}

// NewMemory returns an in-memory backend
func NewMemory() *FS {
	return &FS{fs: memfs.New(), mu: &sync.Mutex{}}
}

func (f *FS) lock() func() {
	if f.mu == nil {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Exists checks if a file or directory exists
func (f *FS) Exists(ctx context.Context, path string) (bool, error) {
	defer f.lock()()

	_, err := f.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence of %s: %w", path, err)
}

// ListDir returns the direct children of a directory
func (f *FS) ListDir(ctx context.Context, path string) ([]FileInfo, error) {
	defer f.lock()()

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	infos, err := f.fs.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	entries := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, FileInfo{
			Name:    info.Name(),
			Path:    f.fs.Join(path, info.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Stat returns file metadata
func (f *FS) Stat(ctx context.Context, path string) (*FileInfo, error) {
	defer f.lock()()

	info, err := f.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return &FileInfo{
		Name:    info.Name(),
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// ReadFile reads a whole file
func (f *FS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	defer f.lock()()

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	data, err := util.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to a temp file in the target directory and renames
// it into place
func (f *FS) WriteFile(ctx context.Context, path string, data []byte) error {
	defer f.lock()()

	if err := checkContext(ctx); err != nil {
		return err
	}

	tmpName := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp-"+uuid.NewString()[:8])
	tmp, err := f.fs.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		f.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.fs.Rename(tmpName, path); err != nil {
		f.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Move renames src to dst, replacing dst if it exists
func (f *FS) Move(ctx context.Context, src, dst string) error {
	defer f.lock()()

	if err := checkContext(ctx); err != nil {
		return err
	}

	if err := f.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return nil
}

// Copy streams src into dst through an optional limiter
func (f *FS) Copy(ctx context.Context, src, dst string, limiter *ratelimit.Limiter) (int64, error) {
	defer f.lock()()

	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	in, err := f.fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source %s: %w", src, err)
	}
	defer in.Close()

	out, err := f.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination %s: %w", dst, err)
	}

	written, err := io.Copy(out, ratelimit.NewReader(ctx, in, limiter))
	if err != nil {
		out.Close()
		return written, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("failed to close destination %s: %w", dst, err)
	}

	return written, nil
}

// MkdirAll creates a directory and all necessary parents
func (f *FS) MkdirAll(ctx context.Context, path string) error {
	defer f.lock()()

	if err := f.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
