// Package watch runs image batches as new PNGs land in the target tree.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sdejongh/canvasync/pkg/batch"
	"github.com/sdejongh/canvasync/pkg/logging"
	"github.com/sdejongh/canvasync/pkg/storage"
)

// DefaultDebounce is the quiet period after the last event before a batch runs
const DefaultDebounce = 2 * time.Second

// Handler receives the images discovered after a quiet period
type Handler func(ctx context.Context, paths []string)

// Watcher monitors the target directory and its immediate subdirectories
type Watcher struct {
	fs        storage.Backend
	targetDir string
	debounce  time.Duration
	logger    logging.Logger
	handler   Handler
	watcher   *fsnotify.Watcher
}

// NewWatcher creates a watcher for targetDir. logger may be nil.
func NewWatcher(
	fs storage.Backend,
	targetDir string,
	debounce time.Duration,
	logger logging.Logger,
	handler Handler,
) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fs:        fs,
		targetDir: filepath.Clean(targetDir),
		debounce:  debounce,
		logger:    logger.WithFields(logging.Fields{"target": targetDir}),
		handler:   handler,
		watcher:   fsWatcher,
	}, nil
}

// Run processes the images already waiting, then blocks handling new ones
// until ctx is cancelled. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	info, err := w.fs.Stat(ctx, w.targetDir)
	if err != nil {
		return fmt.Errorf("failed to access target directory: %w", err)
	}
	if !info.IsDir {
		return fmt.Errorf("target is not a directory: %s", w.targetDir)
	}

	if err := w.addFolders(ctx); err != nil {
		return err
	}

	w.flush(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(ctx, event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "watcher error", logging.Fields{"error": err.Error()})

		case <-timer.C:
			w.flush(ctx)
		}
	}
}

// addFolders registers the target directory and every immediate subdirectory
func (w *Watcher) addFolders(ctx context.Context) error {
	if err := w.watcher.Add(w.targetDir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.targetDir, err)
	}

	entries, err := w.fs.ListDir(ctx, w.targetDir)
	if err != nil {
		return fmt.Errorf("failed to list target directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir {
			w.addFolder(ctx, entry.Path)
		}
	}
	return nil
}

func (w *Watcher) addFolder(ctx context.Context, dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn(ctx, "failed to watch folder", logging.Fields{"folder": dir, "error": err.Error()})
		return
	}
	w.logger.Debug(ctx, "watching folder", logging.Fields{"folder": dir})
}

// relevant reports whether event may have produced a new image, registering
// new subdirectories on the way
func (w *Watcher) relevant(ctx context.Context, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	parent := filepath.Dir(event.Name)
	if parent == w.targetDir {
		if !event.Has(fsnotify.Create) {
			return false
		}
		info, err := w.fs.Stat(ctx, event.Name)
		if err != nil || !info.IsDir {
			return false
		}
		w.addFolder(ctx, event.Name)
		return true
	}

	return filepath.Dir(parent) == w.targetDir && batch.IsPNG(event.Name)
}

// flush discovers waiting images and hands them to the handler
func (w *Watcher) flush(ctx context.Context) {
	paths, err := batch.Discover(ctx, w.fs, w.targetDir)
	if err != nil {
		w.logger.Error(ctx, "discovery failed", err, nil)
		return
	}
	if len(paths) == 0 {
		return
	}

	w.logger.Info(ctx, "images detected", logging.Fields{"images": len(paths)})
	w.handler(ctx, paths)
}
