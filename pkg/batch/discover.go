package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sdejongh/canvasync/pkg/storage"
)

// Discover lists the PNG images waiting one level below targetDir, that is
// inside its immediate subdirectories. Output directories created by earlier
// runs sit one level deeper and are never returned. A missing targetDir
// yields an empty list.
func Discover(ctx context.Context, fs storage.Backend, targetDir string) ([]string, error) {
	exists, err := fs.Exists(ctx, targetDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []string{}, nil
	}

	entries, err := fs.ListDir(ctx, targetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list target directory: %w", err)
	}

	images := []string{}
	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}

		children, err := fs.ListDir(ctx, entry.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", entry.Path, err)
		}
		for _, child := range children {
			if !child.IsDir && IsPNG(child.Name) {
				images = append(images, child.Path)
			}
		}
	}

	return images, nil
}

// IsPNG reports whether name has a .png extension in any case
func IsPNG(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".png")
}
