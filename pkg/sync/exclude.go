package sync

import (
	"path/filepath"
	"strings"

	"github.com/sdejongh/canvasync/pkg/models"
)

// shouldExclude checks if a file name matches one of the glob patterns.
// Matching is case-insensitive, like project file detection:
//   - Simple glob patterns: *_autosave.sai, tmp*
//   - Exact names: draft.sai2
func shouldExclude(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if matched, _ := filepath.Match(strings.ToLower(pattern), lower); matched {
			return true
		}
	}
	return false
}

// filterExcluded drops entries whose name matches an exclude pattern
func filterExcluded(entries []models.FileEntry, patterns []string) []models.FileEntry {
	if len(patterns) == 0 {
		return entries
	}
	kept := make([]models.FileEntry, 0, len(entries))
	for _, e := range entries {
		if !shouldExclude(e.Name, patterns) {
			kept = append(kept, e)
		}
	}
	return kept
}

// ValidatePatterns reports the first malformed glob pattern
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return &models.ValidationError{Field: "sync.exclude", Message: "invalid pattern " + pattern + ": " + err.Error()}
		}
	}
	return nil
}
