// Package sync keeps a backup directory of SAI project files current.
package sync

import (
	"path/filepath"
	"strings"

	"github.com/sdejongh/canvasync/pkg/models"
)

// projectExtensions are the file types the sync considers
var projectExtensions = []string{".sai", ".sai2"}

// IsProjectFile reports whether name is a SAI project file, ignoring case
func IsProjectFile(name string) bool {
	ext := filepath.Ext(name)
	for _, want := range projectExtensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// PlanSync decides which source files must be copied into destDir.
// A file is planned when the destination has no entry of the same name
// (missing) or its entry is strictly older (stale). Non-project files and
// destination-only files are ignored. Directives follow source order.
func PlanSync(source, dest []models.FileEntry, destDir string) []models.CopyDirective {
	existing := make(map[string]models.FileEntry, len(dest))
	for _, d := range dest {
		existing[d.Name] = d
	}

	plan := []models.CopyDirective{}
	for _, s := range source {
		if !IsProjectFile(s.Name) {
			continue
		}

		reason := models.ReasonMissing
		if d, ok := existing[s.Name]; ok {
			if !d.ModTime.Before(s.ModTime) {
				continue
			}
			reason = models.ReasonStale
		}

		plan = append(plan, models.CopyDirective{
			FileName:   s.Name,
			SourcePath: s.Path,
			DestPath:   filepath.Join(destDir, s.Name),
			Reason:     reason,
		})
	}
	return plan
}
