package batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sdejongh/canvasync/pkg/models"
)

// DateLayout is the prefix format of output directory names
const DateLayout = "20060102"

// BaseName returns the file name of path without a trailing .png,
// matched case-insensitively
func BaseName(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".png") {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// OutputDirName returns <YYYYMMDD>_<base> for a run date in UTC
func OutputDirName(base string, runDate time.Time) string {
	return runDate.UTC().Format(DateLayout) + "_" + base
}

// NameAllocator hands out output directories for one batch. A directory
// already given to an earlier item, or already present from an earlier run,
// gets a _2, _3, ... suffix.
type NameAllocator struct {
	used   map[string]bool
	exists func(dir string) bool
}

// NewNameAllocator creates an empty allocator. exists reports directories
// left by earlier runs; nil means none.
func NewNameAllocator(exists func(dir string) bool) *NameAllocator {
	return &NameAllocator{used: make(map[string]bool), exists: exists}
}

// Allocate reserves dir, or the first free suffixed variant of it
func (a *NameAllocator) Allocate(dir string) string {
	candidate := dir
	for n := 2; a.taken(candidate); n++ {
		candidate = fmt.Sprintf("%s_%d", dir, n)
	}
	a.used[candidate] = true
	return candidate
}

func (a *NameAllocator) taken(dir string) bool {
	return a.used[dir] || (a.exists != nil && a.exists(dir))
}

// PlanTasks builds the batch items in input order. exists is passed to the
// allocator so earlier output directories are never reused.
func PlanTasks(paths []string, runDate time.Time, exists func(dir string) bool) []models.ImageTask {
	alloc := NewNameAllocator(exists)
	tasks := make([]models.ImageTask, len(paths))
	for i, p := range paths {
		base := BaseName(p)
		dir := filepath.Join(filepath.Dir(p), OutputDirName(base, runDate))
		tasks[i] = models.ImageTask{
			Index:      i,
			SourcePath: p,
			BaseName:   base,
			OutputDir:  alloc.Allocate(dir),
		}
	}
	return tasks
}

// Outputs returns the artifact paths of a task
func Outputs(task models.ImageTask) models.OutputPaths {
	return models.OutputPaths{
		Wide:     filepath.Join(task.OutputDir, task.BaseName+models.SuffixWide),
		BoxFit:   filepath.Join(task.OutputDir, task.BaseName+models.SuffixBoxFit),
		Original: filepath.Join(task.OutputDir, task.BaseName+models.SuffixOriginal),
	}
}
