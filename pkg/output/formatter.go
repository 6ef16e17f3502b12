package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/sdejongh/canvasync/pkg/models"
)

// Operation names passed to Formatter.Start
const (
	OperationResize = "resize"
	OperationSync   = "sync"
)

// Progress update types
const (
	UpdateItemStart    = "item_start"
	UpdateItemComplete = "item_complete"
	UpdateItemError    = "item_error"
)

// ProgressUpdate represents a progress notification for one batch image or
// one copied project file
type ProgressUpdate struct {
	Type        string
	Path        string
	Bytes       int64
	CurrentItem int
	TotalItems  int
	Error       error
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress bar formatters
type Formatter interface {
	// Start initializes the formatter for a new run. A nil writer means stdout.
	Start(writer io.Writer, operation string, totalItems int, totalBytes int64) error

	// Progress reports progress of a single item
	Progress(update ProgressUpdate) error

	// CompleteBatch displays the summary of an image batch
	CompleteBatch(report *models.BatchReport) error

	// CompleteSync displays the summary of a directory sync
	CompleteSync(report *models.SyncReport) error

	// Error reports an error that stopped the run
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for an output format name. progress selects the
// progress bar for human output when w is a terminal.
func New(format string, progress bool, w io.Writer) (Formatter, error) {
	switch format {
	case "json":
		return NewJSONFormatter(), nil
	case "human", "":
		if progress && IsTerminal(w) {
			return NewProgressFormatter(), nil
		}
		return NewHumanFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use: human, json)", format)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func averageSpeed(bytes int64, d time.Duration) int64 {
	if d.Seconds() <= 0 {
		return 0
	}
	return int64(float64(bytes) / d.Seconds())
}
