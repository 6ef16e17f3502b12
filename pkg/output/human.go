package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sdejongh/canvasync/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	operation  string
	totalItems int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, operation string, totalItems int, totalBytes int64) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.operation = operation
	f.totalItems = totalItems

	switch operation {
	case OperationSync:
		fmt.Fprintf(f.writer, "Syncing %d project files, %s total\n", totalItems, formatBytes(totalBytes))
	default:
		fmt.Fprintf(f.writer, "Processing %d images\n", totalItems)
	}
	return nil
}

// Progress reports progress of one item
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case UpdateItemComplete:
		fmt.Fprintf(f.writer, "[%d/%d] ✓ %s", update.CurrentItem, f.totalItems, update.Path)
		if update.Bytes > 0 {
			fmt.Fprintf(f.writer, " (%s)", formatBytes(update.Bytes))
		}
		fmt.Fprintln(f.writer)

	case UpdateItemError:
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n", update.CurrentItem, f.totalItems, update.Path, update.Error)
	}

	return nil
}

// CompleteBatch displays the image batch summary
func (f *HumanFormatter) CompleteBatch(report *models.BatchReport) error {
	w := f.out()

	fmt.Fprintf(w, "\nResize completed in %s\n\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Images:     %d\n", len(report.Results))
	fmt.Fprintf(w, "  Processed:  %d\n", report.Succeeded)
	fmt.Fprintf(w, "  Failed:     %d\n", report.Failed)

	for _, res := range report.Results {
		if !res.Success {
			continue
		}
		fmt.Fprintf(w, "\n  %s\n", res.SourcePath)
		fmt.Fprintf(w, "    original %s -> wide %s, box %s\n", res.Original, res.Wide, res.BoxFit)
		fmt.Fprintf(w, "    into %s\n", res.OutputDir)
	}

	fmt.Fprintf(w, "\nStatus: %s\n", report.Status)

	if report.Failed > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, res := range report.Results {
			if !res.Success {
				fmt.Fprintf(w, "  %s: %s\n", res.SourcePath, res.Error)
			}
		}
	}
	return nil
}

// CompleteSync displays the sync summary
func (f *HumanFormatter) CompleteSync(report *models.SyncReport) error {
	w := f.out()

	if !report.Success {
		fmt.Fprintf(w, "\nSync failed: %s\n", report.Error)
		fmt.Fprintf(w, "\nStatus: %s\n", report.Status)
		return nil
	}

	if report.DryRun {
		fmt.Fprintf(w, "\nDry run: %d files would be copied\n", len(report.Plan))
		for _, d := range report.Plan {
			fmt.Fprintf(w, "  %-7s %s\n", d.Reason, d.FileName)
		}
		fmt.Fprintf(w, "\nStatus: %s\n", report.Status)
		return nil
	}

	fmt.Fprintf(w, "\nSync completed in %s\n\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Source:       %s\n", report.SourcePath)
	fmt.Fprintf(w, "  Destination:  %s\n", report.DestPath)
	fmt.Fprintf(w, "  Planned:      %d\n", len(report.Plan))
	fmt.Fprintf(w, "  Synced:       %d\n", report.TotalSynced)
	fmt.Fprintf(w, "  Failed:       %d\n", len(report.Results)-report.TotalSynced)
	fmt.Fprintf(w, "  Data:         %s\n", formatBytes(report.BytesTransferred))
	if speed := averageSpeed(report.BytesTransferred, report.Duration); speed > 0 {
		fmt.Fprintf(w, "  Speed:        %s/s\n", formatBytes(speed))
	}

	fmt.Fprintf(w, "\nStatus: %s\n", report.Status)

	if len(report.Results) > report.TotalSynced {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, res := range report.Results {
			if !res.Success {
				fmt.Fprintf(w, "  %s: %s\n", res.FileName, res.Error)
			}
		}
	}
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	w := f.writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// out returns the writer given to Start, or stdout when the run ended
// before anything was started
func (f *HumanFormatter) out() io.Writer {
	if f.writer == nil {
		return os.Stdout
	}
	return f.writer
}
