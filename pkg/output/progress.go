package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/canvasync/pkg/models"
)

const (
	resizeTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}{{string . "failed"}}`
	syncTemplate   = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}{{string . "failed"}}`

	refreshRate = 200 * time.Millisecond
)

// ProgressFormatter draws a progress bar while a run is active and prints
// the human summary once it completes. Images advance the bar by one, sync
// copies by the bytes they moved.
type ProgressFormatter struct {
	mu        sync.Mutex
	writer    io.Writer
	operation string
	bar       *pb.ProgressBar
	failed    int
	summary   *HumanFormatter
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{summary: NewHumanFormatter()}
}

// Start creates and starts the bar
func (f *ProgressFormatter) Start(writer io.Writer, operation string, totalItems int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.operation = operation
	f.failed = 0
	f.summary.writer = writer
	f.summary.totalItems = totalItems

	var bar *pb.ProgressBar
	if operation == OperationSync {
		bar = pb.New64(totalBytes)
		bar.Set(pb.Bytes, true)
		bar.SetTemplateString(syncTemplate)
		bar.Set("prefix", "Syncing")
	} else {
		bar = pb.New(totalItems)
		bar.SetTemplateString(resizeTemplate)
		bar.Set("prefix", "Resizing")
	}
	bar.SetWriter(writer)
	bar.SetRefreshRate(refreshRate)
	f.bar = bar.Start()

	return nil
}

// Progress advances the bar
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case UpdateItemComplete, UpdateItemError:
		if update.Type == UpdateItemError {
			f.failed++
			f.bar.Set("failed", fmt.Sprintf(" (%d failed)", f.failed))
		}
		if f.operation == OperationSync {
			f.bar.Add64(update.Bytes)
		} else {
			f.bar.Increment()
		}
	}
	return nil
}

// CompleteBatch stops the bar and prints the batch summary
func (f *ProgressFormatter) CompleteBatch(report *models.BatchReport) error {
	f.finish()
	return f.summary.CompleteBatch(report)
}

// CompleteSync stops the bar and prints the sync summary
func (f *ProgressFormatter) CompleteSync(report *models.SyncReport) error {
	f.finish()
	return f.summary.CompleteSync(report)
}

// Error reports an error below the bar
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := f.writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "\n❌ Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

func (f *ProgressFormatter) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
}
