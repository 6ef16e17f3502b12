package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/canvasync/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting.
// Nothing is written until the run completes.
type JSONFormatter struct {
	writer io.Writer
	errors []string
}

// JSONBatchReport is the document written after an image batch
type JSONBatchReport struct {
	RunID      string                 `json:"run_id"`
	Status     string                 `json:"status"`
	Duration   string                 `json:"duration"`
	DurationMs int64                  `json:"duration_ms"`
	Succeeded  int                    `json:"succeeded"`
	Failed     int                    `json:"failed"`
	Results    []models.ProcessResult `json:"results"`
	Errors     []string               `json:"errors,omitempty"`
}

// JSONSyncReport is the document written after a directory sync
type JSONSyncReport struct {
	RunID            string                 `json:"run_id"`
	Status           string                 `json:"status"`
	Success          bool                   `json:"success"`
	Error            string                 `json:"error,omitempty"`
	SourcePath       string                 `json:"source_path"`
	DestPath         string                 `json:"dest_path"`
	DryRun           bool                   `json:"dry_run"`
	Duration         string                 `json:"duration"`
	DurationMs       int64                  `json:"duration_ms"`
	TotalSynced      int                    `json:"total_synced"`
	BytesTransferred int64                  `json:"bytes_transferred"`
	AverageSpeed     int64                  `json:"average_speed_bytes_per_sec,omitempty"`
	Plan             []models.CopyDirective `json:"plan"`
	Results          []models.SyncResult    `json:"results"`
	Errors           []string               `json:"errors,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, operation string, totalItems int, totalBytes int64) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is not streamed to keep the output a single JSON document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// CompleteBatch writes the batch report as JSON
func (f *JSONFormatter) CompleteBatch(report *models.BatchReport) error {
	results := report.Results
	if results == nil {
		results = []models.ProcessResult{}
	}
	return f.encode(JSONBatchReport{
		RunID:      report.RunID,
		Status:     string(report.Status),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Succeeded:  report.Succeeded,
		Failed:     report.Failed,
		Results:    results,
		Errors:     f.errors,
	})
}

// CompleteSync writes the sync report as JSON
func (f *JSONFormatter) CompleteSync(report *models.SyncReport) error {
	plan := report.Plan
	if plan == nil {
		plan = []models.CopyDirective{}
	}
	results := report.Results
	if results == nil {
		results = []models.SyncResult{}
	}
	return f.encode(JSONSyncReport{
		RunID:            report.RunID,
		Status:           string(report.Status),
		Success:          report.Success,
		Error:            report.Error,
		SourcePath:       report.SourcePath,
		DestPath:         report.DestPath,
		DryRun:           report.DryRun,
		Duration:         report.Duration.Round(time.Millisecond).String(),
		DurationMs:       report.Duration.Milliseconds(),
		TotalSynced:      report.TotalSynced,
		BytesTransferred: report.BytesTransferred,
		AverageSpeed:     averageSpeed(report.BytesTransferred, report.Duration),
		Plan:             plan,
		Results:          results,
		Errors:           f.errors,
	})
}

// Error records an error for the final document
func (f *JSONFormatter) Error(err error) error {
	f.errors = append(f.errors, err.Error())
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) encode(v any) error {
	w := f.writer
	if w == nil {
		w = os.Stdout
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
