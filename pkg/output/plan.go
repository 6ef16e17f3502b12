package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sdejongh/canvasync/pkg/models"
	"github.com/sdejongh/canvasync/pkg/storage"
)

// WritePlanReport writes the copy plan of a sync run to path through fs, so
// the file is replaced atomically. Format can be "human" or "json".
// Nothing is written for an empty plan.
func WritePlanReport(ctx context.Context, fs storage.Backend, report *models.SyncReport, path string, format string) error {
	if err := ValidatePlanFormat(format); err != nil {
		return err
	}
	if len(report.Plan) == 0 {
		return nil
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "json":
		err = writePlanJSON(report, &buf, time.Now())
	default:
		err = writePlanHuman(report, &buf, time.Now())
	}
	if err != nil {
		return err
	}

	if err := fs.WriteFile(ctx, path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write plan report: %w", err)
	}
	return nil
}

// ValidatePlanFormat rejects plan report formats other than human and json
func ValidatePlanFormat(format string) error {
	switch format {
	case "human", "json":
		return nil
	default:
		return fmt.Errorf("invalid plan format: %q (must be 'human' or 'json')", format)
	}
}

// failedCopies maps file names to the error of their failed copy
func failedCopies(report *models.SyncReport) map[string]string {
	failed := make(map[string]string)
	for _, res := range report.Results {
		if !res.Success {
			failed[res.FileName] = res.Error
		}
	}
	return failed
}

func writePlanHuman(report *models.SyncReport, w io.Writer, now time.Time) error {
	fmt.Fprintf(w, "Copy Plan\n")
	fmt.Fprintf(w, "=========\n\n")
	fmt.Fprintf(w, "Generated: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	fmt.Fprintf(w, "Source: %s\n", report.SourcePath)
	fmt.Fprintf(w, "Destination: %s\n", report.DestPath)
	fmt.Fprintf(w, "Dry Run: %v\n\n", report.DryRun)
	fmt.Fprintf(w, "Total Files: %d\n\n", len(report.Plan))

	byReason := make(map[models.CopyReason][]models.CopyDirective)
	for _, d := range report.Plan {
		byReason[d.Reason] = append(byReason[d.Reason], d)
	}

	labels := []struct {
		reason models.CopyReason
		label  string
	}{
		{models.ReasonMissing, "Missing in Destination"},
		{models.ReasonStale, "Outdated in Destination"},
	}

	failed := failedCopies(report)
	for _, l := range labels {
		directives := byReason[l.reason]
		if len(directives) == 0 {
			continue
		}

		title := fmt.Sprintf("%s (%d files)", l.label, len(directives))
		fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)))
		for _, d := range directives {
			fmt.Fprintf(w, "  %s\n", d.FileName)
			if msg, ok := failed[d.FileName]; ok {
				fmt.Fprintf(w, "    Error: %s\n", msg)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

func writePlanJSON(report *models.SyncReport, w io.Writer, now time.Time) error {
	type planEntry struct {
		models.CopyDirective
		Error string `json:"error,omitempty"`
	}

	failed := failedCopies(report)
	entries := make([]planEntry, 0, len(report.Plan))
	for _, d := range report.Plan {
		entries = append(entries, planEntry{CopyDirective: d, Error: failed[d.FileName]})
	}

	doc := struct {
		Generated  string      `json:"generated"`
		RunID      string      `json:"run_id"`
		SourcePath string      `json:"source_path"`
		DestPath   string      `json:"dest_path"`
		DryRun     bool        `json:"dry_run"`
		TotalCount int         `json:"total_count"`
		Plan       []planEntry `json:"plan"`
	}{
		Generated:  now.Format(time.RFC3339),
		RunID:      report.RunID,
		SourcePath: report.SourcePath,
		DestPath:   report.DestPath,
		DryRun:     report.DryRun,
		TotalCount: len(report.Plan),
		Plan:       entries,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
