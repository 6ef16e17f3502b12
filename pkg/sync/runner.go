package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/canvasync/pkg/logging"
	"github.com/sdejongh/canvasync/pkg/models"
	"github.com/sdejongh/canvasync/pkg/output"
	"github.com/sdejongh/canvasync/pkg/ratelimit"
	"github.com/sdejongh/canvasync/pkg/storage"
)

// Runner mirrors project files from a source directory into a destination
// directory. It only adds or replaces files; nothing is ever deleted.
type Runner struct {
	fs        storage.Backend
	worker    *Worker
	formatter output.Formatter
	logger    logging.Logger
	exclude   []string
	now       func() time.Time
}

// NewRunner creates a sync runner. formatter, logger and limiter may be nil.
func NewRunner(
	fs storage.Backend,
	formatter output.Formatter,
	logger logging.Logger,
	limiter *ratelimit.Limiter,
	maxWorkers int,
	exclude []string,
) *Runner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{
		fs:        fs,
		worker:    NewWorker(fs, limiter, maxWorkers),
		formatter: formatter,
		logger:    logger,
		exclude:   exclude,
		now:       time.Now,
	}
}

// Run syncs srcDir into dstDir. A missing source fails the run before the
// destination is touched. A missing destination is created, except in dry
// run mode where the plan is computed against an empty destination and no
// file is written.
func (r *Runner) Run(ctx context.Context, srcDir, dstDir string, dryRun bool) *models.SyncReport {
	report := &models.SyncReport{
		RunID:      uuid.New().String(),
		SourcePath: srcDir,
		DestPath:   dstDir,
		DryRun:     dryRun,
		StartTime:  r.now(),
		Plan:       []models.CopyDirective{},
		Results:    []models.SyncResult{},
	}
	logger := r.logger.WithFields(logging.Fields{
		"run_id": report.RunID,
		"source": srcDir,
		"dest":   dstDir,
	})

	fail := func(err error) *models.SyncReport {
		report.Success = false
		report.Error = err.Error()
		report.Finalize(r.now())
		logger.Error(ctx, "sync aborted", err, nil)
		if r.formatter != nil {
			r.formatter.CompleteSync(report)
		}
		return report
	}

	sourceEntries, err := r.listSource(ctx, srcDir)
	if err != nil {
		return fail(err)
	}

	destEntries, err := r.prepareDest(ctx, dstDir, dryRun)
	if err != nil {
		return fail(err)
	}

	report.Success = true
	report.Plan = PlanSync(filterExcluded(sourceEntries, r.exclude), destEntries, dstDir)

	logger.Info(ctx, "sync planned", logging.Fields{
		"source_files": len(sourceEntries),
		"dest_files":   len(destEntries),
		"planned":      len(report.Plan),
		"dry_run":      dryRun,
	})

	if dryRun || len(report.Plan) == 0 {
		report.Finalize(r.now())
		if r.formatter != nil {
			r.formatter.CompleteSync(report)
		}
		return report
	}

	sizes := make(map[string]int64, len(sourceEntries))
	var totalBytes int64
	for _, e := range sourceEntries {
		sizes[e.Name] = e.Size
	}
	for _, d := range report.Plan {
		totalBytes += sizes[d.FileName]
	}

	if r.formatter != nil {
		r.formatter.Start(nil, output.OperationSync, len(report.Plan), totalBytes)
	}

	report.Results = r.worker.Execute(ctx, report.Plan, sizes, r.formatter, logger)
	report.Finalize(r.now())

	logger.Info(ctx, "sync completed", logging.Fields{
		"status":       string(report.Status),
		"total_synced": report.TotalSynced,
		"bytes":        report.BytesTransferred,
		"duration":     report.Duration.String(),
	})
	if r.formatter != nil {
		r.formatter.CompleteSync(report)
	}

	return report
}

func (r *Runner) listSource(ctx context.Context, dir string) ([]models.FileEntry, error) {
	info, err := r.fs.Stat(ctx, dir)
	if err != nil {
		if storage.IsNotExist(err) {
			return nil, fmt.Errorf("source directory does not exist: %s", dir)
		}
		return nil, fmt.Errorf("failed to access source directory: %w", err)
	}
	if !info.IsDir {
		return nil, fmt.Errorf("source is not a directory: %s", dir)
	}
	return r.listFiles(ctx, dir)
}

func (r *Runner) prepareDest(ctx context.Context, dir string, dryRun bool) ([]models.FileEntry, error) {
	info, err := r.fs.Stat(ctx, dir)
	switch {
	case err == nil && !info.IsDir:
		return nil, fmt.Errorf("destination is not a directory: %s", dir)
	case err == nil:
		return r.listFiles(ctx, dir)
	case !storage.IsNotExist(err):
		return nil, fmt.Errorf("failed to access destination directory: %w", err)
	case dryRun:
		return []models.FileEntry{}, nil
	}

	if err := r.fs.MkdirAll(ctx, dir); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}
	return []models.FileEntry{}, nil
}

// listFiles returns the regular files directly inside dir
func (r *Runner) listFiles(ctx context.Context, dir string) ([]models.FileEntry, error) {
	infos, err := r.fs.ListDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]models.FileEntry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir {
			continue
		}
		entries = append(entries, models.FileEntry{
			Name:    info.Name,
			Path:    info.Path,
			Size:    info.Size,
			ModTime: info.ModTime,
		})
	}
	return entries, nil
}
