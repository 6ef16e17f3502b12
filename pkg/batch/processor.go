// Package batch turns source PNGs into their wide and box-fit variants.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/canvasync/pkg/imaging"
	"github.com/sdejongh/canvasync/pkg/logging"
	"github.com/sdejongh/canvasync/pkg/models"
	"github.com/sdejongh/canvasync/pkg/output"
	"github.com/sdejongh/canvasync/pkg/resize"
	"github.com/sdejongh/canvasync/pkg/storage"
)

// Processor runs image batches. Items are independent: a failure marks only
// its own result.
type Processor struct {
	fs         storage.Backend
	codec      imaging.Codec
	formatter  output.Formatter
	logger     logging.Logger
	config     models.ResizeConfig
	maxWorkers int
	now        func() time.Time
}

// NewProcessor creates a batch processor. formatter and logger may be nil.
func NewProcessor(
	fs storage.Backend,
	codec imaging.Codec,
	formatter output.Formatter,
	logger logging.Logger,
	config models.ResizeConfig,
	maxWorkers int,
) *Processor {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Processor{
		fs:         fs,
		codec:      codec,
		formatter:  formatter,
		logger:     logger,
		config:     config,
		maxWorkers: maxWorkers,
		now:        time.Now,
	}
}

// Run processes paths and returns one result per path, in input order.
// The run date used in output directory names is taken once, at start.
func (p *Processor) Run(ctx context.Context, paths []string) *models.BatchReport {
	report := &models.BatchReport{
		RunID:     uuid.New().String(),
		StartTime: p.now(),
		Results:   make([]models.ProcessResult, len(paths)),
	}
	logger := p.logger.WithFields(logging.Fields{"run_id": report.RunID})

	if len(paths) == 0 {
		report.Finalize(p.now())
		return report
	}

	logger.Info(ctx, "batch started", logging.Fields{"images": len(paths), "workers": p.maxWorkers})
	if p.formatter != nil {
		p.formatter.Start(nil, output.OperationResize, len(paths), 0)
	}

	// An unreadable candidate counts as taken so nothing is overwritten
	tasks := PlanTasks(paths, report.StartTime, func(dir string) bool {
		exists, err := p.fs.Exists(ctx, dir)
		return exists || err != nil
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, p.maxWorkers)
	done := 0

	finish := func(i int, res models.ProcessResult) {
		mu.Lock()
		defer mu.Unlock()

		report.Results[i] = res
		done++
		p.notify(res, done, len(paths))
	}

	for i := range tasks {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			finish(i, failedResult(tasks[i].SourcePath, ctx.Err()))
			continue
		}

		wg.Add(1)
		go func(task models.ImageTask) {
			defer wg.Done()
			defer func() { <-semaphore }()

			itemLogger := logger.WithFields(logging.Fields{"path": task.SourcePath})
			res := p.processOne(ctx, task)
			if res.Success {
				itemLogger.Info(ctx, "image processed", logging.Fields{
					"output_dir": res.OutputDir,
					"wide":       res.Wide.String(),
					"box_fit":    res.BoxFit.String(),
				})
			} else {
				itemLogger.Warn(ctx, "image failed", logging.Fields{"error": res.Error})
			}
			finish(task.Index, res)
		}(tasks[i])
	}

	wg.Wait()
	report.Finalize(p.now())

	logger.Info(ctx, "batch completed", logging.Fields{
		"status":    string(report.Status),
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"duration":  report.Duration.String(),
	})
	if p.formatter != nil {
		p.formatter.CompleteBatch(report)
	}

	return report
}

// processOne runs every step for a single image. A cancelled context stops
// the item before its first write.
func (p *Processor) processOne(ctx context.Context, task models.ImageTask) models.ProcessResult {
	if err := ctx.Err(); err != nil {
		return failedResult(task.SourcePath, err)
	}

	data, err := p.fs.ReadFile(ctx, task.SourcePath)
	if err != nil {
		return failedResult(task.SourcePath, err)
	}

	original, err := p.codec.DecodeConfig(data)
	if err != nil {
		return failedResult(task.SourcePath, fmt.Errorf("failed to decode image: %w", err))
	}
	task.Original = original

	targets, err := resize.Plan(original, p.config)
	if err != nil {
		return failedResult(task.SourcePath, err)
	}

	wide, err := p.codec.Resample(data, targets.Wide)
	if err != nil {
		return failedResult(task.SourcePath, fmt.Errorf("failed to resize wide variant: %w", err))
	}
	boxFit, err := p.codec.Resample(data, targets.BoxFit)
	if err != nil {
		return failedResult(task.SourcePath, fmt.Errorf("failed to resize box-fit variant: %w", err))
	}

	if err := ctx.Err(); err != nil {
		return failedResult(task.SourcePath, err)
	}

	if err := p.fs.MkdirAll(ctx, task.OutputDir); err != nil {
		return failedResult(task.SourcePath, err)
	}

	outputs := Outputs(task)
	if err := p.fs.WriteFile(ctx, outputs.Wide, wide); err != nil {
		return failedResult(task.SourcePath, err)
	}
	if err := p.fs.WriteFile(ctx, outputs.BoxFit, boxFit); err != nil {
		return failedResult(task.SourcePath, err)
	}
	if err := p.fs.Move(ctx, task.SourcePath, outputs.Original); err != nil {
		return failedResult(task.SourcePath, err)
	}

	return models.ProcessResult{
		SourcePath: task.SourcePath,
		Success:    true,
		Outputs:    &outputs,
		OutputDir:  task.OutputDir,
		Original:   task.Original,
		Wide:       targets.Wide,
		BoxFit:     targets.BoxFit,
	}
}

func (p *Processor) notify(res models.ProcessResult, current, total int) {
	if p.formatter == nil {
		return
	}
	update := output.ProgressUpdate{
		Type:        output.UpdateItemComplete,
		Path:        res.SourcePath,
		CurrentItem: current,
		TotalItems:  total,
	}
	if !res.Success {
		update.Type = output.UpdateItemError
		update.Error = errors.New(res.Error)
	}
	p.formatter.Progress(update)
}

func failedResult(path string, err error) models.ProcessResult {
	return models.ProcessResult{
		SourcePath: path,
		Success:    false,
		Error:      err.Error(),
	}
}
