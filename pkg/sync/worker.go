package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/sdejongh/canvasync/pkg/logging"
	"github.com/sdejongh/canvasync/pkg/models"
	"github.com/sdejongh/canvasync/pkg/output"
	"github.com/sdejongh/canvasync/pkg/ratelimit"
	"github.com/sdejongh/canvasync/pkg/storage"
)

// Worker copies planned files in parallel
type Worker struct {
	fs         storage.Backend
	limiter    *ratelimit.Limiter
	maxWorkers int
	semaphore  chan struct{}
}

// NewWorker creates a new worker pool. limiter may be nil.
func NewWorker(fs storage.Backend, limiter *ratelimit.Limiter, maxWorkers int) *Worker {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Worker{
		fs:         fs,
		limiter:    limiter,
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Execute runs every directive and returns one result per directive, in
// plan order. Copies are independent: one failure does not stop the others.
// sizes holds the expected size of each source file for progress reporting.
func (w *Worker) Execute(
	ctx context.Context,
	plan []models.CopyDirective,
	sizes map[string]int64,
	formatter output.Formatter,
	logger logging.Logger,
) []models.SyncResult {
	results := make([]models.SyncResult, len(plan))

	var wg gosync.WaitGroup
	var mu gosync.Mutex
	done := 0

	finish := func(i int, res models.SyncResult) {
		mu.Lock()
		defer mu.Unlock()

		results[i] = res
		done++
		if formatter == nil {
			return
		}
		update := output.ProgressUpdate{
			Type:        output.UpdateItemComplete,
			Path:        res.FileName,
			Bytes:       res.BytesCopied,
			CurrentItem: done,
			TotalItems:  len(plan),
		}
		if !res.Success {
			update.Type = output.UpdateItemError
			update.Bytes = sizes[res.FileName]
			update.Error = errors.New(res.Error)
		}
		formatter.Progress(update)
	}

	for i := range plan {
		select {
		case w.semaphore <- struct{}{}:
		case <-ctx.Done():
			finish(i, failedCopy(plan[i], ctx.Err(), 0))
			continue
		}

		wg.Add(1)
		go func(i int, d models.CopyDirective) {
			defer wg.Done()
			defer func() { <-w.semaphore }()

			start := time.Now()
			n, err := w.fs.Copy(ctx, d.SourcePath, d.DestPath, w.limiter)
			elapsed := time.Since(start)

			fields := logging.Fields{"file": d.FileName, "reason": string(d.Reason)}
			if err != nil {
				logger.Error(ctx, "copy failed", err, fields)
				finish(i, failedCopy(d, err, elapsed))
				return
			}

			fields["bytes"] = n
			fields["duration"] = elapsed.String()
			logger.Info(ctx, "file synced", fields)
			finish(i, models.SyncResult{
				FileName:    d.FileName,
				Success:     true,
				Reason:      d.Reason,
				BytesCopied: n,
				Duration:    elapsed,
			})
		}(i, plan[i])
	}

	wg.Wait()
	return results
}

func failedCopy(d models.CopyDirective, err error, elapsed time.Duration) models.SyncResult {
	return models.SyncResult{
		FileName: d.FileName,
		Success:  false,
		Reason:   d.Reason,
		Error:    err.Error(),
		Duration: elapsed,
	}
}
