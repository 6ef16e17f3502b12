package models

import (
	"time"
)

// Status represents the overall result of a run
type Status string

const (
	// StatusSuccess indicates all items completed successfully
	StatusSuccess Status = "success"
	// StatusPartial indicates some items failed
	StatusPartial Status = "partial"
	// StatusFailed indicates the run could not proceed, or every item failed
	StatusFailed Status = "failed"
)

// ExitCode returns the appropriate exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	default:
		return 2
	}
}

// BatchReport represents the results of one image batch
type BatchReport struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Results has one entry per input path, in input order
	Results []ProcessResult

	Succeeded int
	Failed    int
	Status    Status
}

// Finalize computes counters and status from the results
func (r *BatchReport) Finalize(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
	r.Succeeded, r.Failed = 0, 0
	for _, res := range r.Results {
		if res.Success {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
	switch {
	case r.Failed == 0:
		r.Status = StatusSuccess
	case r.Succeeded == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}

// SyncReport represents the results of one directory sync
type SyncReport struct {
	RunID      string
	SourcePath string
	DestPath   string
	DryRun     bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Success is false only when a precondition failed before any copy
	Success bool
	Error   string

	// Plan is the copy plan computed by reconciliation
	Plan []CopyDirective

	// Results has one entry per executed directive, in plan order
	Results []SyncResult

	TotalSynced      int
	BytesTransferred int64
	Status           Status
}

// Finalize computes counters and status from the results
func (r *SyncReport) Finalize(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
	if !r.Success {
		r.Status = StatusFailed
		return
	}
	r.TotalSynced, r.BytesTransferred = 0, 0
	failed := 0
	for _, res := range r.Results {
		if res.Success {
			r.TotalSynced++
			r.BytesTransferred += res.BytesCopied
		} else {
			failed++
		}
	}
	switch {
	case failed == 0:
		r.Status = StatusSuccess
	case r.TotalSynced == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}
