package models

import (
	"time"
)

// FileEntry is a file taken from a directory listing
type FileEntry struct {
	// Name is the base name of the file
	Name string

	// Path is the full path on the filesystem
	Path string

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time
}

// CopyReason explains why a file is scheduled for copy
type CopyReason string

const (
	// ReasonMissing means the destination has no file with that name
	ReasonMissing CopyReason = "missing"
	// ReasonStale means the destination copy is older than the source
	ReasonStale CopyReason = "stale"
)

// CopyDirective is one planned copy from source to destination
type CopyDirective struct {
	FileName   string     `json:"file_name"`
	SourcePath string     `json:"source_path"`
	DestPath   string     `json:"dest_path"`
	Reason     CopyReason `json:"reason"`
}

// SyncResult is the outcome of executing one CopyDirective
type SyncResult struct {
	FileName    string        `json:"file_name"`
	Success     bool          `json:"success"`
	Reason      CopyReason    `json:"reason"`
	Error       string        `json:"error,omitempty"`
	BytesCopied int64         `json:"bytes_copied,omitempty"`
	Duration    time.Duration `json:"-"`
}
