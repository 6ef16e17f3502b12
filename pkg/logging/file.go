package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// rotatingFile is the output of a file logger, shared with derived loggers
type rotatingFile struct {
	config FileLoggerConfig
	file   *os.File
	size   int64
}

// NewFileLogger creates a logger appending to config.Path, rotating it
// to Path.1 .. Path.N once it grows past MaxSize.
func NewFileLogger(config FileLoggerConfig) (*WriterLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	rf := &rotatingFile{config: config, file: file, size: info.Size()}
	s := &sink{out: file, closer: rf.close}
	s.before = func(next int) {
		if config.MaxSize > 0 && rf.size >= config.MaxSize {
			rf.rotate()
			s.out = rf.file
		}
		rf.size += int64(next)
	}

	return &WriterLogger{
		sink:   s,
		format: config.Format,
		level:  config.Level,
		now:    time.Now,
	}, nil
}

func (r *rotatingFile) close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *rotatingFile) rotate() {
	if r.file == nil {
		return
	}
	r.file.Close()

	path := r.config.Path
	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", path, i), fmt.Sprintf("%s.%d", path, i+1))
	}
	os.Rename(path, path+".1")

	if r.config.MaxBackups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", path, r.config.MaxBackups+1))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	r.file = file
	r.size = 0
}
