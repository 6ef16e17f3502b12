package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestLogPath(t *testing.T, parts ...string) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "canvasync-logging-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	return filepath.Join(append([]string{tempDir}, parts...)...)
}

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := newTestLogPath(t, "nested", "dir", "canvasync.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file was not created: %v", err)
	}
}

func TestFileLogger_Appends(t *testing.T) {
	ctx := context.Background()
	logPath := newTestLogPath(t, "canvasync.log")
	config := FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel}

	for _, msg := range []string{"first run", "second run"} {
		logger, err := NewFileLogger(config)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info(ctx, msg, nil)
		logger.Close()
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "first run") || !strings.Contains(string(content), "second run") {
		t.Errorf("log should keep both runs:\n%s", content)
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	ctx := context.Background()
	logPath := newTestLogPath(t, "canvasync.log")

	logger, err := NewFileLogger(FileLoggerConfig{
		Path:       logPath,
		Format:     FormatText,
		Level:      InfoLevel,
		MaxSize:    100,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	// derived loggers must rotate the same file
	derived := logger.WithFields(Fields{"run_id": "r1"})
	for i := 0; i < 20; i++ {
		derived.Info(ctx, "a message long enough to push the file over its size limit", nil)
	}
	logger.Close()

	for _, p := range []string{logPath, logPath + ".1", logPath + ".2"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", filepath.Base(p), err)
		}
	}
	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Error("backups beyond MaxBackups should be removed")
	}
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	logPath := newTestLogPath(t, "canvasync.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatJSON, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker := logger.WithFields(Fields{"worker": id})
			for j := 0; j < 100; j++ {
				worker.Info(ctx, "item processed", Fields{"index": j})
			}
		}(i)
	}
	wg.Wait()
	logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1000 {
		t.Errorf("expected 1000 log lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			t.Fatalf("interleaved line: %q", line)
		}
	}
}

func TestFileLogger_CloseTwice(t *testing.T) {
	logger, err := NewFileLogger(FileLoggerConfig{Path: newTestLogPath(t, "x.log")})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
