package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
}

func newBufferLogger(format Format, level Level) (*WriterLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, format, level)
	l.now = fixedClock
	return l, &buf
}

func TestWriterLogger_Levels(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufferLogger(FormatText, WarnLevel)

	logger.Debug(ctx, "debug message", nil)
	logger.Info(ctx, "info message", nil)
	logger.Warn(ctx, "warn message", nil)
	logger.Error(ctx, "error message", nil, nil)

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Error("warn message should be present")
	}
	if !strings.Contains(out, "[ERROR] error message") {
		t.Error("error message should be present")
	}
}

func TestWriterLogger_TextFormat(t *testing.T) {
	logger, buf := newBufferLogger(FormatText, InfoLevel)

	logger.Info(context.Background(), "image processed", Fields{"path": "/art/a.png", "bytes": 42})

	want := "2024-05-01T12:30:00.000Z [INFO] image processed bytes=42 path=/art/a.png\n"
	if buf.String() != want {
		t.Errorf("text line = %q, want %q", buf.String(), want)
	}
}

func TestWriterLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(FormatJSON, InfoLevel)

	logger.Error(context.Background(), "copy failed", errors.New("disk full"), Fields{"file": "a.sai"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}

	checks := map[string]string{
		"level":     "ERROR",
		"message":   "copy failed",
		"error":     "disk full",
		"file":      "a.sai",
		"timestamp": "2024-05-01T12:30:00Z",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %s", k, entry[k], want)
		}
	}
}

func TestWriterLogger_ReservedKeysWin(t *testing.T) {
	logger, buf := newBufferLogger(FormatJSON, InfoLevel)

	logger.Info(context.Background(), "real", Fields{"message": "spoofed"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	if entry["message"] != "real" {
		t.Errorf("message = %v, want real", entry["message"])
	}
}

func TestWriterLogger_WithFields(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufferLogger(FormatJSON, InfoLevel)

	run := logger.WithFields(Fields{"run_id": "abc"})
	item := run.WithFields(Fields{"path": "/art/a.png"})
	item.Info(ctx, "done", Fields{"status": "ok"})
	run.Info(ctx, "batch", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first, second map[string]interface{}
	json.Unmarshal([]byte(lines[0]), &first)
	json.Unmarshal([]byte(lines[1]), &second)

	if first["run_id"] != "abc" || first["path"] != "/art/a.png" || first["status"] != "ok" {
		t.Errorf("derived logger lost fields: %v", first)
	}
	if second["run_id"] != "abc" {
		t.Errorf("run_id = %v, want abc", second["run_id"])
	}
	if _, ok := second["path"]; ok {
		t.Error("child fields must not leak into the parent logger")
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", errors.New("x"), nil)

	if logger.WithFields(Fields{"key": "value"}) == nil {
		t.Error("WithFields should return a logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"Warning", WarnLevel},
		{"error", ErrorLevel},
		{"unknown", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("JSON should parse as FormatJSON")
	}
	if ParseFormat("text") != FormatText || ParseFormat("xml") != FormatText {
		t.Error("unknown formats should fall back to text")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := LevelString(tt.level); got != tt.expected {
			t.Errorf("LevelString(%v) = %q, want %q", tt.level, got, tt.expected)
		}
	}
}
