package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// sink serializes writes from a logger and every logger derived from it
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	before func(next int) // called under mu before each write, may swap out
	closer func() error
}

func (s *sink) write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.before != nil {
		s.before(len(line))
	}
	s.out.Write(line)
}

// WriterLogger writes text or JSON lines to an io.Writer
type WriterLogger struct {
	sink   *sink
	format Format
	level  Level
	fields Fields
	now    func() time.Time
}

// NewWriterLogger creates a logger writing to w, typically os.Stderr
func NewWriterLogger(w io.Writer, format Format, level Level) *WriterLogger {
	return &WriterLogger{
		sink:   &sink{out: w},
		format: format,
		level:  level,
		now:    time.Now,
	}
}

// Debug logs a debug message
func (l *WriterLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *WriterLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *WriterLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *WriterLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields sharing the same output
func (l *WriterLogger) WithFields(fields Fields) Logger {
	return &WriterLogger{
		sink:   l.sink,
		format: l.format,
		level:  l.level,
		fields: mergeFields(l.fields, fields),
		now:    l.now,
	}
}

// Close releases the underlying output when it is owned by the logger
func (l *WriterLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.closer != nil {
		closer := l.sink.closer
		l.sink.closer = nil
		return closer()
	}
	return nil
}

func (l *WriterLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}

	all := mergeFields(l.fields, fields)
	ts := l.now().UTC()

	var line []byte
	if l.format == FormatJSON {
		var jerr error
		line, jerr = formatJSON(ts, level, msg, err, all)
		if jerr != nil {
			return
		}
	} else {
		line = formatText(ts, level, msg, err, all)
	}

	l.sink.write(line)
}

func formatJSON(ts time.Time, level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["timestamp"] = ts.Format(time.RFC3339)
	entry["level"] = LevelString(level)
	entry["message"] = msg
	if err != nil {
		entry["error"] = err.Error()
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}
	return append(data, '\n'), nil
}

func formatText(ts time.Time, level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", ts.Format("2006-01-02T15:04:05.000Z"), LevelString(level), msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}
