package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/canvasync/internal/platform"
	"github.com/sdejongh/canvasync/pkg/config"
	"github.com/sdejongh/canvasync/pkg/logging"
	"github.com/sdejongh/canvasync/pkg/models"
	"github.com/sdejongh/canvasync/pkg/output"
)

// ExitError carries a non-zero exit code derived from a report status.
// main exits with Code without printing anything else.
type ExitError struct {
	Code   int
	Status models.Status
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("run finished with status %s", e.Status)
}

// exitWithStatus maps a report status to the command result
func exitWithStatus(status models.Status) error {
	if code := status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Status: status}
	}
	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyGlobalFlags overrides config values with the persistent flags
func applyGlobalFlags(cfg *config.Config) {
	// Output format
	if globalFlags.Output != "" {
		cfg.Output.Format = globalFlags.Output
	}

	if globalFlags.LogFile != "" {
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}

// resolvePath validates a path argument and returns its absolute form
func resolvePath(name, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%s path is required", name)
	}
	resolved, err := platform.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("invalid %s path: %w", name, err)
	}
	return resolved, nil
}

// validateSyncPaths rejects identical or nested source and destination
func validateSyncPaths(source, dest string) error {
	if source == dest {
		return fmt.Errorf("source and destination cannot be the same: %s", source)
	}
	if platform.IsNested(source, dest) {
		return fmt.Errorf("destination cannot be inside source directory")
	}
	if platform.IsNested(dest, source) {
		return fmt.Errorf("source cannot be inside destination directory")
	}
	return nil
}

// createFormatter creates the output formatter. Quiet human output gets no
// formatter at all; errors still reach stderr through the command result.
func createFormatter(cfg *config.Config, w io.Writer) (output.Formatter, error) {
	if cfg.Output.Quiet && cfg.Output.Format != "json" {
		return nil, nil
	}
	return output.New(cfg.Output.Format, cfg.Output.Progress, w)
}

// createLogger creates a logger based on configuration.
// --log-file wins over --verbose, which logs to stderr.
func createLogger(cfg *config.Config) (logging.Logger, error) {
	format := logging.ParseFormat(cfg.Logging.Format)
	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.File != "" {
		logger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      level,
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		})
		if err != nil {
			return nil, err
		}
		return logger, nil
	}

	if globalFlags.Verbose {
		return logging.NewWriterLogger(os.Stderr, format, level), nil
	}

	return logging.NewNullLogger(), nil
}
