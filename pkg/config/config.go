package config

import (
	"fmt"

	"github.com/sdejongh/canvasync/pkg/models"
	"github.com/sdejongh/canvasync/pkg/ratelimit"
	"github.com/sdejongh/canvasync/pkg/sync"
)

// Config represents the application configuration
type Config struct {
	Resize      ResizeConfig      `yaml:"resize"`
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ResizeConfig holds image batch settings
type ResizeConfig struct {
	TargetDir       string   `yaml:"target_dir"`
	MaxEdge         int      `yaml:"max_edge"`
	BoxSizes        [][2]int `yaml:"box_sizes,flow"`
	Tolerance       int      `yaml:"tolerance"`
	ShrinkFactor    float64  `yaml:"shrink_factor"`
	MaxShrinkRounds int      `yaml:"max_shrink_rounds"`
}

// SyncConfig holds project backup settings
type SyncConfig struct {
	SourceDir string   `yaml:"source_dir"`
	DestDir   string   `yaml:"dest_dir"`
	Exclude   []string `yaml:"exclude"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int    `yaml:"max_workers"`
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "10M", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = no file log)
}

// Default returns the default configuration
func Default() *Config {
	defaults := models.DefaultResizeConfig()
	boxes := make([][2]int, len(defaults.BoxSizes))
	for i, b := range defaults.BoxSizes {
		boxes[i] = [2]int{b.Width, b.Height}
	}

	return &Config{
		Resize: ResizeConfig{
			MaxEdge:         defaults.MaxEdge,
			BoxSizes:        boxes,
			Tolerance:       defaults.Tolerance,
			ShrinkFactor:    defaults.ShrinkFactor,
			MaxShrinkRounds: defaults.MaxShrinkRounds,
		},
		Sync: SyncConfig{
			Exclude: []string{},
		},
		Performance: PerformanceConfig{
			MaxWorkers: 4,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// ResizeConfig builds the immutable value handed to the resize engine
func (c *Config) ResizeConfig() models.ResizeConfig {
	boxes := make([]models.Dimensions, len(c.Resize.BoxSizes))
	for i, b := range c.Resize.BoxSizes {
		boxes[i] = models.Dimensions{Width: b[0], Height: b[1]}
	}
	return models.ResizeConfig{
		MaxEdge:         c.Resize.MaxEdge,
		BoxSizes:        boxes,
		Tolerance:       c.Resize.Tolerance,
		ShrinkFactor:    c.Resize.ShrinkFactor,
		MaxShrinkRounds: c.Resize.MaxShrinkRounds,
	}
}

// BandwidthLimit returns the parsed bandwidth limit in bytes per second,
// 0 meaning unlimited
func (c *Config) BandwidthLimit() (int64, error) {
	if c.Performance.BandwidthLimit == "" {
		return 0, nil
	}
	return ratelimit.ParseRate(c.Performance.BandwidthLimit)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.ResizeConfig().Validate(); err != nil {
		if verr, ok := err.(*models.ValidationError); ok {
			return &models.ValidationError{
				Field:   "resize." + resizeFieldNames[fieldRoot(verr.Field)] + fieldIndex(verr.Field),
				Message: verr.Message,
			}
		}
		return err
	}

	if err := sync.ValidatePatterns(c.Sync.Exclude); err != nil {
		return err
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if _, err := c.BandwidthLimit(); err != nil {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// resizeFieldNames maps engine field names to their YAML keys
var resizeFieldNames = map[string]string{
	"MaxEdge":         "max_edge",
	"BoxSizes":        "box_sizes",
	"Tolerance":       "tolerance",
	"ShrinkFactor":    "shrink_factor",
	"MaxShrinkRounds": "max_shrink_rounds",
}

// fieldRoot strips an index suffix: "BoxSizes[2]" -> "BoxSizes"
func fieldRoot(field string) string {
	for i, r := range field {
		if r == '[' {
			return field[:i]
		}
	}
	return field
}

func fieldIndex(field string) string {
	root := fieldRoot(field)
	if root == field {
		return ""
	}
	return field[len(root):]
}

// String renders a one-line summary used in debug logs
func (c *Config) String() string {
	return fmt.Sprintf("resize(max_edge=%d boxes=%d tolerance=%d shrink=%g) workers=%d bandwidth=%q output=%s",
		c.Resize.MaxEdge, len(c.Resize.BoxSizes), c.Resize.Tolerance, c.Resize.ShrinkFactor,
		c.Performance.MaxWorkers, c.Performance.BandwidthLimit, c.Output.Format)
}
