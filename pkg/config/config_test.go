package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/canvasync/pkg/models"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "canvasync-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return filepath.Join(tempDir, "nested", "config.yaml")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}

	rc := cfg.ResizeConfig()
	if rc.MaxEdge != models.DefaultMaxEdge || rc.Tolerance != models.DefaultTolerance ||
		rc.ShrinkFactor != models.DefaultShrinkFactor || rc.MaxShrinkRounds != models.DefaultMaxShrinkRounds {
		t.Errorf("ResizeConfig() = %+v", rc)
	}
	want := models.DefaultBoxSizes()
	if len(rc.BoxSizes) != len(want) {
		t.Fatalf("BoxSizes = %v, want %v", rc.BoxSizes, want)
	}
	for i := range want {
		if rc.BoxSizes[i] != want[i] {
			t.Errorf("BoxSizes[%d] = %v, want %v", i, rc.BoxSizes[i], want[i])
		}
	}

	if limit, err := cfg.BandwidthLimit(); err != nil || limit != 0 {
		t.Errorf("BandwidthLimit() = %d, %v", limit, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"MaxEdge", func(c *Config) { c.Resize.MaxEdge = 0 }, "resize.max_edge"},
		{"NoBoxes", func(c *Config) { c.Resize.BoxSizes = nil }, "resize.box_sizes"},
		{"BadBox", func(c *Config) { c.Resize.BoxSizes = [][2]int{{1000, 1000}, {0, 50}} }, "resize.box_sizes[1]"},
		{"Tolerance", func(c *Config) { c.Resize.Tolerance = -1 }, "resize.tolerance"},
		{"ShrinkZero", func(c *Config) { c.Resize.ShrinkFactor = 0 }, "resize.shrink_factor"},
		{"ShrinkAboveOne", func(c *Config) { c.Resize.ShrinkFactor = 1.5 }, "resize.shrink_factor"},
		{"Rounds", func(c *Config) { c.Resize.MaxShrinkRounds = 0 }, "resize.max_shrink_rounds"},
		{"Exclude", func(c *Config) { c.Sync.Exclude = []string{"[bad"} }, "sync.exclude"},
		{"Workers", func(c *Config) { c.Performance.MaxWorkers = 0 }, "performance.max_workers"},
		{"Bandwidth", func(c *Config) { c.Performance.BandwidthLimit = "fast" }, "performance.bandwidth_limit"},
		{"OutputFormat", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"LogFormat", func(c *Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"LogLevel", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestBandwidthLimit(t *testing.T) {
	cfg := Default()
	cfg.Performance.BandwidthLimit = "10M"

	limit, err := cfg.BandwidthLimit()
	if err != nil {
		t.Fatalf("BandwidthLimit() error = %v", err)
	}
	if limit != 10*1024*1024 {
		t.Errorf("BandwidthLimit() = %d", limit)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := tempConfigPath(t)

	cfg := Default()
	cfg.Resize.TargetDir = "/art/exports"
	cfg.Resize.MaxEdge = 1600
	cfg.Resize.BoxSizes = [][2]int{{1200, 1200}}
	cfg.Sync.SourceDir = "/art/projects"
	cfg.Sync.DestDir = "/backup/projects"
	cfg.Sync.Exclude = []string{"*_autosave.sai"}
	cfg.Performance.BandwidthLimit = "5M"
	cfg.Output.Format = "json"

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loaded.Resize.TargetDir != "/art/exports" || loaded.Resize.MaxEdge != 1600 {
		t.Errorf("Resize = %+v", loaded.Resize)
	}
	if len(loaded.Resize.BoxSizes) != 1 || loaded.Resize.BoxSizes[0] != [2]int{1200, 1200} {
		t.Errorf("BoxSizes = %v", loaded.Resize.BoxSizes)
	}
	if loaded.Sync.SourceDir != "/art/projects" || loaded.Sync.DestDir != "/backup/projects" {
		t.Errorf("Sync = %+v", loaded.Sync)
	}
	if len(loaded.Sync.Exclude) != 1 || loaded.Sync.Exclude[0] != "*_autosave.sai" {
		t.Errorf("Exclude = %v", loaded.Sync.Exclude)
	}
	if loaded.Performance.BandwidthLimit != "5M" || loaded.Output.Format != "json" {
		t.Errorf("Performance = %+v, Output = %+v", loaded.Performance, loaded.Output)
	}
}

func TestSaveToFile_Invalid(t *testing.T) {
	path := tempConfigPath(t)
	cfg := Default()
	cfg.Resize.ShrinkFactor = 2

	if err := SaveToFile(cfg, path); err == nil {
		t.Fatal("SaveToFile() should reject an invalid config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid config must not be written")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := tempConfigPath(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Run("PartialKeepsDefaults", func(t *testing.T) {
		path := writeConfig(t, "resize:\n  tolerance: 10\nperformance:\n  max_workers: 2\n")

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if cfg.Resize.Tolerance != 10 || cfg.Performance.MaxWorkers != 2 {
			t.Errorf("overrides not applied: %+v %+v", cfg.Resize, cfg.Performance)
		}
		if cfg.Resize.MaxEdge != models.DefaultMaxEdge || len(cfg.Resize.BoxSizes) != len(models.DefaultBoxSizes()) {
			t.Errorf("defaults lost: %+v", cfg.Resize)
		}
		if cfg.Output.Format != "human" || cfg.Logging.Level != "info" {
			t.Errorf("defaults lost: %+v %+v", cfg.Output, cfg.Logging)
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeConfig(t, "\n")
		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if cfg.Resize.MaxEdge != models.DefaultMaxEdge {
			t.Errorf("MaxEdge = %d", cfg.Resize.MaxEdge)
		}
	})

	t.Run("InvalidValue", func(t *testing.T) {
		path := writeConfig(t, "resize:\n  shrink_factor: 1.2\n")
		_, err := LoadFromFile(path)
		if err == nil || !strings.Contains(err.Error(), "resize.shrink_factor") {
			t.Errorf("LoadFromFile() error = %v", err)
		}
	})

	t.Run("UnknownKey", func(t *testing.T) {
		path := writeConfig(t, "resize:\n  max_edgee: 10\n")
		if _, err := LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() should reject unknown keys")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		path := writeConfig(t, "resize: [\n")
		if _, err := LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() should reject malformed YAML")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := LoadFromFile(filepath.Join(os.TempDir(), "canvasync-does-not-exist.yaml")); err == nil {
			t.Error("LoadFromFile() should fail for a missing file")
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(os.TempDir(), "canvasync-absent", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Performance.MaxWorkers != Default().Performance.MaxWorkers {
		t.Errorf("MaxWorkers = %d", cfg.Performance.MaxWorkers)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(".config", "canvasync", "config.yaml")) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}
