package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/canvasync/pkg/config"
	"github.com/sdejongh/canvasync/pkg/output"
	"github.com/sdejongh/canvasync/pkg/ratelimit"
	"github.com/sdejongh/canvasync/pkg/storage"
	"github.com/sdejongh/canvasync/pkg/sync"
)

// SyncFlags holds sync command flags
type SyncFlags struct {
	Source     string
	Dest       string
	DryRun     bool
	Parallel   int
	Bandwidth  string
	Exclude    []string
	PlanReport string
	PlanFormat string
}

var syncFlags SyncFlags

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Back up SAI project files",
		Long: `Copy .sai and .sai2 project files from the source directory into the
destination directory when they are missing there or the destination copy is
older. Files are never deleted and subdirectories are not descended into.`,
		RunE: runSync,
	}

	cmd.Flags().StringVarP(&syncFlags.Source, "source", "s", "", "source directory path (default from config)")
	cmd.Flags().StringVarP(&syncFlags.Dest, "dest", "d", "", "destination directory path (default from config)")
	cmd.Flags().BoolVar(&syncFlags.DryRun, "dry-run", false, "report the copy plan without copying")
	cmd.Flags().IntVarP(&syncFlags.Parallel, "parallel", "p", 0, "number of parallel copies")
	cmd.Flags().StringVarP(&syncFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"512K\")")
	cmd.Flags().StringSliceVar(&syncFlags.Exclude, "exclude", []string{}, "glob patterns of project files to skip")
	cmd.Flags().StringVar(&syncFlags.PlanReport, "plan-report", "", "write the copy plan to file")
	cmd.Flags().StringVar(&syncFlags.PlanFormat, "plan-format", "human", "plan report format: human, json")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyGlobalFlags(cfg)
	applySyncFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source, err := resolvePath("source", cfg.Sync.SourceDir)
	if err != nil {
		return err
	}
	dest, err := resolvePath("destination", cfg.Sync.DestDir)
	if err != nil {
		return err
	}
	if err := validateSyncPaths(source, dest); err != nil {
		return err
	}
	if err := output.ValidatePlanFormat(syncFlags.PlanFormat); err != nil {
		return err
	}

	bandwidth, err := cfg.BandwidthLimit()
	if err != nil {
		return err
	}
	var limiter *ratelimit.Limiter
	if bandwidth > 0 {
		limiter = ratelimit.NewLimiter(bandwidth)
	}

	formatter, err := createFormatter(cfg, os.Stdout)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	fs := storage.NewOS()
	runner := sync.NewRunner(
		fs,
		formatter,
		logger,
		limiter,
		cfg.Performance.MaxWorkers,
		cfg.Sync.Exclude,
	)

	report := runner.Run(ctx, source, dest, syncFlags.DryRun)

	// Write the plan report if requested
	if syncFlags.PlanReport != "" {
		if err := output.WritePlanReport(ctx, fs, report, syncFlags.PlanReport, syncFlags.PlanFormat); err != nil {
			return fmt.Errorf("failed to write plan report: %w", err)
		}
	}

	// Exit with appropriate code
	return exitWithStatus(report.Status)
}

// applySyncFlags overrides config values with sync flags
func applySyncFlags(cfg *config.Config) {
	if syncFlags.Source != "" {
		cfg.Sync.SourceDir = syncFlags.Source
	}
	if syncFlags.Dest != "" {
		cfg.Sync.DestDir = syncFlags.Dest
	}

	// Parallel workers
	if syncFlags.Parallel > 0 {
		cfg.Performance.MaxWorkers = syncFlags.Parallel
	}

	if syncFlags.Bandwidth != "" {
		cfg.Performance.BandwidthLimit = syncFlags.Bandwidth
	}

	// Exclude patterns
	if len(syncFlags.Exclude) > 0 {
		cfg.Sync.Exclude = syncFlags.Exclude
	}
}
