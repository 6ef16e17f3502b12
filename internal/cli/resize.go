package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/canvasync/pkg/batch"
	"github.com/sdejongh/canvasync/pkg/config"
	"github.com/sdejongh/canvasync/pkg/imaging"
	"github.com/sdejongh/canvasync/pkg/logging"
	"github.com/sdejongh/canvasync/pkg/storage"
	"github.com/sdejongh/canvasync/pkg/watch"
)

// ResizeFlags holds resize command flags
type ResizeFlags struct {
	Target       string
	Watch        bool
	Debounce     time.Duration
	MaxEdge      int
	Tolerance    int
	ShrinkFactor float64
	Parallel     int
}

var resizeFlags ResizeFlags

// NewResizeCommand creates the resize command
func NewResizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resize [paths...]",
		Short: "Create wide and box-fit variants of PNG images",
		Long: `Resize each PNG into a wide variant (<name>.twitter.png, long edge capped)
and a box-fit variant (<name>.pixiv.png, fitted to one of the configured boxes).
Both variants and the original (moved to <name>.origin.png) are placed in
<YYYYMMDD>_<name>/ next to the source.

Without paths, every PNG inside the immediate subdirectories of the target
directory is processed. With --watch, new images are processed as they arrive.`,
		RunE: runResize,
	}

	cmd.Flags().StringVarP(&resizeFlags.Target, "target", "t", "", "target directory to scan (default from config)")
	cmd.Flags().BoolVarP(&resizeFlags.Watch, "watch", "w", false, "keep running and process new images as they arrive")
	cmd.Flags().DurationVar(&resizeFlags.Debounce, "debounce", watch.DefaultDebounce, "quiet period before a watched batch runs")
	cmd.Flags().IntVar(&resizeFlags.MaxEdge, "max-edge", 0, "long edge cap of the wide variant")
	cmd.Flags().IntVar(&resizeFlags.Tolerance, "tolerance", 0, "pixel slack when matching a box")
	cmd.Flags().Float64Var(&resizeFlags.ShrinkFactor, "shrink-factor", 0, "scale applied after each unmatched box scan, in (0, 1]")
	cmd.Flags().IntVarP(&resizeFlags.Parallel, "parallel", "p", 0, "number of parallel workers")

	return cmd
}

func runResize(cmd *cobra.Command, args []string) error {
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
	applyResizeFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if resizeFlags.Watch && len(args) > 0 {
		return fmt.Errorf("--watch cannot be combined with explicit paths")
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
	processor := batch.NewProcessor(
		fs,
		imaging.NewPNGCodec(),
		formatter,
		logger,
		cfg.ResizeConfig(),
		cfg.Performance.MaxWorkers,
	)

	if resizeFlags.Watch {
		return runResizeWatch(ctx, cfg, fs, processor, logger)
	}

	paths, err := resizePaths(ctx, cfg, fs, args)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		if !cfg.Output.Quiet && cfg.Output.Format != "json" {
			fmt.Fprintln(os.Stdout, "No images to process")
		}
		return nil
	}

	report := processor.Run(ctx, paths)

	// Exit with appropriate code
	return exitWithStatus(report.Status)
}

// resizePaths resolves explicit paths, or discovers images under the target
func resizePaths(ctx context.Context, cfg *config.Config, fs storage.Backend, args []string) ([]string, error) {
	if len(args) > 0 {
		paths := make([]string, 0, len(args))
		for _, arg := range args {
			resolved, err := resolvePath("image", arg)
			if err != nil {
				return nil, err
			}
			paths = append(paths, resolved)
		}
		return paths, nil
	}

	target, err := resolvePath("target", cfg.Resize.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("%w (use --target or set resize.target_dir)", err)
	}
	return batch.Discover(ctx, fs, target)
}

func runResizeWatch(
	ctx context.Context,
	cfg *config.Config,
	fs storage.Backend,
	processor *batch.Processor,
	logger logging.Logger,
) error {
	target, err := resolvePath("target", cfg.Resize.TargetDir)
	if err != nil {
		return fmt.Errorf("%w (use --target or set resize.target_dir)", err)
	}

	handler := func(ctx context.Context, paths []string) {
		processor.Run(ctx, paths)
	}

	watcher, err := watch.NewWatcher(fs, target, resizeFlags.Debounce, logger, handler)
	if err != nil {
		return err
	}

	if !cfg.Output.Quiet && cfg.Output.Format != "json" {
		fmt.Fprintf(os.Stdout, "Watching %s (press Ctrl+C to stop)\n", target)
	}

	return watcher.Run(ctx)
}

// applyResizeFlags overrides config values with resize flags
func applyResizeFlags(cmd *cobra.Command, cfg *config.Config) {
	if resizeFlags.Target != "" {
		cfg.Resize.TargetDir = resizeFlags.Target
	}
	if cmd.Flags().Changed("max-edge") {
		cfg.Resize.MaxEdge = resizeFlags.MaxEdge
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Resize.Tolerance = resizeFlags.Tolerance
	}
	if cmd.Flags().Changed("shrink-factor") {
		cfg.Resize.ShrinkFactor = resizeFlags.ShrinkFactor
	}
	if resizeFlags.Parallel > 0 {
		cfg.Performance.MaxWorkers = resizeFlags.Parallel
	}
}
