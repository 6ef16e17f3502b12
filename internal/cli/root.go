package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the canvasync command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canvasync",
		Short: "Resize artwork exports and back up SAI projects",
		Long: `canvasync prepares PNG artwork for publishing and keeps a backup of
PaintTool SAI project files current.

  resize  creates a wide variant and a box-fit variant of each PNG
  sync    copies new or updated .sai/.sai2 files to a backup directory`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewResizeCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
