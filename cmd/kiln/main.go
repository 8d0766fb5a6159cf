package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kiln-archive/kiln/pkg/logging"
)

var rootCommand = &cobra.Command{
	Use:   "kiln",
	Short: "kiln is a content-addressed deduplicating file-backup archive tool",
}

var rootConfiguration struct {
	// archive is the path to the archive directory, required by every
	// subcommand.
	archive string
	// verbose raises the root logger's level to Debug.
	verbose bool
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&rootConfiguration.archive, "archive", "", "Path to the archive directory")
	flags.BoolVarP(&rootConfiguration.verbose, "verbose", "v", false, "Show per-file progress")
	rootCommand.MarkPersistentFlagRequired("archive")

	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		newCommand,
		backupCommand,
		restoreCommand,
		verifyCommand,
		listChannelCommand,
	)
}

func rootLogger() *logging.Logger {
	level := logging.LevelInfo
	if rootConfiguration.verbose {
		level = logging.LevelDebug
	}
	return logging.NewRoot(level)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
