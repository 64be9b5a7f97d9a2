// Package cmd wires the sheriffd command line: the serve daemon plus the
// snapshot maintenance subcommands.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rhodessheriff/sheriffd/internal/conf"
	"github.com/rhodessheriff/sheriffd/internal/logging"
)

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	var configFile string
	var settings *conf.Settings

	rootCmd := &cobra.Command{
		Use:   "sheriffd",
		Short: "Sheriff's Office record management service",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (YAML)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		settings = loaded

		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		logging.Init(level)
		return nil
	}

	// Subcommands read settings lazily, after PersistentPreRunE has run.
	current := func() *conf.Settings { return settings }

	rootCmd.AddCommand(
		serveCommand(current),
		exportCommand(current),
		restoreCommand(current),
		resetCommand(current),
	)

	return rootCmd
}
