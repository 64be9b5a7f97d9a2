package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhodessheriff/sheriffd/internal/conf"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

// exportCommand dumps the snapshot file's state as indented JSON.
func exportCommand(current func() *conf.Settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored state as a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := current()

			s := store.New(settings.Storage.DataFile)
			if err := s.Load(); err != nil {
				return err
			}

			data, err := json.MarshalIndent(s.ExportState(), "", "  ")
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprintln(os.Stdout, string(data))
				return err
			}
			return os.WriteFile(output, data, 0o600)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// restoreCommand imports a snapshot document into the data file.
func restoreCommand(current func() *conf.Settings) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "restore <snapshot.json>",
		Short: "Replace the stored state with a snapshot document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := current()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if dryRun {
				result := store.ValidateState(data)
				if !result.Valid {
					for _, msg := range result.Errors {
						fmt.Fprintln(os.Stderr, "invalid:", msg)
					}
					return fmt.Errorf("snapshot failed validation with %d error(s)", len(result.Errors))
				}
				fmt.Fprintln(os.Stdout, "snapshot is valid")
				return nil
			}

			s := store.New(settings.Storage.DataFile)
			if _, err := s.ImportState(data); err != nil {
				return err
			}
			return s.SaveNow()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate only, do not modify the data file")
	return cmd
}

// resetCommand restores the seed dataset.
func resetCommand(current func() *conf.Settings) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all stored data and restore the seed dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to reset without --force")
			}
			settings := current()

			s := store.New(settings.Storage.DataFile)
			s.ResetToSeed()
			return s.SaveNow()
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm discarding all stored data")
	return cmd
}
