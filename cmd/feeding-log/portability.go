package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
	"github.com/Watson-W722/cat-feeding-app/internal/storage"
)

func newExportCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "export <csv>",
		Short: "Write the ledger to a CSV file in sheet column order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				if !force {
					return fmt.Errorf("%s exists; pass --force to overwrite", path)
				}
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to remove %s: %w", path, err)
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			store, _, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			entries := make([]models.LogEntry, len(rows))
			for i, r := range rows {
				entries[i] = r.Entry
			}
			if err := storage.NewCSVLedger(path, time.Local).Append(cmd.Context(), entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// newImportCmd appends rows of a CSV ledger, such as an older sheet
// export, to the database. Rows without a log id get a new one.
func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv>",
		Short: "Append ledger rows from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			rows, err := storage.NewCSVLedger(args[0], time.Local).ReadAll(cmd.Context())
			if err != nil {
				return err
			}

			entries := make([]models.LogEntry, 0, len(rows))
			for _, r := range rows {
				e := r.Entry
				if e.LogID == "" {
					e.LogID = uuid.NewString()
				}
				entries = append(entries, e)
			}

			store, _, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Append(cmd.Context(), entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", len(entries))
			return nil
		},
	}
}
