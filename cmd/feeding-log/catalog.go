package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Watson-W722/cat-feeding-app/internal/storage"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the item catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <csv>",
		Short: "Load or update items from a catalog sheet export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := storage.ReadCatalogFile(args[0])
			if err != nil {
				return err
			}
			store, _, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.UpsertItems(cmd.Context(), items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items\n", len(items))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := engine.Items(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tUNIT\tKCAL\tPROTEIN\tFAT\tPHOS")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%g\t%g\n",
					it.ID, it.Name, it.Category, it.Unit,
					it.Reference.Calorie, it.Reference.Protein, it.Reference.Fat, it.Reference.Phosphorus)
			}
			return w.Flush()
		},
	})

	return cmd
}
