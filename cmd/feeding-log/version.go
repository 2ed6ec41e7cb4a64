package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Watson-W722/cat-feeding-app/internal/server"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		// no config needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "feeding-log version %s\n", server.Version)
		},
	}
}
