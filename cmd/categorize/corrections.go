package main

import (
	"fmt"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/spf13/cobra"
)

func correctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Inspect recorded corrections",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			corrections, err := store.GetCorrections(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to get corrections: %w", err)
			}

			if len(corrections) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No corrections recorded yet."))
				return nil
			}
			return cli.RenderCorrections(cmd.OutOrStdout(), corrections)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum number of corrections to show")

	cmd.AddCommand(list)
	return cmd
}
