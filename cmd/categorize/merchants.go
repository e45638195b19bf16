package main

import (
	"fmt"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/spf13/cobra"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Inspect and edit merchant mappings",
		Long: `Merchant mappings resolve transactions through the exact tier. They come
from the starter list, from corrections, or from 'merchants set'.`,
	}

	cmd.AddCommand(listMerchantsCmd())
	cmd.AddCommand(setMerchantCmd())

	return cmd
}

func listMerchantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List merchant mappings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			return cli.RenderMerchants(cmd.OutOrStdout(), rt.engine.Merchants())
		},
	}
}

func setMerchantCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <merchant> <category>",
		Short:   "Map a merchant to a category",
		Example: `  categorize merchants set "Costco" groceries`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.store.GetCategory(ctx, args[1]); err != nil {
				return common.NewUserError(fmt.Sprintf("unknown category %q, see 'categorize categories list'", args[1]), err)
			}

			outcome, err := rt.engine.SetMerchant(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			if !outcome.Updated {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%q already maps to %s", outcome.MerchantKey, args[1])))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q now maps to %s", outcome.MerchantKey, args[1])))
			return nil
		},
	}
}
