package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func learnCmd() *cobra.Command {
	var (
		merchantName string
		description  string
		amount       string
		categoryID   string
		txnID        string
	)

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Record a correction for a transaction",
		Long: `Record that a transaction belongs to a category. When a merchant is given,
future transactions from that merchant resolve to the category directly.`,
		Example: `  categorize learn --merchant "Uber" --category travel
  categorize learn --description "SQ *BLUE BOTTLE" --amount -4.50 --category dining`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(merchantName) == "" && strings.TrimSpace(description) == "" {
				return errors.New("--merchant or --description is required")
			}

			txn := model.Transaction{
				ID:           txnID,
				MerchantName: merchantName,
				Description:  description,
			}
			if amount != "" {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				txn.Amount = model.NewAmount(d)
			}

			ctx := cmd.Context()
			rt, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.store.GetCategory(ctx, categoryID); err != nil {
				return common.NewUserError(fmt.Sprintf("unknown category %q, see 'categorize categories list'", categoryID), err)
			}

			outcome, err := rt.engine.LearnFromCorrection(ctx, txn, categoryID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case outcome.MerchantKey == "":
				fmt.Fprintln(out, cli.FormatInfo("Correction recorded. No merchant given, so no mapping was learned."))
			case outcome.Updated:
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Learned: %q → %s", outcome.MerchantKey, categoryID)))
			default:
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%q already maps to %s", outcome.MerchantKey, categoryID)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&merchantName, "merchant", "", "Merchant name")
	cmd.Flags().StringVar(&description, "description", "", "Transaction description")
	cmd.Flags().StringVar(&amount, "amount", "", "Signed amount (negative for expenses)")
	cmd.Flags().StringVar(&categoryID, "category", "", "Correct category id")
	cmd.Flags().StringVar(&txnID, "id", "", "Transaction id")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
