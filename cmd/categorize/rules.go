package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/pattern"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage category rules",
		Long: `Category rules are case-insensitive regular expressions matched against
the merchant name and description. The earliest registered rule wins.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deleteRuleCmd())
	cmd.AddCommand(testRulesCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetCategoryRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No rules found. Use 'categorize rules add' to create one."))
				return nil
			}

			return cli.RenderRules(cmd.OutOrStdout(), rules)
		},
	}
}

func addRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <pattern>",
		Short: "Add a rule at the end of the evaluation order",
		Example: `  categorize rules add groceries 'trader\s*joe'
  categorize rules add health 'planet fitness'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := &model.Rule{CategoryID: strings.TrimSpace(args[0]), Pattern: args[1]}
			if err := store.CreateRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Created rule %s at position %d: /%s/ → %s", rule.ID, rule.Position, rule.Pattern, rule.CategoryID)))
			return nil
		},
	}
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deactivate a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted rule %s", args[0])))
			return nil
		},
	}
}

func testRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <text>...",
		Short: "Show which rule, if any, matches the given text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetCategoryRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			index := pattern.NewIndex()
			report := index.Load(rules)
			for _, skipped := range report.Skipped {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("Skipped rule %s: %s", skipped.Rule.ID, skipped.Reason)))
			}

			out := cmd.OutOrStdout()
			for _, text := range args {
				rule, ok := index.Match(text)
				if !ok {
					fmt.Fprintf(out, "%s %q matches no rule\n", cli.WarningIcon, text)
					continue
				}
				fmt.Fprintf(out, "%s %q → %s (/%s/, position %d)\n",
					cli.SuccessIcon, text, rule.CategoryID, rule.Pattern, rule.Position)
			}
			return nil
		},
	}
}
