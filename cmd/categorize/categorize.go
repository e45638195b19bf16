package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/spice-categorizer/internal/cli"
	"github.com/Veraticus/spice-categorizer/internal/engine"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/source"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type categorizeOptions struct {
	minConfidence float64
	topMerchants  int
	showStats     bool
	jsonOutput    bool
	review        bool
	noProgress    bool
}

func categorizeCmd() *cobra.Command {
	var opts categorizeOptions

	cmd := &cobra.Command{
		Use:   "categorize <file>",
		Short: "Categorize transactions from a JSON, CSV, or OFX file",
		Long: `Categorize every transaction in a file and print the results.

Supported formats are chosen by extension: .json, .csv, .ofx and .qfx.
With --review, uncertain results are shown one at a time and any correction
is learned immediately.`,
		Example: `  categorize categorize statement.ofx --stats
  categorize categorize export.csv --review --min-confidence 0.7
  categorize categorize batch.json --json > results.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategorize(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.showStats, "stats", false, "Print batch statistics")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Write results as JSON")
	cmd.Flags().BoolVar(&opts.review, "review", false, "Interactively review uncertain results")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", 0.6, "Results below this confidence are reviewed")
	cmd.Flags().IntVar(&opts.topMerchants, "top", 10, "Number of top merchants in statistics")

	return cmd
}

func runCategorize(cmd *cobra.Command, path string, opts categorizeOptions) error {
	if opts.review && opts.jsonOutput {
		return errors.New("--review and --json cannot be combined")
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interrupts.HandleInterrupts(cmd.Context())
	defer interrupts.Stop()

	txns, err := source.Open(ctx, path)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo("No transactions found in "+path))
		return nil
	}

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var (
		batchOpts []engine.BatchOption
		bar       *progressbar.ProgressBar
	)
	if !opts.noProgress && !opts.jsonOutput {
		bar = cli.NewProgressBar(cmd.ErrOrStderr(), len(txns))
		batchOpts = append(batchOpts, engine.WithProgress(cli.ProgressCallback(bar)))
	}

	results, batchErr := rt.engine.BatchCategorize(ctx, txns, batchOpts...)
	if bar != nil {
		_ = bar.Finish()
	}
	if batchErr != nil {
		slog.Warn("Batch stopped early", "error", batchErr)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if err := writeResultsJSON(out, results, engine.ComputeStats(results, opts.topMerchants)); err != nil {
			return err
		}
		return batchErr
	}

	if err := cli.RenderResults(out, results); err != nil {
		return err
	}
	if opts.showStats {
		fmt.Fprintln(out, cli.RenderStats(engine.ComputeStats(results, opts.topMerchants)))
	}

	if opts.review && batchErr == nil {
		categories, err := rt.store.GetCategories(ctx)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		reviewer := cli.NewReviewer(cmd.InOrStdin(), out, categories)
		summary, err := reviewer.Review(ctx, results, opts.minConfidence, rt.engine.LearnFromCorrection)
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Reviewed %d: %d accepted, %d corrected, %d skipped, %d merchants learned",
			summary.Reviewed, summary.Accepted, summary.Corrected, summary.Skipped, summary.Learned)))
		if err != nil && !errors.Is(err, cli.ErrReviewAborted) {
			return err
		}
	}

	return batchErr
}

type jsonResult struct {
	Match *model.CategoryMatch `json:"match,omitempty"`
	ID    string               `json:"id,omitempty"`
	Error string               `json:"error,omitempty"`
	Index int                  `json:"index"`
}

func writeResultsJSON(w io.Writer, results []engine.Result, stats engine.Stats) error {
	out := struct {
		Results []jsonResult `json:"results"`
		Stats   engine.Stats `json:"stats"`
	}{
		Results: make([]jsonResult, len(results)),
		Stats:   stats,
	}

	for i, res := range results {
		jr := jsonResult{Index: i, ID: res.Transaction.ID}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			match := res.Match
			jr.Match = &match
		}
		out.Results[i] = jr
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
