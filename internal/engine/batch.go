package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// ErrBatchCanceled marks transactions that were never started because the
// batch context ended first.
var ErrBatchCanceled = errors.New("batch canceled before transaction started")

// Result is the outcome for one transaction of a batch.
type Result struct {
	Err         error               `json:"-"`
	Transaction model.Transaction   `json:"-"`
	Match       model.CategoryMatch `json:"match"`
}

// BatchOption configures BatchCategorize.
type BatchOption func(*batchOptions)

type batchOptions struct {
	progress func(done, total int)
}

// WithProgress registers a callback invoked after every finished transaction.
// It is called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(o *batchOptions) {
		o.progress = fn
	}
}

// BatchCategorize categorizes txns with at most policy.MaxConcurrency workers.
// Results are returned in input order. A transaction that fails validation
// carries its error in Result.Err without affecting the others. When ctx ends,
// transactions already being processed finish normally, including any oracle
// call in progress, the rest get ErrBatchCanceled, and ctx.Err() is returned
// alongside the results.
func (e *Engine) BatchCategorize(ctx context.Context, txns []model.Transaction, opts ...BatchOption) ([]Result, error) {
	var options batchOptions
	for _, opt := range opts {
		opt(&options)
	}

	results := make([]Result, len(txns))
	if len(txns) == 0 {
		return results, ctx.Err()
	}

	workers := e.policy.MaxConcurrency
	if workers > len(txns) {
		workers = len(txns)
	}

	start := time.Now()
	slog.Info("Starting batch categorization",
		"transactions", len(txns),
		"workers", workers)

	// Started work runs to completion; the oracle timeout still bounds it.
	workCtx := context.WithoutCancel(ctx)

	workChan := make(chan int)
	var done atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range workChan {
				match, err := e.Categorize(workCtx, txns[i])
				results[i] = Result{Transaction: txns[i], Match: match, Err: err}
				n := done.Add(1)
				if options.progress != nil {
					options.progress(int(n), len(txns))
				}
			}
		}()
	}

	canceledFrom := len(txns)
feed:
	for i := range txns {
		select {
		case <-ctx.Done():
			canceledFrom = i
			break feed
		case workChan <- i:
		}
	}
	close(workChan)
	wg.Wait()

	if canceledFrom < len(txns) {
		cause := ctx.Err()
		for i := canceledFrom; i < len(txns); i++ {
			results[i] = Result{
				Transaction: txns[i],
				Err:         fmt.Errorf("%w: %w", ErrBatchCanceled, cause),
			}
		}
		slog.Warn("Batch categorization canceled",
			"completed", canceledFrom,
			"canceled", len(txns)-canceledFrom)
	}

	slog.Info("Batch categorization finished",
		"transactions", len(txns),
		"duration", time.Since(start))

	return results, ctx.Err()
}
