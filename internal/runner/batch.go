package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/vtprecheck/internal/model"
)

// DefaultConcurrency is the number of pairs validated at once when not configured.
const DefaultConcurrency = 4

// Pair names a source and a destination artifact.
// How a name resolves to an artifact is up to the Loader.
type Pair struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
}

// Loader resolves an artifact reference (file path or stored program name).
type Loader func(ctx context.Context, ref string) (model.Artifact, error)

// BatchRunner validates many pairs concurrently.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Load failures are recorded in the pair's report instead of aborting
// the batch, so one bad file does not hide the results of the others.
type BatchRunner struct {
	runner      *Runner
	loader      Loader
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of pairs validated at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchRunner creates a BatchRunner. The Runner is shared by all
// goroutines; validators hold no per-run state.
func NewBatchRunner(runner *Runner, loader Loader, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		runner:      runner,
		loader:      loader,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// RunBatch validates every pair and returns the reports in input order.
// The error is non-nil only when ctx was cancelled; reports for pairs that
// never started are then nil.
func (b *BatchRunner) RunBatch(ctx context.Context, pairs []Pair) ([]*model.PreconditionReport, error) {
	reports := make([]*model.PreconditionReport, len(pairs))
	err := b.RunBatchWithCallback(ctx, pairs, func(report *model.PreconditionReport, index int) {
		reports[index] = report
	})
	return reports, err
}

// RunBatchWithCallback validates every pair and calls callback as each pair
// completes. The callback is invoked from worker goroutines and must be
// safe for concurrent use if it touches shared state; distinct indexes are
// never reported twice.
func (b *BatchRunner) RunBatchWithCallback(
	ctx context.Context,
	pairs []Pair,
	callback func(report *model.PreconditionReport, index int),
) error {
	b.logger.Info("starting batch validation",
		"total_pairs", len(pairs),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, pair := range pairs {
		g.Go(func() error {
			// Check for cancellation before starting
			if err := ctx.Err(); err != nil {
				return err
			}

			b.logger.Info("validating pair",
				"source", pair.Source,
				"destination", pair.Destination,
				"index", i+1,
				"total", len(pairs),
			)

			callback(b.runPair(ctx, pair), i)
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch validation complete",
		"total_pairs", len(pairs),
		"elapsed", time.Since(startTime),
	)

	return err
}

// runPair loads both artifacts and runs the validators.
func (b *BatchRunner) runPair(ctx context.Context, pair Pair) *model.PreconditionReport {
	source, err := b.loader(ctx, pair.Source)
	if err != nil {
		return b.failedReport(pair, fmt.Errorf("failed to load source %s: %w", pair.Source, err))
	}
	destination, err := b.loader(ctx, pair.Destination)
	if err != nil {
		return b.failedReport(pair, fmt.Errorf("failed to load destination %s: %w", pair.Destination, err))
	}
	return b.runner.Run(ctx, source, destination)
}

// failedReport records a pair that could not be validated.
func (b *BatchRunner) failedReport(pair Pair, err error) *model.PreconditionReport {
	b.logger.Warn("pair validation failed",
		"source", pair.Source,
		"destination", pair.Destination,
		"error", err,
	)
	report := model.NewPreconditionReport(pair.Source, pair.Destination)
	report.ErrorMessage = err.Error()
	return report
}
