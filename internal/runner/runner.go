package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/vtprecheck/internal/model"
	"github.com/nao1215/vtprecheck/internal/monitor"
	"github.com/nao1215/vtprecheck/internal/validator"
)

// digester is implemented by artifacts that know their content digest.
type digester interface {
	Digest() string
}

// Runner runs a registry of validators over one pair at a time.
type Runner struct {
	// registry holds the validators in execution order.
	registry *validator.Registry

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// progressEvery controls debug progress logging inside validators.
	// Zero disables it.
	progressEvery int64
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger for the runner.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithProgressLogging logs validator progress at debug level every n units.
func WithProgressLogging(n int64) Option {
	return func(r *Runner) {
		r.progressEvery = n
	}
}

// New creates a Runner for the given registry.
func New(registry *validator.Registry, opts ...Option) *Runner {
	r := &Runner{registry: registry}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Run validates one pair.
//
// Validators disabled in the registry are recorded as skipped. Once ctx is
// done, every remaining validator is recorded as cancelled without running.
// The returned report is never nil.
func (r *Runner) Run(ctx context.Context, source, destination model.Artifact) *model.PreconditionReport {
	report := model.NewPreconditionReport(source.Name(), destination.Name())
	if d, ok := source.(digester); ok {
		report.SourceDigest = d.Digest()
	}
	if d, ok := destination.(digester); ok {
		report.DestinationDigest = d.Digest()
	}

	for _, entry := range r.registry.Entries() {
		v := entry.Validator
		result := model.ConditionResult{
			Validator:   v.Name(),
			Description: v.Description(),
		}

		if !entry.Enabled {
			result.Status = model.StatusSkipped
			report.AddResult(result)
			r.logger.Debug("validator skipped", "validator", v.Name())
			continue
		}

		// Check for cancellation before starting each validator
		if ctx.Err() != nil {
			result.ValidationResult = model.Cancelled()
			report.AddResult(result)
			r.logger.Warn("validator cancelled before start",
				"validator", v.Name(),
				"reason", ctx.Err(),
			)
			continue
		}

		r.logger.Info("running validator",
			"validator", v.Name(),
			"source", source.Name(),
			"destination", destination.Name(),
		)

		mon := monitor.FromContext(ctx, monitor.WithProgressLogger(r.logger, v.Name(), r.progressEvery))
		start := time.Now()
		result.ValidationResult = v.Validate(source, destination, mon)
		result.Elapsed = time.Since(start)
		report.AddResult(result)

		r.logger.Debug("validator completed",
			"validator", v.Name(),
			"status", result.Status.String(),
			"functions_visited", mon.Progress(),
			"elapsed", result.Elapsed,
		)
		if result.Status == model.StatusWarning {
			r.logger.Warn("precondition warning",
				"validator", v.Name(),
				"source", source.Name(),
				"destination", destination.Name(),
			)
		}
	}

	return report
}

// ValidatorCount returns the number of registered validators.
func (r *Runner) ValidatorCount() int {
	return r.registry.Len()
}

// ValidatorNames returns the names of all validators in execution order.
func (r *Runner) ValidatorNames() []string {
	return r.registry.Names()
}
