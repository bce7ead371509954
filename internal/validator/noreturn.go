package validator

import (
	"fmt"
	"math"

	"github.com/nao1215/vtprecheck/internal/model"
	"github.com/nao1215/vtprecheck/internal/monitor"
)

const (
	// NoReturnValidatorName is the display name of NoReturnCountValidator.
	NoReturnValidatorName = "Number Of No-Returns Functions Validator"

	// NoReturnValidatorKey identifies NoReturnCountValidator in config files.
	NoReturnValidatorKey = "noReturnFunctions"

	// NoReturnThresholdOption names the threshold option shown to users.
	NoReturnThresholdOption = "Maximum percentage difference between number of no-return functions in each program"

	// DefaultNoReturnThreshold tolerates no difference at all.
	DefaultNoReturnThreshold = 0.0
)

// NoReturnCountValidator warns when the number of non-returning functions
// differs too much between the source and destination programs.
type NoReturnCountValidator struct {
	threshold float64
}

// NoReturnOption configures a NoReturnCountValidator.
type NoReturnOption func(*NoReturnCountValidator)

// WithThreshold sets the maximum tolerated relative difference as a fraction
// (0.25 tolerates 25%). Negative and NaN values are ignored.
func WithThreshold(threshold float64) NoReturnOption {
	return func(v *NoReturnCountValidator) {
		if threshold >= 0 {
			v.threshold = threshold
		}
	}
}

// NewNoReturnCountValidator creates the validator with the default threshold of 0.
func NewNoReturnCountValidator(opts ...NoReturnOption) *NoReturnCountValidator {
	v := &NoReturnCountValidator{threshold: DefaultNoReturnThreshold}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name implements Validator.
func (v *NoReturnCountValidator) Name() string {
	return NoReturnValidatorName
}

// Description implements Validator.
func (v *NoReturnCountValidator) Description() string {
	return "Makes sure the two programs have nearly the same number of no-return functions."
}

// Threshold returns the configured threshold.
func (v *NoReturnCountValidator) Threshold() float64 {
	return v.threshold
}

// Validate implements Validator.
// The source is counted fully before the destination. If cancellation is
// observed during either pass the result is Cancelled and no comparison is
// made; the destination pass is not started when the source pass was cancelled.
func (v *NoReturnCountValidator) Validate(source, destination model.Artifact, mon monitor.TaskMonitor) model.ValidationResult {
	numSource, cancelled := countNoReturnFunctions(source, mon)
	if cancelled {
		return model.Cancelled()
	}
	numDest, cancelled := countNoReturnFunctions(destination, mon)
	if cancelled {
		return model.Cancelled()
	}

	percent := PercentDifference(numSource, numDest)
	if percent > v.threshold {
		return model.Warning(WarningMessage(source.Name(), destination.Name(), numSource, numDest, percent, v.threshold))
	}
	return model.Passed()
}

// countNoReturnFunctions counts the non-returning functions of an artifact.
// Functions without a decoded instruction at their entry are import-table
// style placeholders and are not counted. The returned count is partial when
// cancelled is true.
func countNoReturnFunctions(artifact model.Artifact, mon monitor.TaskMonitor) (count int, cancelled bool) {
	mon.SetIndeterminate(true)
	for fn := range artifact.Functions() {
		if mon.IsCancelled() {
			return count, true
		}
		mon.IncrementProgress(1)

		if !artifact.HasInstructionAt(fn.Entry) {
			continue
		}
		if fn.NoReturn {
			count++
		}
	}
	return count, mon.IsCancelled()
}

// PercentDifference returns |a-b| / max(a, b) as a fraction.
// Two zero counts are defined as no difference.
func PercentDifference(a, b int) float64 {
	denom := max(a, b)
	if denom <= 0 {
		return 0
	}
	diff := math.Abs(float64(a - b))
	return diff / float64(denom)
}

// FormatPercent renders a fraction as a percentage with one decimal place,
// e.g. 0.123 becomes "12.3%".
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100.0)
}

// WarningMessage builds the two-line warning shown when the counts diverge.
func WarningMessage(sourceName, destName string, numSource, numDest int, percent, threshold float64) string {
	return fmt.Sprintf("%s and %s have %d and %d no-return functions respectively,\n"+
		"which is a %s difference, greater than the threshold of %s\n",
		sourceName, destName, numSource, numDest,
		FormatPercent(percent), FormatPercent(threshold))
}
