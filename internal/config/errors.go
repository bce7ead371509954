package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoArtifacts is returned when neither a source/destination pair nor
	// a pairs file is specified.
	ErrNoArtifacts = errors.New("no artifacts specified: provide a source and destination or use --pairs")

	// ErrInvalidThreshold is returned when the comparison threshold is not
	// a fraction in [0, 1].
	ErrInvalidThreshold = errors.New("invalid threshold: must be a fraction between 0 and 1")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
