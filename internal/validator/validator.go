package validator

import (
	"github.com/nao1215/vtprecheck/internal/model"
	"github.com/nao1215/vtprecheck/internal/monitor"
)

// Validator is a single precondition check over a source/destination pair.
//
// Design decision: Validate returns a result value rather than an error.
// Cancellation and warnings are ordinary outcomes; problems with the
// artifacts themselves are surfaced by whoever loaded them, before any
// validator runs.
type Validator interface {
	// Name returns the validator's display name.
	Name() string

	// Description says what the validator checks.
	Description() string

	// Validate runs the check. It polls mon for cancellation and reports
	// progress to it.
	Validate(source, destination model.Artifact, mon monitor.TaskMonitor) model.ValidationResult
}

// Entry is a validator together with its enabled flag.
type Entry struct {
	Validator Validator
	Enabled   bool
}

// Registry is an ordered set of validators.
type Registry struct {
	entries []Entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make([]Entry, 0)}
}

// Register appends an enabled validator.
func (r *Registry) Register(v Validator) {
	r.entries = append(r.entries, Entry{Validator: v, Enabled: true})
}

// RegisterDisabled appends a validator that the host reports as skipped.
func (r *Registry) RegisterDisabled(v Validator) {
	r.entries = append(r.entries, Entry{Validator: v, Enabled: false})
}

// Entries returns the registered validators in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered validators.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Names returns the names of all registered validators.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Validator.Name()
	}
	return names
}

// Options selects and configures the built-in validators.
type Options struct {
	// NoReturnEnabled enables NoReturnCountValidator.
	NoReturnEnabled bool

	// NoReturnThreshold is the maximum tolerated relative difference,
	// as a fraction.
	NoReturnThreshold float64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		NoReturnEnabled:   true,
		NoReturnThreshold: DefaultNoReturnThreshold,
	}
}

// Default builds the registry of built-in validators.
func Default(opts Options) *Registry {
	r := NewRegistry()

	noReturn := NewNoReturnCountValidator(WithThreshold(opts.NoReturnThreshold))
	if opts.NoReturnEnabled {
		r.Register(noReturn)
	} else {
		r.RegisterDisabled(noReturn)
	}

	return r
}
