package model

import "time"

// ValidationResult is the value a validator returns.
// Message is empty when the status is Passed or Cancelled.
type ValidationResult struct {
	Status  ConditionStatus `json:"status"`
	Message string          `json:"message,omitempty"`
}

// Passed returns a passing result.
func Passed() ValidationResult {
	return ValidationResult{Status: StatusPassed}
}

// Cancelled returns a cancelled result. It never carries a message so that
// no partial figures reach the user.
func Cancelled() ValidationResult {
	return ValidationResult{Status: StatusCancelled}
}

// Warning returns a warning result with the given message.
func Warning(message string) ValidationResult {
	return ValidationResult{Status: StatusWarning, Message: message}
}

// ConditionResult is a ValidationResult attributed to the validator that
// produced it, as shown to the user alongside other precondition checks.
type ConditionResult struct {
	// Validator is the validator's display name.
	Validator string `json:"validator"`

	// Description says what the validator checks.
	Description string `json:"description,omitempty"`

	ValidationResult

	// Elapsed is how long the validator ran.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// PreconditionReport aggregates the results of one validator run over a
// source/destination pair.
type PreconditionReport struct {
	// Source is the source artifact's name.
	Source string `json:"source"`

	// SourceDigest is the source artifact's content digest, if known.
	SourceDigest string `json:"source_digest,omitempty"`

	// Destination is the destination artifact's name.
	Destination string `json:"destination"`

	// DestinationDigest is the destination artifact's content digest, if known.
	DestinationDigest string `json:"destination_digest,omitempty"`

	// DateChecked is when the run started.
	DateChecked time.Time `json:"date_checked"`

	// Results holds one entry per validator, in execution order.
	Results []ConditionResult `json:"results"`

	// Cancelled is true if the run was cancelled before every validator decided.
	Cancelled bool `json:"cancelled"`

	// ErrorMessage is set when the pair could not be validated at all,
	// for example because an artifact failed to load.
	ErrorMessage string `json:"error,omitempty"`
}

// NewPreconditionReport creates an empty report for a pair.
func NewPreconditionReport(source, destination string) *PreconditionReport {
	return &PreconditionReport{
		Source:      source,
		Destination: destination,
		DateChecked: time.Now(),
		Results:     make([]ConditionResult, 0),
	}
}

// AddResult appends a validator result.
func (r *PreconditionReport) AddResult(result ConditionResult) {
	r.Results = append(r.Results, result)
	if result.Status == StatusCancelled {
		r.Cancelled = true
	}
}

// Status returns the most noteworthy status across all results.
// A report that failed before any validator ran has StatusError.
func (r *PreconditionReport) Status() ConditionStatus {
	if r.ErrorMessage != "" {
		return StatusError
	}
	status := StatusNone
	for _, res := range r.Results {
		status = Worst(status, res.Status)
	}
	return status
}

// HasWarnings reports whether any validator raised a warning.
func (r *PreconditionReport) HasWarnings() bool {
	for _, res := range r.Results {
		if res.Status == StatusWarning {
			return true
		}
	}
	return false
}

// Summary counts the results per status.
func (r *PreconditionReport) Summary() ReportSummary {
	summary := ReportSummary{}
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			summary.Passed++
		case StatusWarning:
			summary.Warning++
		case StatusError:
			summary.Error++
		case StatusCancelled:
			summary.Cancelled++
		case StatusSkipped:
			summary.Skipped++
		case StatusNone:
		}
	}
	return summary
}

// ReportSummary contains per-status counts of a report.
type ReportSummary struct {
	Passed    int `json:"passed"`
	Warning   int `json:"warning"`
	Error     int `json:"error"`
	Cancelled int `json:"cancelled"`
	Skipped   int `json:"skipped"`
}

// Total returns the number of counted results.
func (s ReportSummary) Total() int {
	return s.Passed + s.Warning + s.Error + s.Cancelled + s.Skipped
}

// Count returns the count for a single status.
func (s ReportSummary) Count(status ConditionStatus) int {
	switch status {
	case StatusPassed:
		return s.Passed
	case StatusWarning:
		return s.Warning
	case StatusError:
		return s.Error
	case StatusCancelled:
		return s.Cancelled
	case StatusSkipped:
		return s.Skipped
	default:
		return 0
	}
}
