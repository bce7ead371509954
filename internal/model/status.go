package model

import (
	"fmt"
	"strings"
)

// ConditionStatus is the outcome of a single precondition validator.
//
// Design decision: We use iota-based constants rather than string constants
// so statuses can be ordered. A higher value is a more noteworthy outcome,
// which is how PreconditionReport picks its overall status.
type ConditionStatus int

const (
	// StatusNone means the validator has not run yet.
	StatusNone ConditionStatus = iota

	// StatusPassed means the precondition holds.
	StatusPassed

	// StatusSkipped means the validator was disabled by configuration.
	StatusSkipped

	// StatusCancelled means the run was cancelled before the validator
	// reached a decision. No partial figures are reported.
	StatusCancelled

	// StatusWarning means the precondition does not hold. The pair can still
	// be correlated, but the user should look at the message first.
	StatusWarning

	// StatusError means the validator could not run.
	StatusError
)

// statusNames maps statuses to their wire names.
var statusNames = map[ConditionStatus]string{
	StatusNone:      "none",
	StatusPassed:    "passed",
	StatusSkipped:   "skipped",
	StatusCancelled: "cancelled",
	StatusWarning:   "warning",
	StatusError:     "error",
}

// AllStatuses returns every known status in ascending order.
func AllStatuses() []ConditionStatus {
	return []ConditionStatus{
		StatusNone,
		StatusPassed,
		StatusSkipped,
		StatusCancelled,
		StatusWarning,
		StatusError,
	}
}

// String returns the lowercase name of the status.
func (s ConditionStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseConditionStatus parses a status name case-insensitively.
func ParseConditionStatus(s string) (ConditionStatus, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, name := range statusNames {
		if name == needle {
			return status, nil
		}
	}
	return StatusNone, fmt.Errorf("unknown condition status %q", s)
}

// IsTerminal reports whether the status is a final outcome.
func (s ConditionStatus) IsTerminal() bool {
	return s != StatusNone
}

// MarshalText implements encoding.TextMarshaler so JSON reports carry names.
func (s ConditionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ConditionStatus) UnmarshalText(text []byte) error {
	v, err := ParseConditionStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Worst returns the more noteworthy of two statuses.
func Worst(a, b ConditionStatus) ConditionStatus {
	if b > a {
		return b
	}
	return a
}
