package core

import (
	"time"
)

// Outcome classifies how a single wait-and-act call ended
type Outcome int

const (
	OutcomeOK          Outcome = iota // Element became visible and the action succeeded
	OutcomeTimedOut                   // Element was found but never became visible in time
	OutcomeNotFound                   // No element matched before the wait budget ran out
	OutcomeDriverError                // Session, protocol or action dispatch failure
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDriverError:
		return "driver_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one wait-and-act call. Value is only meaningful
// when Outcome is OutcomeOK.
type Result[T any] struct {
	Value   T             `json:"value"`
	Outcome Outcome       `json:"outcome"`
	Err     error         `json:"-"`
	Elapsed time.Duration `json:"elapsed"`
}

// Ok builds a successful result.
func Ok[T any](value T, elapsed time.Duration) Result[T] {
	return Result[T]{Value: value, Outcome: OutcomeOK, Elapsed: elapsed}
}

// Failed builds a non-OK result carrying the cause.
func Failed[T any](outcome Outcome, err error, elapsed time.Duration) Result[T] {
	return Result[T]{Outcome: outcome, Err: err, Elapsed: elapsed}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeOK
}

// Or returns the value on success and def otherwise.
func (r Result[T]) Or(def T) T {
	if r.OK() {
		return r.Value
	}
	return def
}

// Get returns the value and the failure cause, if any.
func (r Result[T]) Get() (T, error) {
	if r.OK() {
		return r.Value, nil
	}
	var zero T
	return zero, r.Err
}

// ScenarioResult captures the complete outcome of executing one scenario
type ScenarioResult struct {
	// Identity
	Name      string   `json:"name"`
	Tags      []string `json:"tags,omitempty"`
	SessionID string   `json:"sessionId,omitempty"`

	// Status
	Status   Status        `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Error info (if the scenario did not pass)
	Error string `json:"error,omitempty"`

	// Debug artifacts captured on failure
	Attachments []Attachment `json:"attachments,omitempty"`
}

// SuiteResult captures the complete outcome of executing multiple scenarios
type SuiteResult struct {
	// Identity
	Name  string `json:"name"`
	RunID string `json:"runId"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Scenarios []ScenarioResult `json:"scenarios"`

	// Summary
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// ComputeSummary calculates scenario counts from the Scenarios slice
func (s *SuiteResult) ComputeSummary() {
	s.Total = len(s.Scenarios)
	s.Passed = 0
	s.Failed = 0
	s.Skipped = 0

	for _, sc := range s.Scenarios {
		switch sc.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed, StatusErrored:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
}

// Success returns true if all scenarios passed
func (s *SuiteResult) Success() bool {
	for _, sc := range s.Scenarios {
		if !sc.Status.IsSuccess() {
			return false
		}
	}
	return len(s.Scenarios) > 0
}
