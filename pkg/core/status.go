package core

// Status is where a scenario run stands. The zero value is not a valid status.
type Status int

const (
	StatusRunning Status = iota + 1 // Session open, steps executing
	StatusPassed                // Completed successfully
	StatusFailed                // Assertion failed (expected state was not observed)
	StatusErrored               // Unexpected error (session, server, configuration)
	StatusSkipped               // Not run (filtered, cancelled or stopped after a failure)
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsSuccess returns true if the status indicates success
func (s Status) IsSuccess() bool {
	return s == StatusPassed
}

// StatusOf maps the error a scenario returned to its status. Assertion
// failures mean the app misbehaved; any other error means the scenario could
// not be evaluated.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusPassed
	case CategoryOf(err) == ErrCategoryAssertion:
		return StatusFailed
	default:
		return StatusErrored
	}
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryAssertion                       // Element not found, visibility check failed
	ErrCategoryTimeout                         // Wait budget exhausted
	ErrCategoryConnection                      // Session/server/driver failure
	ErrCategoryConfig                          // Invalid configuration, missing required field
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
