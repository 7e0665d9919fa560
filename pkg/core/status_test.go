package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{Status(0), "unknown"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusFailed, "failed"},
		{StatusErrored, "errored"},
		{StatusSkipped, "skipped"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusPassed},
		{ErrConditionNotMet, StatusFailed},
		{ErrElementNotFound.WithMessage("x"), StatusFailed},
		{fmt.Errorf("step 2: %w", ErrElementNotVisible), StatusFailed},
		{ErrWaitTimeout, StatusErrored},
		{ErrSessionFailed, StatusErrored},
		{ErrInvalidConfig, StatusErrored},
		{errors.New("other"), StatusErrored},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStatus_IsSuccess(t *testing.T) {
	if !StatusPassed.IsSuccess() {
		t.Error("StatusPassed.IsSuccess() = false, want true")
	}
	for _, s := range []Status{StatusRunning, StatusFailed, StatusErrored, StatusSkipped} {
		if s.IsSuccess() {
			t.Errorf("Status(%s).IsSuccess() = true, want false", s)
		}
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryAssertion, "assertion"},
		{ErrCategoryTimeout, "timeout"},
		{ErrCategoryConnection, "connection"},
		{ErrCategoryConfig, "config"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}
