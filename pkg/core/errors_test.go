package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") {
		t.Errorf("Error() = %q, should contain 'test message'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrElementNotFound
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrWaitTimeout
	newErr := original.WithMessage("custom timeout message")

	if newErr.Message != "custom timeout message" {
		t.Errorf("Message = %q, want 'custom timeout message'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "custom timeout message" {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := ErrElementNotFound.WithDetails(map[string]interface{}{"strategy": "id"})
	merged := original.WithDetails(map[string]interface{}{"locator": "btn"})

	if merged.Details["strategy"] != "id" || merged.Details["locator"] != "btn" {
		t.Errorf("Details = %v, want strategy and locator", merged.Details)
	}
	if _, ok := original.Details["locator"]; ok {
		t.Error("WithDetails() modified original details")
	}
	if ErrElementNotFound.Details != nil {
		t.Error("WithDetails() modified predefined error")
	}
}

func TestExecutionError_IsMatchesDerivedCopies(t *testing.T) {
	derived := ErrWaitTimeout.WithMessage("gave up").WithCause(errors.New("x"))
	wrapped := fmt.Errorf("tap login: %w", derived)

	if !errors.Is(wrapped, ErrWaitTimeout) {
		t.Error("errors.Is should match a derived copy of ErrWaitTimeout")
	}
	if errors.Is(wrapped, ErrElementNotFound) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestExecutionError_IsFindsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrSessionFailed.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestPredefinedErrorCategories(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
	}{
		{ErrElementNotFound, ErrCategoryAssertion},
		{ErrElementNotVisible, ErrCategoryAssertion},
		{ErrConditionNotMet, ErrCategoryAssertion},
		{ErrWaitTimeout, ErrCategoryTimeout},
		{ErrSessionFailed, ErrCategoryConnection},
		{ErrServerUnreachable, ErrCategoryConnection},
		{ErrActionFailed, ErrCategoryConnection},
		{ErrInvalidConfig, ErrCategoryConfig},
		{ErrMissingRequired, ErrCategoryConfig},
		{ErrInvalidLocator, ErrCategoryConfig},
	}

	for _, tt := range tests {
		if tt.err.Category != tt.category {
			t.Errorf("%s category = %s, want %s", tt.err.Code, tt.err.Category, tt.category)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	if got := CategoryOf(nil); got != ErrCategoryNone {
		t.Errorf("CategoryOf(nil) = %s, want none", got)
	}
	if got := CategoryOf(fmt.Errorf("wrap: %w", ErrConditionNotMet)); got != ErrCategoryAssertion {
		t.Errorf("CategoryOf(wrapped condition) = %s, want assertion", got)
	}
	if got := CategoryOf(errors.New("plain")); got != ErrCategoryConnection {
		t.Errorf("CategoryOf(plain) = %s, want connection", got)
	}
}

func TestNewExecutionError(t *testing.T) {
	err := NewExecutionError(ErrCategoryTimeout, "custom_code", "custom message")

	if err.Category != ErrCategoryTimeout {
		t.Errorf("Category = %v, want %v", err.Category, ErrCategoryTimeout)
	}
	if err.Code != "custom_code" {
		t.Errorf("Code = %q, want 'custom_code'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %q, want 'custom message'", err.Message)
	}
}
