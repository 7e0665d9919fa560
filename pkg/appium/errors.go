package appium

import (
	"errors"
	"fmt"
)

// W3C WebDriver error codes the suite distinguishes.
const (
	CodeNoSuchElement       = "no such element"
	CodeStaleElement        = "stale element reference"
	CodeNotInteractable     = "element not interactable"
	CodeInvalidSelector     = "invalid selector"
	CodeInvalidSessionID    = "invalid session id"
	CodeSessionNotCreated   = "session not created"
	CodeUnknownError        = "unknown error"
	CodeUnknownCommand      = "unknown command"
	CodeInvalidArgument     = "invalid argument"
	CodeInvalidElementState = "invalid element state"
	CodeElementClickBlocked = "element click intercepted"
)

// WebDriverError is an error payload returned by the automation server.
type WebDriverError struct {
	Status  int    // HTTP status code
	Code    string // W3C error code, e.g. "no such element"
	Message string
}

func (e *WebDriverError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNoSuchElement reports whether err is a W3C "no such element" error.
func IsNoSuchElement(err error) bool {
	return hasCode(err, CodeNoSuchElement)
}

// IsStaleElement reports whether err is a W3C "stale element reference" error.
func IsStaleElement(err error) bool {
	return hasCode(err, CodeStaleElement)
}

func hasCode(err error, code string) bool {
	var wdErr *WebDriverError
	return errors.As(err, &wdErr) && wdErr.Code == code
}
