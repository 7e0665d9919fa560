// Package interact waits for UI elements to become visible and then acts on
// them. Every call re-resolves its locator, blocks for at most the configured
// wait budget and never panics.
package interact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/appium"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/config"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/locator"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/logger"
)

// Session is the subset of the automation client the helper drives.
// *appium.Client satisfies it.
type Session interface {
	FindElement(ctx context.Context, using, value string) (string, error)
	IsElementDisplayed(ctx context.Context, elementID string) (bool, error)
	IsElementEnabled(ctx context.Context, elementID string) (bool, error)
	GetElementText(ctx context.Context, elementID string) (string, error)
	ClickElement(ctx context.Context, elementID string) error
	SendElementValue(ctx context.Context, elementID, text string) error
	HideKeyboard(ctx context.Context) error
}

var _ Session = (*appium.Client)(nil)

var errNotDisplayed = errors.New("element is present but not displayed")

// Helper performs wait-then-act calls against one session.
type Helper struct {
	session Session
	wait    config.WaitConfig
}

// New creates a helper. Zero wait values fall back to the defaults.
func New(session Session, wait config.WaitConfig) *Helper {
	if wait.Timeout <= 0 {
		wait.Timeout = config.DefaultWaitTimeout
	}
	if wait.PollInterval <= 0 {
		wait.PollInterval = config.DefaultPollInterval
	}
	return &Helper{session: session, wait: wait}
}

// Wait returns the effective wait budget.
func (h *Helper) Wait() config.WaitConfig {
	return h.wait
}

// Type waits for the element and types text into it.
func (h *Helper) Type(ctx context.Context, loc locator.Locator, text string) core.Result[struct{}] {
	return perform(ctx, h, "type into", loc, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, h.session.SendElementValue(ctx, id, text)
	})
}

// Text waits for the element and reads its text.
func (h *Helper) Text(ctx context.Context, loc locator.Locator) core.Result[string] {
	return perform(ctx, h, "read text of", loc, h.session.GetElementText)
}

// Visible waits for the element and reports whether it is displayed.
func (h *Helper) Visible(ctx context.Context, loc locator.Locator) core.Result[bool] {
	return perform(ctx, h, "check", loc, h.session.IsElementDisplayed)
}

// Tap waits for the element and clicks it.
func (h *Helper) Tap(ctx context.Context, loc locator.Locator) core.Result[struct{}] {
	return perform(ctx, h, "click", loc, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, h.session.ClickElement(ctx, id)
	})
}

// Enabled waits for the element and reports whether it accepts input.
func (h *Helper) Enabled(ctx context.Context, loc locator.Locator) core.Result[bool] {
	return perform(ctx, h, "check enabled state of", loc, h.session.IsElementEnabled)
}

// HideKeyboard dismisses the soft keyboard so it cannot cover the next tap.
// Servers report an error when no keyboard is shown, so failures are only
// logged.
func (h *Helper) HideKeyboard(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.wait.Timeout)
	defer cancel()
	if err := h.session.HideKeyboard(ctx); err != nil {
		logger.Debug("hide keyboard: %v", err)
	}
}

// EnterData types text into the element. Failures are logged and otherwise
// ignored.
func (h *Helper) EnterData(ctx context.Context, loc locator.Locator, text string) {
	h.Type(ctx, loc, text)
}

// GetText returns the element's text, or "" on any failure.
func (h *Helper) GetText(ctx context.Context, loc locator.Locator) string {
	return h.Text(ctx, loc).Or("")
}

// IsPresent reports whether the element became visible within the budget.
// It returns false on any failure, so an absent element and a driver error
// are indistinguishable; use Visible when the difference matters.
func (h *Helper) IsPresent(ctx context.Context, loc locator.Locator) bool {
	return h.Visible(ctx, loc).Or(false)
}

// Click clicks the element. Failures are logged and otherwise ignored.
func (h *Helper) Click(ctx context.Context, loc locator.Locator) {
	h.Tap(ctx, loc)
}

// perform waits for loc and then runs act on the element. The wait and the
// action are each bounded by the wait budget.
func perform[T any](ctx context.Context, h *Helper, verb string, loc locator.Locator, act func(ctx context.Context, elementID string) (T, error)) core.Result[T] {
	start := time.Now()

	id, outcome, err := h.await(ctx, loc)
	if err != nil {
		res := core.Failed[T](outcome, err, time.Since(start))
		h.report(verb, loc, res.Outcome, res.Err, res.Elapsed)
		return res
	}

	actCtx, cancel := context.WithTimeout(ctx, h.wait.Timeout)
	value, err := act(actCtx, id)
	cancel()
	if err != nil {
		res := core.Failed[T](core.OutcomeDriverError,
			core.ErrActionFailed.WithMessage(fmt.Sprintf("%s %s", verb, loc.Describe())).WithCause(err),
			time.Since(start))
		h.report(verb, loc, res.Outcome, res.Err, res.Elapsed)
		return res
	}

	elapsed := time.Since(start)
	logger.Debug("%s %s: ok after %v", verb, loc.Describe(), elapsed.Round(time.Millisecond))
	return core.Ok(value, elapsed)
}

// await polls until an element matching loc is displayed. The first check is
// immediate. "no such element" and stale references are retried; any other
// driver error ends the wait at once. Requests run under the poll's deadline,
// so a stalled server cannot hold the wait past the budget.
func (h *Helper) await(ctx context.Context, loc locator.Locator) (string, core.Outcome, error) {
	using, value, err := loc.Query()
	if err != nil {
		return "", core.OutcomeDriverError, err
	}

	var (
		elementID string
		found     bool
		lastErr   error
	)
	err = wait.PollUntilContextTimeout(ctx, h.wait.PollInterval, h.wait.Timeout, true, func(pollCtx context.Context) (bool, error) {
		id, err := h.session.FindElement(pollCtx, using, value)
		if err != nil {
			if pollCtx.Err() != nil {
				return false, nil
			}
			if retryable(err) {
				lastErr = err
				return false, nil
			}
			return false, err
		}
		found = true

		displayed, err := h.session.IsElementDisplayed(pollCtx, id)
		if err != nil {
			if pollCtx.Err() != nil {
				return false, nil
			}
			if retryable(err) {
				lastErr = err
				return false, nil
			}
			return false, err
		}
		if !displayed {
			lastErr = errNotDisplayed
			return false, nil
		}

		elementID = id
		return true, nil
	})

	switch {
	case err == nil:
		return elementID, core.OutcomeOK, nil

	case ctx.Err() != nil:
		return "", core.OutcomeDriverError, core.ErrWaitTimeout.
			WithMessage("wait for " + loc.Describe() + " interrupted").
			WithCause(ctx.Err())

	case wait.Interrupted(err) && found:
		return "", core.OutcomeTimedOut, core.ErrElementNotVisible.
			WithMessage(fmt.Sprintf("%s not visible within %v", loc.Describe(), h.wait.Timeout)).
			WithCause(lastErr)

	case wait.Interrupted(err):
		return "", core.OutcomeNotFound, core.ErrElementNotFound.
			WithMessage(fmt.Sprintf("%s not found within %v", loc.Describe(), h.wait.Timeout)).
			WithCause(lastErr)

	default:
		return "", core.OutcomeDriverError, core.ErrActionFailed.
			WithMessage("find " + loc.Describe()).
			WithCause(err)
	}
}

func retryable(err error) bool {
	return appium.IsNoSuchElement(err) || appium.IsStaleElement(err)
}

func (h *Helper) report(verb string, loc locator.Locator, outcome core.Outcome, err error, elapsed time.Duration) {
	logger.Warn("%s %s: %s after %v: %v", verb, loc.Describe(), outcome, elapsed.Round(time.Millisecond), err)
}
