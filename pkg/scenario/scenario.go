// Package scenario defines the end-to-end checks of the login module. Each
// scenario runs against a fresh session and returns nil on success.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/harness"
)

// Tags
const (
	TagLogin      = "login"
	TagRegister   = "register"
	TagValidation = "validation"
	TagSmoke      = "smoke"
)

// Scenario is one named end-to-end check.
type Scenario struct {
	Name        string
	Description string
	Tags        []string
	Run         func(ctx context.Context, s *harness.Session) error
}

// HasTag reports whether the scenario carries tag.
func (sc Scenario) HasTag(tag string) bool {
	return lo.Contains(sc.Tags, tag)
}

// All returns every scenario in execution order.
func All() []Scenario {
	return []Scenario{
		{
			Name:        "login-valid",
			Description: "Log in with a registered email and password; the account screen appears",
			Tags:        []string{TagLogin, TagSmoke},
			Run:         LoginValid,
		},
		{
			Name:        "login-incorrect",
			Description: "Log in with an unregistered email; the wrong-credentials snackbar appears",
			Tags:        []string{TagLogin},
			Run:         LoginIncorrect,
		},
		{
			Name:        "login-invalid-format",
			Description: "Log in with an email missing '@'; the field error appears",
			Tags:        []string{TagLogin, TagValidation},
			Run:         LoginInvalidFormat,
		},
		{
			Name:        "register-password-mismatch",
			Description: "Register with a confirmation that differs from the password",
			Tags:        []string{TagRegister, TagValidation},
			Run:         RegisterPasswordMismatch,
		},
		{
			Name:        "register-blank",
			Description: "Submit the empty registration form; the full name error appears",
			Tags:        []string{TagRegister, TagValidation},
			Run:         RegisterBlank,
		},
		{
			Name:        "register-duplicate",
			Description: "Register with an email that already has an account",
			Tags:        []string{TagRegister},
			Run:         RegisterDuplicate,
		},
		{
			Name:        "register-valid",
			Description: "Register a fresh email; the success snackbar appears",
			Tags:        []string{TagRegister, TagSmoke},
			Run:         RegisterValid,
		},
		{
			Name:        "register-invalid",
			Description: "Register with a malformed email and mismatched confirmation; the email error wins",
			Tags:        []string{TagRegister, TagValidation},
			Run:         RegisterInvalid,
		},
		{
			Name:        "register-twice",
			Description: "Register a fresh email, then the same email again in one session",
			Tags:        []string{TagRegister},
			Run:         RegisterFreshTwice,
		},
	}
}

// Lookup returns the scenario with the given name.
func Lookup(name string) (Scenario, bool) {
	return lo.Find(All(), func(sc Scenario) bool { return sc.Name == name })
}

// Names returns every scenario name.
func Names() []string {
	return lo.Map(All(), func(sc Scenario, _ int) string { return sc.Name })
}

// Tags returns every tag in use, sorted.
func Tags() []string {
	tags := lo.Uniq(lo.FlatMap(All(), func(sc Scenario, _ int) []string { return sc.Tags }))
	sort.Strings(tags)
	return tags
}

// Select returns the named scenarios (all when names is empty), keeping only
// those carrying at least one of tags (any when tags is empty). Unknown names
// are an error.
func Select(names, tags []string) ([]Scenario, error) {
	selected := All()
	if len(names) > 0 {
		unknown := lo.Filter(names, func(n string, _ int) bool {
			_, ok := Lookup(n)
			return !ok
		})
		if len(unknown) > 0 {
			return nil, fmt.Errorf("unknown scenario(s): %s (available: %s)",
				strings.Join(unknown, ", "), strings.Join(Names(), ", "))
		}
		selected = lo.Filter(selected, func(sc Scenario, _ int) bool { return lo.Contains(names, sc.Name) })
	}
	if len(tags) > 0 {
		selected = lo.Filter(selected, func(sc Scenario, _ int) bool {
			return lo.SomeBy(tags, sc.HasTag)
		})
	}
	return selected, nil
}

// expect turns a presence check into a scenario error.
func expect(res core.Result[bool], what string) error {
	if res.OK() && res.Value {
		return nil
	}
	cause := res.Err
	if cause == nil {
		cause = errors.New("element reported as not displayed")
	}
	return core.ErrConditionNotMet.
		WithMessage("expected " + what).
		WithDetails(map[string]interface{}{"outcome": res.Outcome.String()}).
		WithCause(cause)
}
