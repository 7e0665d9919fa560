// Package page maps the login module's user actions to locators. Each method
// is one locator and one helper call.
package page

import (
	"context"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/interact"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/locator"
)

// AppPackage prefixes every resource ID of the app under test.
const AppPackage = "com.loginmodule.learning"

func resourceID(name string) string {
	return AppPackage + ":id/" + name
}

// Login screen locators.
var (
	LoginEmailField     = locator.ByID(resourceID("textInputEditTextEmail"))
	LoginPasswordField  = locator.ByID(resourceID("textInputEditTextPassword"))
	LoginButton         = locator.ByID(resourceID("appCompatButtonLogin"))
	LoginErrorSnackbar  = locator.ByID(resourceID("snackbar_text"))
	LoginInvalidEmail   = locator.TextView("Enter Valid Email")
	AccountEmailDisplay = locator.ByID(resourceID("textViewEmail"))
)

// LoginPage drives the login screen.
type LoginPage struct {
	h *interact.Helper
}

// NewLoginPage returns the login page bound to a helper.
func NewLoginPage(h *interact.Helper) *LoginPage {
	return &LoginPage{h: h}
}

// EnterEmail types into the email field.
func (p *LoginPage) EnterEmail(ctx context.Context, email string) {
	p.h.EnterData(ctx, LoginEmailField, email)
}

// EnterPassword types into the password field.
func (p *LoginPage) EnterPassword(ctx context.Context, password string) {
	p.h.EnterData(ctx, LoginPasswordField, password)
}

// TapLogin presses the login button.
func (p *LoginPage) TapLogin(ctx context.Context) {
	p.h.Click(ctx, LoginButton)
}

// LoginAs fills both fields, dismisses the keyboard and submits.
func (p *LoginPage) LoginAs(ctx context.Context, email, password string) {
	p.EnterEmail(ctx, email)
	p.EnterPassword(ctx, password)
	p.h.HideKeyboard(ctx)
	p.TapLogin(ctx)
}

// LoginErrorShown reports whether the wrong-credentials snackbar is visible.
func (p *LoginPage) LoginErrorShown(ctx context.Context) core.Result[bool] {
	return p.h.Visible(ctx, LoginErrorSnackbar)
}

// LoginError returns the snackbar text, or "" if none appeared.
func (p *LoginPage) LoginError(ctx context.Context) string {
	return p.h.GetText(ctx, LoginErrorSnackbar)
}

// InvalidEmailFormatShown reports whether the "Enter Valid Email" field error
// is visible.
func (p *LoginPage) InvalidEmailFormatShown(ctx context.Context) core.Result[bool] {
	return p.h.Visible(ctx, LoginInvalidEmail)
}

// AccountShown reports whether the signed-in account screen is visible.
func (p *LoginPage) AccountShown(ctx context.Context) core.Result[bool] {
	return p.h.Visible(ctx, AccountEmailDisplay)
}

// AccountEmail returns the email shown after signing in.
func (p *LoginPage) AccountEmail(ctx context.Context) string {
	return p.h.GetText(ctx, AccountEmailDisplay)
}
