package page

import (
	"context"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/interact"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/locator"
)

// Registration screen locators.
var (
	RegisterLink                 = locator.ByID(resourceID("textViewLinkRegister"))
	RegisterNameField            = locator.ByID(resourceID("textInputEditTextName"))
	RegisterEmailField           = locator.ByID(resourceID("textInputEditTextEmail"))
	RegisterPasswordField        = locator.ByID(resourceID("textInputEditTextPassword"))
	RegisterConfirmPasswordField = locator.ByID(resourceID("textInputEditTextConfirmPassword"))
	RegisterButton               = locator.ByXPath("//android.widget.Button[@resource-id='" + resourceID("appCompatButtonRegister") + "']")
	RegisterLoginButton          = locator.ByID(resourceID("appCompatButtonLogin"))
	RegisterInvalidEmail         = locator.UISelectorText("Enter Valid Email")
)

// Registration messages.
const (
	MsgEnterFullName    = "Enter Full Name"
	MsgPasswordMismatch = "Password Does Not Matches"
	MsgEmailExists      = "Email Already Exists"
	MsgRegistered       = "Registration Successful"
)

// Registration is the data typed into the registration form.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterPage drives the registration screen.
type RegisterPage struct {
	h *interact.Helper
}

// NewRegisterPage returns the registration page bound to a helper.
func NewRegisterPage(h *interact.Helper) *RegisterPage {
	return &RegisterPage{h: h}
}

// Open follows the register link on the login screen.
func (p *RegisterPage) Open(ctx context.Context) {
	p.h.Click(ctx, RegisterLink)
}

// EnterName types into the full name field.
func (p *RegisterPage) EnterName(ctx context.Context, name string) {
	p.h.EnterData(ctx, RegisterNameField, name)
}

// EnterEmail types into the email field.
func (p *RegisterPage) EnterEmail(ctx context.Context, email string) {
	p.h.EnterData(ctx, RegisterEmailField, email)
}

// EnterPassword types into the password field.
func (p *RegisterPage) EnterPassword(ctx context.Context, password string) {
	p.h.EnterData(ctx, RegisterPasswordField, password)
}

// EnterConfirmPassword types into the confirm password field.
func (p *RegisterPage) EnterConfirmPassword(ctx context.Context, password string) {
	p.h.EnterData(ctx, RegisterConfirmPasswordField, password)
}

// TapRegister presses the register button.
func (p *RegisterPage) TapRegister(ctx context.Context) {
	p.h.Click(ctx, RegisterButton)
}

// Submit fills the form in the order a user would and presses register.
// Empty fields are left untouched.
func (p *RegisterPage) Submit(ctx context.Context, r Registration) {
	if r.Email != "" {
		p.EnterEmail(ctx, r.Email)
	}
	if r.Name != "" {
		p.EnterName(ctx, r.Name)
	}
	if r.Password != "" {
		p.EnterPassword(ctx, r.Password)
	}
	if r.ConfirmPassword != "" {
		p.EnterConfirmPassword(ctx, r.ConfirmPassword)
	}
	p.h.HideKeyboard(ctx)
	p.TapRegister(ctx)
}

// MessageShown reports whether a TextView with exactly this text is visible.
// Field errors and snackbars both render as TextViews.
func (p *RegisterPage) MessageShown(ctx context.Context, text string) core.Result[bool] {
	return p.h.Visible(ctx, locator.TextView(text))
}

// LoginButtonShown reports whether the login button is visible.
func (p *RegisterPage) LoginButtonShown(ctx context.Context) core.Result[bool] {
	return p.h.Visible(ctx, RegisterLoginButton)
}

// InvalidEmailShown reports whether the "Enter Valid Email" field error is
// visible.
func (p *RegisterPage) InvalidEmailShown(ctx context.Context) core.Result[bool] {
	return p.h.Visible(ctx, RegisterInvalidEmail)
}
