package scenario

import (
	"context"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/harness"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/page"
)

// RegisterPasswordMismatch submits a confirmation that differs from the password.
func RegisterPasswordMismatch(ctx context.Context, s *harness.Session) error {
	f := s.Config.Fixtures
	s.Register.Open(ctx)
	s.Register.EnterEmail(ctx, f.ValidEmail)
	s.Register.EnterName(ctx, f.Name)
	s.Register.EnterPassword(ctx, f.ValidPassword)
	s.Register.EnterConfirmPassword(ctx, f.InvalidReinputPassword)
	s.Register.TapRegister(ctx)
	return expect(s.Register.MessageShown(ctx, page.MsgPasswordMismatch), "password mismatch error")
}

// RegisterBlank submits the empty form.
func RegisterBlank(ctx context.Context, s *harness.Session) error {
	s.Register.Open(ctx)
	s.Register.TapRegister(ctx)
	return expect(s.Register.MessageShown(ctx, page.MsgEnterFullName), "full name error")
}

// RegisterDuplicate registers the email that already has an account.
func RegisterDuplicate(ctx context.Context, s *harness.Session) error {
	f := s.Config.Fixtures
	s.Register.Open(ctx)
	s.Register.Submit(ctx, page.Registration{
		Email:           f.ValidEmail,
		Name:            f.Name,
		Password:        f.ValidPassword,
		ConfirmPassword: f.ValidPassword,
	})
	return expect(s.Register.MessageShown(ctx, page.MsgEmailExists), "email exists snackbar")
}

// RegisterValid registers an email no one has used, made unique by the
// session prefix.
func RegisterValid(ctx context.Context, s *harness.Session) error {
	s.Register.Open(ctx)
	s.Register.Submit(ctx, freshRegistration(s))
	return expect(s.Register.MessageShown(ctx, page.MsgRegistered), "registration success snackbar")
}

// RegisterInvalid submits a malformed email together with a mismatched
// confirmation; the email check comes first.
func RegisterInvalid(ctx context.Context, s *harness.Session) error {
	f := s.Config.Fixtures
	s.Register.Open(ctx)
	s.Register.EnterEmail(ctx, f.InvalidEmailFormat)
	s.Register.EnterName(ctx, f.Name)
	s.Register.EnterPassword(ctx, f.ValidPassword)
	s.Register.EnterConfirmPassword(ctx, f.InvalidReinputPassword)
	s.Register.TapRegister(ctx)
	return expect(s.Register.InvalidEmailShown(ctx), "invalid email field error")
}

// RegisterFreshTwice registers a fresh email and then the same email again
// without leaving the screen.
func RegisterFreshTwice(ctx context.Context, s *harness.Session) error {
	s.Register.Open(ctx)
	return RegisterTwice(ctx, s, freshRegistration(s))
}

// RegisterTwice submits r on the open registration screen, expects success,
// then submits it again and expects the duplicate error.
func RegisterTwice(ctx context.Context, s *harness.Session, r page.Registration) error {
	s.Register.Submit(ctx, r)
	if err := expect(s.Register.MessageShown(ctx, page.MsgRegistered), "first registration to succeed"); err != nil {
		return err
	}
	s.Register.Submit(ctx, r)
	return expect(s.Register.MessageShown(ctx, page.MsgEmailExists), "second registration to be refused")
}

func freshRegistration(s *harness.Session) page.Registration {
	f := s.Config.Fixtures
	return page.Registration{
		Email:           s.UniqueEmail(f.ValidEmail),
		Name:            f.Name,
		Password:        f.ValidPassword,
		ConfirmPassword: f.ValidPassword,
	}
}
