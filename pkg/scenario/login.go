package scenario

import (
	"context"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/harness"
)

// LoginValid signs in with the registered account.
func LoginValid(ctx context.Context, s *harness.Session) error {
	f := s.Config.Fixtures
	s.Login.EnterEmail(ctx, f.ValidEmail)
	s.Login.EnterPassword(ctx, f.ValidPassword)
	s.Login.TapLogin(ctx)
	return expect(s.Login.AccountShown(ctx), "account screen after login")
}

// LoginIncorrect signs in with an email that has no account.
func LoginIncorrect(ctx context.Context, s *harness.Session) error {
	f := s.Config.Fixtures
	s.Login.EnterEmail(ctx, f.IncorrectEmail)
	s.Login.EnterPassword(ctx, f.ValidPassword)
	s.Login.TapLogin(ctx)
	return expect(s.Login.LoginErrorShown(ctx), "wrong credentials snackbar")
}

// LoginInvalidFormat signs in with a malformed email.
func LoginInvalidFormat(ctx context.Context, s *harness.Session) error {
	f := s.Config.Fixtures
	s.Login.EnterEmail(ctx, f.InvalidEmailFormat)
	s.Login.EnterPassword(ctx, f.ValidPassword)
	s.Login.TapLogin(ctx)
	return expect(s.Login.InvalidEmailFormatShown(ctx), "invalid email field error")
}
