// Package harness owns the lifetime of one automation session: it connects,
// builds the helper and page objects on top, and always disconnects.
package harness

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/appium"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/config"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/interact"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/logger"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/page"
)

// PrefixLength is the number of random letters prepended to fresh emails.
const PrefixLength = 3

// Session is one connected automation session and the objects built on it.
// It is not safe for concurrent use.
type Session struct {
	// ID identifies the session in logs and artifacts.
	ID string
	// Prefix is random per session so registrations never collide.
	Prefix string

	Config   *config.Config
	Client   *appium.Client
	Helper   *interact.Helper
	Login    *page.LoginPage
	Register *page.RegisterPage

	log    *zap.SugaredLogger
	closed bool
}

// Open connects to the Appium server described by cfg. If the server created
// a session but a later setup step failed, that session is deleted before
// the error is returned.
func Open(ctx context.Context, cfg *config.Config) (*Session, error) {
	client := appium.NewClient(cfg.Appium.ServerURL)
	return open(ctx, cfg, client)
}

func open(ctx context.Context, cfg *config.Config, client *appium.Client) (*Session, error) {
	id := uuid.NewString()
	log := logger.With("session", id)

	log.Infof("connecting to %s (device=%s, app=%s/%s)",
		cfg.Appium.ServerURL, cfg.Appium.DeviceName, cfg.Appium.AppPackage, cfg.Appium.AppActivity)

	if err := client.Connect(ctx, cfg.Capabilities()); err != nil {
		err = classifyConnectError(cfg.Appium.ServerURL, err)
		if remote := client.SessionID(); remote != "" {
			log.Warnf("setup failed, deleting remote session %s: %v", remote, err)
			if derr := client.Disconnect(context.Background()); derr != nil {
				err = multierr.Append(err, fmt.Errorf("delete remote session %s: %w", remote, derr))
			}
		}
		return nil, err
	}

	h := interact.New(client, cfg.Wait)
	s := &Session{
		ID:       id,
		Prefix:   lo.RandomString(PrefixLength, lo.LettersCharset),
		Config:   cfg,
		Client:   client,
		Helper:   h,
		Login:    page.NewLoginPage(h),
		Register: page.NewRegisterPage(h),
		log:      log,
	}
	w, hgt := client.ScreenSize()
	log.Infof("connected (remote session %s, platform=%s, screen=%dx%d)",
		client.SessionID(), client.Platform(), w, hgt)
	return s, nil
}

func classifyConnectError(serverURL string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return core.ErrServerUnreachable.
			WithMessage("could not reach Appium server at " + serverURL).
			WithCause(err)
	}
	return core.ErrSessionFailed.WithMessage("could not start session").WithCause(err)
}

// Close ends the remote session. Calling it again is a no-op.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	if err := s.Client.Disconnect(context.Background()); err != nil {
		s.log.Warnf("disconnect failed: %v", err)
		return core.ErrSessionFailed.WithMessage("could not end session").WithCause(err)
	}
	s.log.Info("closed")
	return nil
}

// UniqueEmail returns email prefixed with the session's random letters.
func (s *Session) UniqueEmail(email string) string {
	return s.Prefix + email
}

// Capture saves the screenshot and page source to dir, named after name.
// Whatever could be captured is returned even when something else failed.
func (s *Session) Capture(ctx context.Context, dir, name string) ([]core.Attachment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	base := sanitize(name)
	var (
		attachments []core.Attachment
		errs        error
	)

	if s.Config.Artifacts.Screenshot {
		if data, err := s.Client.Screenshot(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("screenshot: %w", err))
		} else {
			path := filepath.Join(dir, base+".png")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				errs = multierr.Append(errs, err)
			} else {
				attachments = append(attachments, core.NewScreenshotAttachment(path, data))
			}
		}
	}

	if s.Config.Artifacts.UIHierarchy {
		if src, err := s.Client.Source(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("page source: %w", err))
		} else {
			path := filepath.Join(dir, base+".xml")
			if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
				errs = multierr.Append(errs, err)
			} else {
				attachments = append(attachments, core.NewHierarchyAttachment(path, []byte(src)))
			}
		}
	}

	return attachments, errs
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}

// Run opens a session, runs fn and always closes the session, returning the
// errors of both.
func Run(ctx context.Context, cfg *config.Config, fn func(context.Context, *Session) error) error {
	s, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	return run(ctx, s, fn)
}

func run(ctx context.Context, s *Session, fn func(context.Context, *Session) error) (err error) {
	defer func() {
		err = multierr.Append(err, s.Close())
	}()
	return fn(ctx, s)
}
