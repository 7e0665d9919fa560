package e2e_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/page"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/scenario"
)

var _ = Describe("Registration", func() {
	BeforeEach(func(ctx SpecContext) {
		session.Register.Open(ctx)
	})

	It("asks for a name when the form is blank", func(ctx SpecContext) {
		session.Register.TapRegister(ctx)

		Expect(session.Register.MessageShown(ctx, page.MsgEnterFullName).Get()).To(BeTrue())
	})

	It("refuses mismatched passwords", func(ctx SpecContext) {
		f := suiteCfg.Fixtures
		session.Register.Submit(ctx, page.Registration{
			Email:           session.UniqueEmail(f.ValidEmail),
			Name:            f.Name,
			Password:        f.ValidPassword,
			ConfirmPassword: f.InvalidReinputPassword,
		})

		Expect(session.Register.MessageShown(ctx, page.MsgPasswordMismatch).Get()).To(BeTrue())
	})

	It("refuses an email that is already registered", func(ctx SpecContext) {
		f := suiteCfg.Fixtures
		session.Register.Submit(ctx, page.Registration{
			Email:           f.ValidEmail,
			Name:            f.Name,
			Password:        f.ValidPassword,
			ConfirmPassword: f.ValidPassword,
		})

		Expect(session.Register.MessageShown(ctx, page.MsgEmailExists).Get()).To(BeTrue())
	})

	It("flags an invalid email before checking passwords", func(ctx SpecContext) {
		f := suiteCfg.Fixtures
		session.Register.Submit(ctx, page.Registration{
			Email:           f.InvalidEmailFormat,
			Name:            f.Name,
			Password:        f.ValidPassword,
			ConfirmPassword: f.InvalidReinputPassword,
		})

		Expect(session.Register.InvalidEmailShown(ctx).Get()).To(BeTrue())
	})

	Context("with a fresh email", func() {
		var r page.Registration

		BeforeEach(func() {
			f := suiteCfg.Fixtures
			r = page.Registration{
				Email:           session.UniqueEmail(f.ValidEmail),
				Name:            f.Name,
				Password:        f.ValidPassword,
				ConfirmPassword: f.ValidPassword,
			}
		})

		It("registers the account", func(ctx SpecContext) {
			session.Register.Submit(ctx, r)

			Expect(session.Register.MessageShown(ctx, page.MsgRegistered).Get()).To(BeTrue())
			if app != nil {
				Expect(app.HasUser(r.Email)).To(BeTrue())
			}
		})

		It("refuses the same email the second time", func(ctx SpecContext) {
			Expect(scenario.RegisterTwice(ctx, session, r)).To(Succeed())
		})
	})
})
