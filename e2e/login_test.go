package e2e_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/scenario"
)

var _ = Describe("Login", func() {
	It("shows the account screen for valid credentials", func(ctx SpecContext) {
		f := suiteCfg.Fixtures
		session.Login.LoginAs(ctx, f.ValidEmail, f.ValidPassword)

		Expect(session.Login.AccountShown(ctx).Get()).To(BeTrue())
		Expect(session.Login.AccountEmail(ctx)).NotTo(BeEmpty())
	})

	It("shows the wrong-credentials snackbar for an unregistered email", func(ctx SpecContext) {
		f := suiteCfg.Fixtures
		session.Login.LoginAs(ctx, f.IncorrectEmail, f.ValidPassword)

		Expect(session.Login.LoginErrorShown(ctx).Get()).To(BeTrue())
		Expect(session.Login.LoginError(ctx)).To(Equal("Wrong Email or Password"))
		Expect(session.Login.AccountShown(ctx).Outcome).To(Equal(core.OutcomeNotFound))
	})

	It("flags an email without '@'", func(ctx SpecContext) {
		f := suiteCfg.Fixtures
		session.Login.LoginAs(ctx, f.InvalidEmailFormat, f.ValidPassword)

		Expect(session.Login.InvalidEmailFormatShown(ctx).Get()).To(BeTrue())
	})

	DescribeTable("scenarios",
		func(ctx SpecContext, name string) {
			sc, ok := scenario.Lookup(name)
			Expect(ok).To(BeTrue())
			Expect(sc.Run(ctx, session)).To(Succeed())
		},
		Entry(nil, "login-valid"),
		Entry(nil, "login-incorrect"),
		Entry(nil, "login-invalid-format"),
	)
})
