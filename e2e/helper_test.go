package e2e_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/fakeapp"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/locator"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/page"
)

// Headroom for the in-flight request when the budget runs out.
const slack = 2 * time.Second

var _ = Describe("Wait-and-act helper", func() {
	DescribeTable("an element that never appears yields the defaults within the budget",
		func(ctx SpecContext, loc locator.Locator) {
			h := session.Helper
			budget := h.Wait().Timeout + slack

			start := time.Now()
			Expect(h.GetText(ctx, loc)).To(BeEmpty())
			Expect(time.Since(start)).To(BeNumerically("<", budget))

			start = time.Now()
			Expect(h.IsPresent(ctx, loc)).To(BeFalse())
			Expect(time.Since(start)).To(BeNumerically("<", budget))

			start = time.Now()
			h.Click(ctx, loc)
			h.EnterData(ctx, loc, "ignored")
			Expect(time.Since(start)).To(BeNumerically("<", 2*budget))

			Expect(h.Visible(ctx, loc).Outcome).To(Equal(core.OutcomeNotFound))
		},
		Entry("xpath", locator.TextView("This text is never shown")),
		Entry("id", locator.ByID("com.loginmodule.learning:id/neverShown")),
		Entry("uiselector", locator.UISelectorText("This text is never shown")),
	)

	DescribeTable("a visible element is reported without waiting out the budget",
		func(ctx SpecContext, loc locator.Locator) {
			h := session.Helper

			res := h.Visible(ctx, loc)
			Expect(res.Get()).To(BeTrue())
			Expect(res.Elapsed).To(BeNumerically("<", h.Wait().Timeout))
			Expect(h.IsPresent(ctx, loc)).To(BeTrue())
		},
		Entry("xpath", locator.ByXPath("//android.widget.Button[@resource-id='com.loginmodule.learning:id/appCompatButtonLogin']")),
		Entry("id", page.LoginButton),
		Entry("uiselector", locator.ByUISelector(`.resourceId("com.loginmodule.learning:id/appCompatButtonLogin")`)),
	)

	It("reads back what was typed", func(ctx SpecContext) {
		h := session.Helper
		for _, text := range []string{"user@example.com", "it's \"quoted\"", "x"} {
			h.EnterData(ctx, page.LoginEmailField, text)
			Expect(h.GetText(ctx, page.LoginEmailField)).To(Equal(text))
		}
	})

	It("ignores a click on an absent element", func(ctx SpecContext) {
		h := session.Helper
		h.Click(ctx, locator.ByID("com.loginmodule.learning:id/neverShown"))

		Expect(h.IsPresent(ctx, page.LoginButton)).To(BeTrue(), "still on the login screen")
	})

	It("does nothing when the register link is tapped from the register screen", func(ctx SpecContext) {
		fakeOnly()
		session.Register.Open(ctx)
		Expect(session.Register.MessageShown(ctx, "Already a member? Login").Get()).To(BeTrue())

		session.Register.Open(ctx)
		Expect(app.Screen()).To(Equal(fakeapp.ScreenRegister))
	})
})
