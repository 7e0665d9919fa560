package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/harness"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/locator"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/logger"
)

// Check actions
const (
	actionPresent = "present"
	actionEnabled = "enabled"
	actionText    = "text"
	actionClick   = "click"
	actionType    = "type"
)

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "Wait for one element and act on it",
	Description: `Opens a session, performs a single wait-and-act call and prints the
value the call returned together with its outcome.

Examples:
  loginsuite check --strategy id --locator com.loginmodule.learning:id/textViewLinkRegister --action click
  loginsuite check --strategy xpath --locator "//android.widget.TextView[@text='Enter Valid Email']"
  loginsuite check --strategy uiselector --locator '.text("Enter Valid Email")' --action text`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "strategy",
			Aliases: []string{"s"},
			Usage:   "Locator strategy (xpath, id, uiselector)",
			Value:   "id",
		},
		&cli.StringFlag{
			Name:     "locator",
			Aliases:  []string{"l"},
			Usage:    "Locator value in the strategy's format",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "action",
			Aliases: []string{"a"},
			Usage:   "What to do once visible (present, enabled, text, click, type)",
			Value:   actionPresent,
		},
		&cli.StringFlag{
			Name:  "text",
			Usage: "Text to type (with --action type)",
		},
	},
	Action: check,
}

func check(c *cli.Context) (err error) {
	strategy, err := locator.ParseStrategy(c.String("strategy"))
	if err != nil {
		return err
	}
	loc := locator.Locator{Strategy: strategy, Value: c.String("locator")}

	action := strings.ToLower(c.String("action"))
	switch action {
	case actionPresent, actionEnabled, actionText, actionClick:
	case actionType:
		if !c.IsSet("text") {
			return fmt.Errorf("--action type requires --text")
		}
	default:
		return fmt.Errorf("unknown action %q (want present, enabled, text, click or type)", action)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	initLogging(c, cfg)
	defer logger.Close()

	s, err := harness.Open(c.Context, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	w := c.App.Writer
	fmt.Fprintf(w, "%s within %v\n", loc.Describe(), cfg.Wait.Timeout)

	h := s.Helper
	switch action {
	case actionPresent:
		return report(w, h.Visible(c.Context, loc), false)
	case actionEnabled:
		return report(w, h.Enabled(c.Context, loc), false)
	case actionText:
		return report(w, h.Text(c.Context, loc), "")
	case actionClick:
		return report(w, h.Tap(c.Context, loc), struct{}{})
	default:
		return report(w, h.Type(c.Context, loc, c.String("text")), struct{}{})
	}
}

// report prints what the sentinel call would have returned and what actually
// happened. Anything other than OK is returned as an error.
func report[T any](w io.Writer, res core.Result[T], def T) error {
	switch v := any(res.Or(def)).(type) {
	case struct{}:
	case string:
		fmt.Fprintf(w, "  value:   %q\n", v)
	default:
		fmt.Fprintf(w, "  value:   %v\n", v)
	}

	outcomeColor := color(colorGreen)
	if !res.OK() {
		outcomeColor = color(colorRed)
	}
	fmt.Fprintf(w, "  outcome: %s%s%s\n", outcomeColor, res.Outcome, color(colorReset))
	fmt.Fprintf(w, "  elapsed: %s\n", formatDuration(res.Elapsed.Round(time.Millisecond)))

	if !res.OK() {
		return res.Err
	}
	return nil
}
