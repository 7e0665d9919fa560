package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/executor"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/logger"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/scenario"
)

var errScenariosFailed = errors.New("one or more scenarios did not pass")

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run end-to-end scenarios, each in a fresh session",
	ArgsUsage: "[scenario...]",
	Description: `Runs the named scenarios, or all of them when none are named.

Failure artifacts (screenshot and page source) are written to
<output>/<run-id>/.

Examples:
  loginsuite run
  loginsuite run --tag register
  loginsuite run login-valid --stop-on-fail`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Only run scenarios with this tag (repeatable)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Artifact directory (overrides OUTPUT_DIR)",
		},
		&cli.BoolFlag{
			Name:  "stop-on-fail",
			Usage: "Skip the remaining scenarios after the first failure",
		},
	},
	Action: runScenarios,
}

func runScenarios(c *cli.Context) error {
	selected, err := scenario.Select(c.Args().Slice(), c.StringSlice("tag"))
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("no scenarios match the given names and tags")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateFixtures(); err != nil {
		return fmt.Errorf("invalid fixtures: %w", err)
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}

	initLogging(c, cfg)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := c.App.Writer
	fmt.Fprintf(w, "Running %d scenario(s) against %s\n", len(selected), cfg.Appium.ServerURL)

	runner := executor.New(cfg, executor.RunnerConfig{
		StopOnFail:      c.Bool("stop-on-fail"),
		OnScenarioStart: onScenarioStart(w),
		OnScenarioEnd:   onScenarioEnd(w),
	})
	result := runner.Run(ctx, selected)

	printSummary(w, result)

	if !result.Success() {
		return errScenariosFailed
	}
	return nil
}
