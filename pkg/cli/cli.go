// Package cli provides the command-line interface for the login module suite.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/config"
	"github.com/devicelab-dev/loginmodule-e2e/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML config file (default: config.yaml in the working directory)",
	},
	&cli.StringFlag{
		Name:  "env-file",
		Usage: "Dotenv file with session settings and fixtures",
		Value: config.DefaultEnvFile,
	},
	&cli.StringFlag{
		Name:  "appium-url",
		Usage: "Appium server URL (overrides " + config.EnvAppiumURL + ")",
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"udid"},
		Usage:   "Device name or serial (overrides " + config.EnvDeviceName + ")",
	},
	&cli.DurationFlag{
		Name:  "wait-timeout",
		Usage: "How long to wait for an element to become visible",
	},
	&cli.DurationFlag{
		Name:  "poll-interval",
		Usage: "How often to check for the element while waiting",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Also write debug logging to stderr",
		EnvVars: []string{"LOGINSUITE_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Log file path (default: <home>/reports/loginsuite.log)",
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "loginsuite",
		Usage:   "End-to-end checks for the login module Android app",
		Version: Version,
		Description: `Runs the login and registration scenarios against an Appium server.

Session settings and fixtures come from config.yaml, a .env file and the
environment, in that order of precedence (flags win over all of them).

Examples:
  loginsuite list
  loginsuite run
  loginsuite run --tag login
  loginsuite run register-valid register-duplicate
  loginsuite check --strategy id --locator com.loginmodule.learning:id/appCompatButtonLogin`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				colorsEnabled = false
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			listCommand,
			checkCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the suite configuration and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Resolve(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("appium-url") {
		cfg.Appium.ServerURL = c.String("appium-url")
	}
	if c.IsSet("device") {
		cfg.Appium.DeviceName = c.String("device")
	}
	if c.IsSet("wait-timeout") {
		cfg.Wait.Timeout = c.Duration("wait-timeout")
	}
	if c.IsSet("poll-interval") {
		cfg.Wait.PollInterval = c.Duration("poll-interval")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// initLogging opens the log file, by default in the run's output directory.
// Failure to do so is reported but not fatal.
func initLogging(c *cli.Context, cfg *config.Config) {
	logPath := c.String("log-file")
	if logPath == "" {
		logPath = cfg.LogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "Warning: failed to create log directory: %v\n", err)
		return
	}
	err := logger.InitWithOptions(logPath, logger.Options{
		Verbose: c.Bool("verbose"),
		Console: c.App.ErrWriter,
	})
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "Warning: failed to initialize logger: %v\n", err)
	}
}
