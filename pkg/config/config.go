// Package config builds the suite configuration: Appium session settings, the
// wait budget, fixture data and artifact options.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
)

// Defaults
const (
	DefaultServerURL      = "http://127.0.0.1:4723/wd/hub"
	DefaultPlatformName   = "Android"
	DefaultAutomationName = "UiAutomator2"
	DefaultWaitTimeout    = 10 * time.Second
	DefaultPollInterval   = 200 * time.Millisecond
	DefaultEnvFile        = ".env"
)

// Environment variable names.
const (
	EnvAppiumURL              = "APPIUM_URL"
	EnvDeviceName             = "DEVICE_NAME"
	EnvPlatformName           = "PLATFORM_NAME"
	EnvAutomationName         = "AUTOMATION_NAME"
	EnvAppPackage             = "APP_PACKAGE"
	EnvAppActivity            = "APP_ACTIVITY"
	EnvNoReset                = "NO_RESET"
	EnvWaitTimeout            = "WAIT_TIMEOUT"
	EnvPollInterval           = "POLL_INTERVAL"
	EnvValidEmail             = "VALID_EMAIL"
	EnvValidPassword          = "VALID_PASSWORD"
	EnvInvalidEmailFormat     = "INVALID_EMAIL_FORMAT"
	EnvIncorrectEmail         = "INCORRECT_EMAIL"
	EnvName                   = "NAME"
	EnvInvalidReinputPassword = "INVALID_REINPUT_PASSWORD"
	EnvOutputDir              = "OUTPUT_DIR"
)

// Config is the complete suite configuration. It is built once per run and
// passed explicitly to the harness.
type Config struct {
	Appium    AppiumConfig        `yaml:"appium"`
	Wait      WaitConfig          `yaml:"wait"`
	Fixtures  Fixtures            `yaml:"fixtures"`
	OutputDir string              `yaml:"outputDir"`
	Artifacts core.ArtifactConfig `yaml:"artifacts"`
}

// AppiumConfig holds the remote session settings.
type AppiumConfig struct {
	ServerURL      string `yaml:"serverUrl"`
	DeviceName     string `yaml:"deviceName"`
	PlatformName   string `yaml:"platformName"`
	AutomationName string `yaml:"automationName"`
	AppPackage     string `yaml:"appPackage"`
	AppActivity    string `yaml:"appActivity"`
	NoReset        bool   `yaml:"noReset"`
}

// WaitConfig bounds how long an element may take to become visible.
type WaitConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// Fixtures holds the test data the scenarios type into the app.
type Fixtures struct {
	ValidEmail             string `yaml:"validEmail"`
	ValidPassword          string `yaml:"validPassword"`
	InvalidEmailFormat     string `yaml:"invalidEmailFormat"`
	IncorrectEmail         string `yaml:"incorrectEmail"`
	Name                   string `yaml:"name"`
	InvalidReinputPassword string `yaml:"invalidReinputPassword"`
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	return &Config{
		Appium: AppiumConfig{
			ServerURL:      DefaultServerURL,
			PlatformName:   DefaultPlatformName,
			AutomationName: DefaultAutomationName,
			NoReset:        true,
		},
		Wait: WaitConfig{
			Timeout:      DefaultWaitTimeout,
			PollInterval: DefaultPollInterval,
		},
		OutputDir: ReportsDir(Home(os.LookupEnv)),
		Artifacts: core.DefaultArtifactConfig(),
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("parse " + path).WithCause(err)
	}

	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, use defaults
	return Default(), nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return core.ErrInvalidConfig.WithMessage("load env file " + path).WithCause(err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables, as returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := parseDuration(v)
			if err != nil {
				errs = multierr.Append(errs, core.ErrInvalidConfig.WithMessage(key).WithCause(err))
				return
			}
			*dst = d
		}
	}

	str(EnvAppiumURL, &c.Appium.ServerURL)
	str(EnvDeviceName, &c.Appium.DeviceName)
	str(EnvPlatformName, &c.Appium.PlatformName)
	str(EnvAutomationName, &c.Appium.AutomationName)
	str(EnvAppPackage, &c.Appium.AppPackage)
	str(EnvAppActivity, &c.Appium.AppActivity)
	if v, ok := lookup(EnvNoReset); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = multierr.Append(errs, core.ErrInvalidConfig.WithMessage(EnvNoReset).WithCause(err))
		} else {
			c.Appium.NoReset = b
		}
	}

	dur(EnvWaitTimeout, &c.Wait.Timeout)
	dur(EnvPollInterval, &c.Wait.PollInterval)

	str(EnvValidEmail, &c.Fixtures.ValidEmail)
	str(EnvValidPassword, &c.Fixtures.ValidPassword)
	str(EnvInvalidEmailFormat, &c.Fixtures.InvalidEmailFormat)
	str(EnvIncorrectEmail, &c.Fixtures.IncorrectEmail)
	str(EnvName, &c.Fixtures.Name)
	str(EnvInvalidReinputPassword, &c.Fixtures.InvalidReinputPassword)

	if v, ok := lookup(EnvHome); ok && v != "" {
		c.OutputDir = ReportsDir(v)
	}
	str(EnvOutputDir, &c.OutputDir)

	return errs
}

// maxSeconds is the largest bare-seconds value a time.Duration can hold.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// parseDuration accepts Go durations ("10s", "500ms") or bare seconds ("10").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.Abs(secs) >= maxSeconds {
			return 0, fmt.Errorf("duration %q is out of range", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("duration %q is out of range", s)
	}
	return time.ParseDuration(s)
}

// Validate reports every missing or inconsistent value at once.
func (c *Config) Validate() error {
	var errs error

	required := []struct {
		name  string
		value string
	}{
		{"appium.serverUrl (" + EnvAppiumURL + ")", c.Appium.ServerURL},
		{"appium.deviceName (" + EnvDeviceName + ")", c.Appium.DeviceName},
		{"appium.platformName (" + EnvPlatformName + ")", c.Appium.PlatformName},
		{"appium.appPackage (" + EnvAppPackage + ")", c.Appium.AppPackage},
		{"appium.appActivity (" + EnvAppActivity + ")", c.Appium.AppActivity},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = multierr.Append(errs, core.ErrMissingRequired.WithMessage("missing required field "+r.name))
		}
	}

	if c.Wait.Timeout <= 0 {
		errs = multierr.Append(errs, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("wait.timeout must be positive, got %v", c.Wait.Timeout)))
	}
	if c.Wait.PollInterval <= 0 {
		errs = multierr.Append(errs, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("wait.pollInterval must be positive, got %v", c.Wait.PollInterval)))
	} else if c.Wait.PollInterval > c.Wait.Timeout && c.Wait.Timeout > 0 {
		errs = multierr.Append(errs, core.ErrInvalidConfig.WithMessage("wait.pollInterval must not exceed wait.timeout"))
	}

	return errs
}

// ValidateFixtures reports fixture values the scenarios need but are unset.
func (c *Config) ValidateFixtures() error {
	var errs error

	required := []struct {
		name  string
		value string
	}{
		{EnvValidEmail, c.Fixtures.ValidEmail},
		{EnvValidPassword, c.Fixtures.ValidPassword},
		{EnvInvalidEmailFormat, c.Fixtures.InvalidEmailFormat},
		{EnvIncorrectEmail, c.Fixtures.IncorrectEmail},
		{EnvName, c.Fixtures.Name},
		{EnvInvalidReinputPassword, c.Fixtures.InvalidReinputPassword},
	}
	for _, r := range required {
		if r.value == "" {
			errs = multierr.Append(errs, core.ErrMissingRequired.WithMessage("missing fixture "+r.name))
		}
	}
	if c.Fixtures.InvalidEmailFormat != "" && strings.Contains(c.Fixtures.InvalidEmailFormat, "@") {
		errs = multierr.Append(errs, core.ErrInvalidConfig.WithMessage(EnvInvalidEmailFormat+" must not contain '@'"))
	}
	if c.Fixtures.ValidPassword != "" && c.Fixtures.ValidPassword == c.Fixtures.InvalidReinputPassword {
		errs = multierr.Append(errs, core.ErrInvalidConfig.WithMessage(EnvInvalidReinputPassword+" must differ from "+EnvValidPassword))
	}

	return errs
}

// Capabilities renders the W3C capabilities for a new session.
func (c *Config) Capabilities() map[string]interface{} {
	caps := map[string]interface{}{
		"platformName":          c.Appium.PlatformName,
		"appium:automationName": c.Appium.AutomationName,
		"appium:noReset":        c.Appium.NoReset,
	}
	if c.Appium.DeviceName != "" {
		caps["appium:deviceName"] = c.Appium.DeviceName
	}
	if c.Appium.AppPackage != "" {
		caps["appium:appPackage"] = c.Appium.AppPackage
	}
	if c.Appium.AppActivity != "" {
		caps["appium:appActivity"] = c.Appium.AppActivity
	}
	return caps
}

// Resolve builds the configuration from every source, lowest precedence first:
// defaults, the YAML file (or config.yaml in the working directory), the dotenv
// file, then the process environment.
func Resolve(configPath, envFile string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if configPath != "" {
		cfg, err = Load(configPath)
	} else {
		cfg, err = LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}
