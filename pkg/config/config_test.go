package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func validConfig() *Config {
	cfg := Default()
	cfg.Appium.DeviceName = "emulator-5554"
	cfg.Appium.AppPackage = "com.loginmodule.learning"
	cfg.Appium.AppActivity = ".activities.LoginActivity"
	cfg.Fixtures = Fixtures{
		ValidEmail:             "user@example.com",
		ValidPassword:          "secret123",
		InvalidEmailFormat:     "userexample.com",
		IncorrectEmail:         "nobody@example.com",
		Name:                   "Test User",
		InvalidReinputPassword: "different",
	}
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultServerURL, cfg.Appium.ServerURL)
	assert.Equal(t, "Android", cfg.Appium.PlatformName)
	assert.Equal(t, "UiAutomator2", cfg.Appium.AutomationName)
	assert.True(t, cfg.Appium.NoReset)
	assert.Equal(t, 10*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Wait.PollInterval)
	assert.True(t, cfg.Artifacts.CaptureOnFailure)
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
appium:
  serverUrl: http://10.0.0.5:4723
  deviceName: Pixel_8
  appPackage: com.loginmodule.learning
  appActivity: .activities.LoginActivity
  noReset: false
wait:
  timeout: 15s
  pollInterval: 250ms
fixtures:
  validEmail: user@example.com
  name: Test User
outputDir: /tmp/out
artifacts:
  captureOnFailure: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:4723", cfg.Appium.ServerURL)
	assert.Equal(t, "Pixel_8", cfg.Appium.DeviceName)
	assert.Equal(t, "com.loginmodule.learning", cfg.Appium.AppPackage)
	assert.False(t, cfg.Appium.NoReset)
	assert.Equal(t, 15*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait.PollInterval)
	assert.Equal(t, "user@example.com", cfg.Fixtures.ValidEmail)
	assert.Equal(t, "Test User", cfg.Fixtures.Name)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.False(t, cfg.Artifacts.CaptureOnFailure)

	// Unset fields keep their defaults
	assert.Equal(t, "Android", cfg.Appium.PlatformName)
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`appium: [invalid yaml`), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestLoadFromDir_ConfigYml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("appium:\n  deviceName: from-yml\n"), 0644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-yml", cfg.Appium.DeviceName)
}

func TestLoadFromDir_PrefersYaml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("appium:\n  deviceName: yaml\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("appium:\n  deviceName: yml\n"), 0644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Appium.DeviceName)
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.Appium.ServerURL)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		EnvAppiumURL:              "http://appium:4723",
		EnvDeviceName:             "emulator-5554",
		EnvPlatformName:           "android",
		EnvAppPackage:             "com.loginmodule.learning",
		EnvAppActivity:            ".activities.LoginActivity",
		EnvNoReset:                "false",
		EnvWaitTimeout:            "5",
		EnvPollInterval:           "100ms",
		EnvValidEmail:             "user@example.com",
		EnvValidPassword:          "secret123",
		EnvInvalidEmailFormat:     "userexample.com",
		EnvIncorrectEmail:         "nobody@example.com",
		EnvName:                   "Test User",
		EnvInvalidReinputPassword: "different",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://appium:4723", cfg.Appium.ServerURL)
	assert.Equal(t, "emulator-5554", cfg.Appium.DeviceName)
	assert.Equal(t, "android", cfg.Appium.PlatformName)
	assert.False(t, cfg.Appium.NoReset)
	assert.Equal(t, 5*time.Second, cfg.Wait.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Wait.PollInterval)
	assert.Equal(t, "Test User", cfg.Fixtures.Name)
	assert.Equal(t, "different", cfg.Fixtures.InvalidReinputPassword)
}

func TestApplyEnv_EmptyValuesKeepDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(mapLookup(map[string]string{EnvAppiumURL: ""})))
	assert.Equal(t, DefaultServerURL, cfg.Appium.ServerURL)
}

func TestApplyEnv_InvalidValuesCombined(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		EnvNoReset:      "maybe",
		EnvWaitTimeout:  "soon",
		EnvPollInterval: "1x",
	}))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "10s", want: 10 * time.Second},
		{in: "500ms", want: 500 * time.Millisecond},
		{in: " 5 ", want: 5 * time.Second},
		{in: "0.25", want: 250 * time.Millisecond},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "-inf", wantErr: true},
		{in: "1e30", wantErr: true},
		{in: "1e400", wantErr: true},
		{in: "9300000000", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err, "parseDuration(%q) = %v", tt.in, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyEnv_NonFiniteTimeoutRejected(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(mapLookup(map[string]string{EnvWaitTimeout: "NaN", EnvPollInterval: "1e30"}))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, DefaultWaitTimeout, cfg.Wait.Timeout)
	assert.Equal(t, DefaultPollInterval, cfg.Wait.PollInterval)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LOGINSUITE_TEST_VAR=from-file\nLOGINSUITE_TEST_SET=from-file\n"), 0644))

	t.Setenv("LOGINSUITE_TEST_SET", "from-process")
	t.Cleanup(func() { os.Unsetenv("LOGINSUITE_TEST_VAR") })

	require.NoError(t, LoadEnvFile(envPath))

	assert.Equal(t, "from-file", os.Getenv("LOGINSUITE_TEST_VAR"))
	assert.Equal(t, "from-process", os.Getenv("LOGINSUITE_TEST_SET"), "process environment wins over the file")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, LoadEnvFile(""))
}

func TestResolve_Precedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "suite.yaml")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(configPath, []byte("appium:\n  deviceName: yaml-device\n  appPackage: yaml.pkg\n"), 0644))
	require.NoError(t, os.WriteFile(envPath, []byte(EnvDeviceName+"=env-device\n"), 0644))
	t.Setenv(EnvDeviceName, "")
	os.Unsetenv(EnvDeviceName)
	t.Setenv(EnvAppPackage, "")

	cfg, err := Resolve(configPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "env-device", cfg.Appium.DeviceName, "dotenv overrides yaml")
	assert.Equal(t, "yaml.pkg", cfg.Appium.AppPackage, "empty env keeps yaml value")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingFields(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 3) // deviceName, appPackage, appActivity
	for _, e := range errs {
		assert.True(t, errors.Is(e, core.ErrMissingRequired), e.Error())
	}
	assert.Contains(t, err.Error(), EnvDeviceName)
}

func TestValidate_WaitBudget(t *testing.T) {
	cfg := validConfig()
	cfg.Wait.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Wait.PollInterval = 20 * time.Second
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "pollInterval"))
}

func TestValidateFixtures(t *testing.T) {
	assert.NoError(t, validConfig().ValidateFixtures())

	cfg := validConfig()
	cfg.Fixtures.InvalidEmailFormat = "still@valid.com"
	assert.Error(t, cfg.ValidateFixtures())

	cfg = validConfig()
	cfg.Fixtures.InvalidReinputPassword = cfg.Fixtures.ValidPassword
	assert.Error(t, cfg.ValidateFixtures())

	cfg = validConfig()
	cfg.Fixtures = Fixtures{}
	assert.Len(t, multierr.Errors(cfg.ValidateFixtures()), 6)
}

func TestCapabilities(t *testing.T) {
	caps := validConfig().Capabilities()

	assert.Equal(t, "Android", caps["platformName"])
	assert.Equal(t, "UiAutomator2", caps["appium:automationName"])
	assert.Equal(t, "emulator-5554", caps["appium:deviceName"])
	assert.Equal(t, "com.loginmodule.learning", caps["appium:appPackage"])
	assert.Equal(t, ".activities.LoginActivity", caps["appium:appActivity"])
	assert.Equal(t, true, caps["appium:noReset"])
}

func TestCapabilities_OmitsEmpty(t *testing.T) {
	caps := Default().Capabilities()

	_, hasDevice := caps["appium:deviceName"]
	_, hasPackage := caps["appium:appPackage"]
	assert.False(t, hasDevice)
	assert.False(t, hasPackage)
}
