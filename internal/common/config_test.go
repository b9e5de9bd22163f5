package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "http://localhost:3000", cfg.Target.BaseURL)
	assert.Equal(t, "chrome", cfg.Browser.Name)
	assert.Equal(t, 20, cfg.Timeouts.ExplicitWaitSeconds)
	assert.Equal(t, 3, cfg.Timeouts.MaxAttempts)
	assert.Equal(t, "1s", cfg.Timeouts.RetryDelay)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probo.toml")
	content := `
environment = "staging"

[target]
base_url = "https://staging.iotplatform.example"

[browser]
name = "chromium"
headless = true
window_width = 1280
window_height = 720

[timeouts]
explicit_wait_seconds = 10
max_attempts = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "https://staging.iotplatform.example", cfg.Target.BaseURL)
	assert.Equal(t, "chromium", cfg.Browser.Name)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10, cfg.Timeouts.ExplicitWaitSeconds)
	assert.Equal(t, 5, cfg.Timeouts.MaxAttempts)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 30, cfg.Timeouts.PageLoadSeconds)
	assert.Equal(t, "500ms", cfg.Timeouts.PollInterval)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probo.toml")
	content := `
[browser]
window_width = 1024
window_height = 768
no_sandbox = true

[timeouts]
explicit_wait_seconds = 7
retry_delay = "250ms"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("PROBO_CONFIG", path)

	// The runner hands the suites the config file through PROBO_CONFIG;
	// file-only settings must survive the handoff.
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Browser.WindowWidth)
	assert.Equal(t, 768, cfg.Browser.WindowHeight)
	assert.True(t, cfg.Browser.NoSandbox)
	assert.Equal(t, 7, cfg.Timeouts.ExplicitWaitSeconds)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryConfig().Interval)
}

func TestLoadConfigExplicitPathWinsOverEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env.toml")
	argPath := filepath.Join(dir, "arg.toml")
	require.NoError(t, os.WriteFile(envPath, []byte("[timeouts]\nexplicit_wait_seconds = 7\n"), 0644))
	require.NoError(t, os.WriteFile(argPath, []byte("[timeouts]\nexplicit_wait_seconds = 11\n"), 0644))
	t.Setenv("PROBO_CONFIG", envPath)

	cfg, err := LoadConfig(argPath)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.Timeouts.ExplicitWaitSeconds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROBO_CONFIG", "")
	t.Setenv("BASE_URL", "http://ci-target:8080")
	t.Setenv("BROWSER", "Edge")
	t.Setenv("HEADLESS", "true")
	t.Setenv("MAX_RETRIES", "7")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://ci-target:8080", cfg.Target.BaseURL)
	assert.Equal(t, "edge", cfg.Browser.Name)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 7, cfg.Timeouts.MaxAttempts)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser.Name = "safari"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Target.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeouts.PollInterval = "fast"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeouts.RetryDelay = "-"
	assert.Error(t, cfg.Validate())
}

func TestWaitHelpers(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20*time.Second, cfg.ExplicitWait())
	assert.Equal(t, 5*time.Second, cfg.ShortWait())
	assert.Equal(t, 30*time.Second, cfg.PageLoadWait())

	wc := cfg.WaitConfig()
	assert.Equal(t, 20*time.Second, wc.Timeout)
	assert.Equal(t, 500*time.Millisecond, wc.Interval)

	rc := cfg.RetryConfig()
	assert.Equal(t, time.Second, rc.Interval)
	assert.Equal(t, 3, rc.MaxAttempts)
}

func TestRetryConfigFallsBackOnBadDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeouts.RetryDelay = "0s"

	rc := cfg.RetryConfig()
	assert.Greater(t, int64(rc.Interval), int64(0))
}
