package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/probo/pkg/poll"
)

// Config represents the harness configuration. It is loaded once at startup
// and treated as read-only afterwards; components receive the values they
// need at construction time.
type Config struct {
	Environment string         `toml:"environment" validate:"omitempty,oneof=local dev staging prod"`
	Target      TargetConfig   `toml:"target"`
	Browser     BrowserConfig  `toml:"browser"`
	Timeouts    TimeoutsConfig `toml:"timeouts"`
	Output      OutputConfig   `toml:"output"`
	Logging     LoggingConfig  `toml:"logging"`
}

// TargetConfig identifies the application under test.
type TargetConfig struct {
	BaseURL    string `toml:"base_url" validate:"required,url"`
	APIBaseURL string `toml:"api_base_url" validate:"omitempty,url"`
}

// BrowserConfig controls the browser session factory.
type BrowserConfig struct {
	Name         string `toml:"name" validate:"oneof=chrome chromium edge"`
	Headless     bool   `toml:"headless"`
	WindowWidth  int    `toml:"window_width" validate:"gt=0"`
	WindowHeight int    `toml:"window_height" validate:"gt=0"`
	UserAgent    string `toml:"user_agent"`
	ExecPath     string `toml:"exec_path"`
	NoSandbox    bool   `toml:"no_sandbox"`
	DisableGPU   bool   `toml:"disable_gpu"`
}

// TimeoutsConfig supplies the process-wide wait and retry defaults.
type TimeoutsConfig struct {
	ExplicitWaitSeconds int    `toml:"explicit_wait_seconds" validate:"gt=0"`
	ShortWaitSeconds    int    `toml:"short_wait_seconds" validate:"gt=0"`
	PageLoadSeconds     int    `toml:"page_load_seconds" validate:"gt=0"`
	PollInterval        string `toml:"poll_interval"`
	MaxAttempts         int    `toml:"max_attempts" validate:"gt=0"`
	RetryDelay          string `toml:"retry_delay"`
}

// OutputConfig controls where run artifacts land.
type OutputConfig struct {
	ResultsBaseDir      string `toml:"results_base_dir" validate:"required"`
	ScreenshotOnFailure bool   `toml:"screenshot_on_failure"`
}

// LoggingConfig mirrors the arbor writer setup.
type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Output []string `toml:"output"`
}

// DefaultConfig returns the built-in configuration used when no TOML file
// is supplied.
func DefaultConfig() *Config {
	return &Config{
		Environment: "local",
		Target: TargetConfig{
			BaseURL:    "http://localhost:3000",
			APIBaseURL: "http://localhost:3000/api",
		},
		Browser: BrowserConfig{
			Name:         "chrome",
			Headless:     false,
			WindowWidth:  1920,
			WindowHeight: 1080,
			DisableGPU:   true,
		},
		Timeouts: TimeoutsConfig{
			ExplicitWaitSeconds: 20,
			ShortWaitSeconds:    5,
			PageLoadSeconds:     30,
			PollInterval:        "500ms",
			MaxAttempts:         3,
			RetryDelay:          "1s",
		},
		Output: OutputConfig{
			ResultsBaseDir:      "results",
			ScreenshotOnFailure: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional TOML file,
// and environment variable overrides, then validates the result. An empty
// path falls back to PROBO_CONFIG, which the runner exports so the test
// suites it launches resolve the same file despite their own working
// directory.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = os.Getenv("PROBO_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides layers environment variables over file values so CI
// and the runner can steer a shared config file.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("BASE_URL"); v != "" {
		c.Target.BaseURL = v
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.Target.APIBaseURL = v
	}
	if v := os.Getenv("BROWSER"); v != "" {
		c.Browser.Name = strings.ToLower(v)
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		c.Browser.Headless = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = strings.ToLower(v)
	}
	if v := os.Getenv("EXPLICIT_WAIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Timeouts.ExplicitWaitSeconds = n
		}
	}
	if v := os.Getenv("PAGE_LOAD_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Timeouts.PageLoadSeconds = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Timeouts.MaxAttempts = n
		}
	}
	if v := os.Getenv("TEST_RESULTS_DIR"); v != "" {
		c.Output.ResultsBaseDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks the configuration with struct tags and duration parses.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeouts.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeouts.RetryDelay); err != nil {
		return fmt.Errorf("invalid retry_delay: %w", err)
	}
	return nil
}

// ExplicitWait returns the default wait budget for element conditions.
func (c *Config) ExplicitWait() time.Duration {
	return time.Duration(c.Timeouts.ExplicitWaitSeconds) * time.Second
}

// ShortWait returns the bounded budget used by boolean presence checks.
func (c *Config) ShortWait() time.Duration {
	return time.Duration(c.Timeouts.ShortWaitSeconds) * time.Second
}

// PageLoadWait returns the page load budget.
func (c *Config) PageLoadWait() time.Duration {
	return time.Duration(c.Timeouts.PageLoadSeconds) * time.Second
}

func (c *Config) pollInterval() time.Duration {
	d, err := time.ParseDuration(c.Timeouts.PollInterval)
	if err != nil || d <= 0 {
		return poll.DefaultInterval
	}
	return d
}

// WaitConfig returns the poll configuration for explicit waits.
func (c *Config) WaitConfig() poll.Config {
	return poll.Config{
		Timeout:  c.ExplicitWait(),
		Interval: c.pollInterval(),
	}
}

// ShortWaitConfig returns the poll configuration for boolean checks.
func (c *Config) ShortWaitConfig() poll.Config {
	return poll.Config{
		Timeout:  c.ShortWait(),
		Interval: c.pollInterval(),
	}
}

// PageLoadConfig returns the poll configuration for page load waits.
func (c *Config) PageLoadConfig() poll.Config {
	return poll.Config{
		Timeout:  c.PageLoadWait(),
		Interval: c.pollInterval(),
	}
}

// RetryConfig returns the retry configuration for flaky interactions.
func (c *Config) RetryConfig() poll.Config {
	delay, err := time.ParseDuration(c.Timeouts.RetryDelay)
	if err != nil || delay <= 0 {
		delay = poll.DefaultRetryDelay
	}
	return poll.Config{
		Interval:    delay,
		MaxAttempts: c.Timeouts.MaxAttempts,
	}
}
