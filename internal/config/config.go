package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:5000/api"

// Duration decodes yaml values like "30s" or "1m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// NotifyConfig enables pushover notifications when both keys are set.
type NotifyConfig struct {
	PushoverToken string `yaml:"pushover_token"`
	PushoverUser  string `yaml:"pushover_user"`
}

func (n NotifyConfig) Enabled() bool {
	return n.PushoverToken != "" && n.PushoverUser != ""
}

type Config struct {
	API         APIConfig    `yaml:"api"`
	SessionFile string       `yaml:"session_file"`
	Notify      NotifyConfig `yaml:"notify"`
	LogLevel    string       `yaml:"log_level"`

	// PaymentDelay simulates gateway latency before a booking request
	// is issued. Kept configurable so tests don't sleep.
	PaymentDelay Duration `yaml:"payment_delay"`

	// WatchInterval is the poll interval for `bookings watch`.
	WatchInterval Duration `yaml:"watch_interval"`
}

// Load reads the YAML config at path, layers .env and environment
// overrides on top, and fills in defaults. A missing config file is not
// an error; the defaults suffice for a local backend.
func Load(path string) (*Config, error) {
	// Best effort: a .env beside the binary mirrors the original
	// client's environment-driven base URL.
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RAILBOOK_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("RAILBOOK_SESSION_FILE"); v != "" {
		c.SessionFile = v
	}
	if v := os.Getenv("PUSHOVER_TOKEN"); v != "" {
		c.Notify.PushoverToken = v
	}
	if v := os.Getenv("PUSHOVER_USER"); v != "" {
		c.Notify.PushoverUser = v
	}
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PaymentDelay == 0 {
		c.PaymentDelay = Duration(time.Second)
	}
	if c.WatchInterval == 0 {
		c.WatchInterval = Duration(30 * time.Second)
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if c.PaymentDelay < 0 {
		return fmt.Errorf("payment_delay must not be negative")
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch_interval must be positive")
	}
	return nil
}
