package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Defaults applied by setDefaults.
const (
	DefaultTMDbBaseURL = "https://api.themoviedb.org/3"
	DefaultLanguage    = "en-US"
	DefaultTimeoutSecs = 10
	DefaultServerAddr  = ":8080"
	DefaultLogLevel    = "info"
	maxTimeoutSecs     = 120
)

// Config represents the main application configuration
type Config struct {
	// Metadata provider
	TMDb TMDbConfig `yaml:"tmdb"`

	// Web frontend
	Server ServerConfig `yaml:"server"`

	// Chat frontend
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Language string `yaml:"language,omitempty"`
	Timeout  int    `yaml:"timeout,omitempty"` // seconds
}

// TimeoutDuration returns the request timeout as a time.Duration.
func (t TMDbConfig) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

// ServerConfig holds web frontend settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
	PopularLimit   int     `yaml:"popular_limit,omitempty"` // movies listed by /popular; 0 lists the whole page
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"`          // "debug", "info", "warn", "error"
	LogFile  string `yaml:"log_file,omitempty"` // used by terminal commands
}

// Load loads configuration from a YAML file with environment variable
// overrides. A missing file is not an error: the environment alone may
// supply everything, and Validate still rejects an absent API key.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// env-only configuration
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()
	cfg.setDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() {
	// TMDb
	if v := os.Getenv("MARQUEE_TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("MARQUEE_TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}
	if v := os.Getenv("MARQUEE_TMDB_LANGUAGE"); v != "" {
		c.TMDb.Language = v
	}

	// Server
	if v := os.Getenv("MARQUEE_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}

	// Telegram
	if v := os.Getenv("MARQUEE_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("MARQUEE_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("MARQUEE_LOG_FILE"); v != "" {
		c.App.LogFile = v
	}
}

// setDefaults fills in optional values that were left empty.
func (c *Config) setDefaults() {
	if c.TMDb.BaseURL == "" {
		c.TMDb.BaseURL = DefaultTMDbBaseURL
	}
	if c.TMDb.Language == "" {
		c.TMDb.Language = DefaultLanguage
	}
	if c.TMDb.Timeout == 0 {
		c.TMDb.Timeout = DefaultTimeoutSecs
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate TMDb
	if strings.TrimSpace(c.TMDb.APIKey) == "" {
		return fmt.Errorf("tmdb.api_key is required (set it in the config file or MARQUEE_TMDB_API_KEY)")
	}
	if err := validateURL(c.TMDb.BaseURL, "tmdb.base_url"); err != nil {
		return err
	}
	if c.TMDb.Timeout < 1 || c.TMDb.Timeout > maxTimeoutSecs {
		return fmt.Errorf("tmdb.timeout must be between 1 and %d seconds", maxTimeoutSecs)
	}

	// Validate server
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr %q is not a host:port address: %w", c.Server.Addr, err)
	}

	// Validate Telegram if configured
	if c.Telegram != nil {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required")
		}
		if c.Telegram.PopularLimit < 0 {
			return fmt.Errorf("telegram.popular_limit must not be negative")
		}
	}

	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error")
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
