package config

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/latoulicious/Nekobot/pkg/logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath      = "config/config.yaml"
	DefaultPrefix          = "!"
	DefaultCooldownSeconds = 30
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultUserAgent       = "Nekobot/1.0"
	DefaultRetention       = 30 * 24 * time.Hour
	DefaultCleanupSchedule = "0 0 3 * * *"
)

// Config is the bot configuration loaded once at startup
type Config struct {
	Bot       BotConfig      `yaml:"bot"`
	Cooldown  CooldownConfig `yaml:"cooldown"`
	Reactions Reactions      `yaml:"reactions"`
	APIs      Providers      `yaml:"apis"`
	HTTP      HTTPConfig     `yaml:"http"`
	Logging   logging.Config `yaml:"logging"`
	Database  DatabaseConfig `yaml:"database"`

	DiscordToken string `yaml:"-"`

	// envErrs holds environment overrides that could not be applied
	envErrs []error
}

// BotConfig contains the command prefix and description
type BotConfig struct {
	Prefix      string `yaml:"prefix"`
	Description string `yaml:"description"`
}

// CooldownConfig contains mute durations in seconds
type CooldownConfig struct {
	Global int `yaml:"global"`
}

// HTTPConfig configures the outbound image provider client
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// DatabaseConfig configures the optional dispatch stats store.
// An empty Path disables it.
type DatabaseConfig struct {
	Path            string        `yaml:"path"`
	Retention       time.Duration `yaml:"retention"`
	CleanupSchedule string        `yaml:"cleanup_schedule"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Prefix: DefaultPrefix,
		},
		Cooldown: CooldownConfig{
			Global: DefaultCooldownSeconds,
		},
		HTTP: HTTPConfig{
			Timeout:   DefaultHTTPTimeout,
			UserAgent: DefaultUserAgent,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Database: DatabaseConfig{
			Retention:       DefaultRetention,
			CleanupSchedule: DefaultCleanupSchedule,
		},
	}
}

// MuteDuration returns the configured default mute window
func (c *Config) MuteDuration() time.Duration {
	return time.Duration(c.Cooldown.Global) * time.Second
}

// Parse decodes a YAML document on top of the defaults and validates it
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}
	cfg.LoadFromEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads the configuration file at path and the Discord token
// from the environment, loading a .env file first when one exists.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration file %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	if cfg.DiscordToken == "" {
		return nil, ErrDiscordTokenNotSet
	}

	return cfg, nil
}

// LoadFromEnvironment overrides logging and database settings from environment
// variables. Values that fail to parse are reported by Validate.
func (c *Config) LoadFromEnvironment() {
	if val := os.Getenv("NEKOBOT_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}

	if val := os.Getenv("NEKOBOT_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}

	if val := os.Getenv("NEKOBOT_DATABASE_PATH"); val != "" {
		c.Database.Path = val
	}

	if val := os.Getenv("NEKOBOT_HTTP_TIMEOUT"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			c.envErrs = append(c.envErrs, fmt.Errorf("NEKOBOT_HTTP_TIMEOUT %q: %w", val, ErrInvalidTimeout))
		} else {
			c.HTTP.Timeout = timeout
		}
	}
}
