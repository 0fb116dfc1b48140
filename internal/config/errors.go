package config

import "errors"

// Configuration errors
var (
	ErrDiscordTokenNotSet = errors.New("DISCORD_TOKEN environment variable is not set")
	ErrEmptyPrefix        = errors.New("bot prefix cannot be empty")
	ErrInvalidCooldown    = errors.New("cooldown must be between 0 seconds and one year")
	ErrInvalidTimeout     = errors.New("http timeout must be > 0")
	ErrInvalidRetention   = errors.New("database retention must be > 0")
	ErrInvalidFormat      = errors.New("unknown provider format")
	ErrMissingSelector    = errors.New("html provider requires a selector")
	ErrNoReactions        = errors.New("no reactions configured")
)
