package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/latoulicious/Nekobot/pkg/mute"
)

// Validate validates the configuration and returns every problem found
func (c *Config) Validate() error {
	errs := append([]error(nil), c.envErrs...)

	if strings.TrimSpace(c.Bot.Prefix) == "" {
		errs = append(errs, ErrEmptyPrefix)
	}

	if c.Cooldown.Global < 0 || c.Cooldown.Global > mute.MaxSeconds {
		errs = append(errs, ErrInvalidCooldown)
	}

	if len(c.Reactions) == 0 {
		errs = append(errs, ErrNoReactions)
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}

	for _, p := range c.APIs {
		switch p.Format {
		case FormatJSON:
		case FormatHTML:
			if p.Selector == "" {
				errs = append(errs, fmt.Errorf("api %q: %w", p.Name, ErrMissingSelector))
			}
		default:
			errs = append(errs, fmt.Errorf("api %q: %w: %s", p.Name, ErrInvalidFormat, p.Format))
		}
	}

	if c.Database.Path != "" && c.Database.Retention <= 0 {
		errs = append(errs, ErrInvalidRetention)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
