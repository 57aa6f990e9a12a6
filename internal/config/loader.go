package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if BOXBOX_CONFIG is set
//  3. env (prefix BOXBOX_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("BOXBOX_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: BOXBOX_YEAR, BOXBOX_OUTPUT_DIR, ...
	// Map env keys like BOXBOX_OUTPUT_DIR -> output_dir (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BOXBOX_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "boxbox_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations that cannot produce a meaningful run.
func (c *Config) validate() error {
	switch {
	case c.Year <= 0:
		return fmt.Errorf("%w: year must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.OutputDir) == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.OpenF1BaseURL) == "" || strings.TrimSpace(c.FastF1BaseURL) == "":
		return fmt.Errorf("%w: provider base URLs must not be empty", ErrInvalidConfig)
	case c.PitMinDurationS >= c.PitMaxDurationS:
		return fmt.Errorf("%w: pit duration bounds must satisfy min < max", ErrInvalidConfig)
	case c.PassCooldownS < 0:
		return fmt.Errorf("%w: pass_cooldown_s must not be negative", ErrInvalidConfig)
	case c.DRSWindowS < 0:
		return fmt.Errorf("%w: drs_window_s must not be negative", ErrInvalidConfig)
	case c.UndercutLookaheadLaps < 1:
		return fmt.Errorf("%w: undercut_lookahead_laps must be at least 1", ErrInvalidConfig)
	}
	return nil
}
