// Detection configuration: defaults, TOML file overrides, validation
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"scansplit/internal/core"
)

// Config holds the tunable detection parameters. Zero values are replaced
// by defaults, so a config file only needs the keys it changes.
type Config struct {
	Sensitivity     float64 `toml:"sensitivity"`
	MinRelativeSize float64 `toml:"min_relative_size"`
	MaxRelativeSize float64 `toml:"max_relative_size"`
	MaxCount        int     `toml:"max_count"`
	TrimFactor      float64 `toml:"trim_factor"`
}

// Default returns the stock configuration.
func Default() Config {
	opts := core.DefaultOptions()
	return Config{
		Sensitivity:     opts.Sensitivity,
		MinRelativeSize: opts.MinRelativeSize,
		MaxRelativeSize: opts.MaxRelativeSize,
		MaxCount:        opts.MaxCount,
		TrimFactor:      opts.TrimFactor,
	}
}

// LoadFile reads a TOML config file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Options().Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Options converts the configuration into detector options.
func (c Config) Options() core.Options {
	return core.Options{
		Sensitivity:     c.Sensitivity,
		MinRelativeSize: c.MinRelativeSize,
		MaxRelativeSize: c.MaxRelativeSize,
		MaxCount:        c.MaxCount,
		TrimFactor:      c.TrimFactor,
	}
}
