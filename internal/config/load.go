package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Sentinel errors for configuration loading.
var (
	ErrInvalidValue = errors.New("config: invalid value")
	ErrParse        = errors.New("config: parse failure")
)

// DefaultPath returns the per-user config file location,
// $XDG_CONFIG_HOME/keystorm/config.toml.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "keystorm", "config.toml")
}

// Load reads path and merges it over the defaults. A missing file is not an
// error: the defaults are returned as-is. A malformed or invalid file is.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("%w: %s at %d:%d", ErrParse, derr.Error(), row, col)
		}
		return Config{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
