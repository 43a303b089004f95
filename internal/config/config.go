package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Console ConsoleConfig `toml:"console"`
	Audio   AudioConfig   `toml:"audio"`
}

type ConsoleConfig struct {
	NoColor        bool   `toml:"no_color"`
	DefaultProject string `toml:"default_project"`
}

type AudioConfig struct {
	// BufferLag is the speaker buffer length, e.g. "50ms".
	BufferLag string `toml:"buffer_lag"`
}

func Default() *Config {
	return &Config{}
}

func (c *Config) OK() error {
	if c.Audio.BufferLag != "" {
		lag, err := time.ParseDuration(c.Audio.BufferLag)
		if err != nil {
			return fmt.Errorf("bad audio buffer_lag %q: %w", c.Audio.BufferLag, err)
		}

		if lag <= 0 {
			return fmt.Errorf("audio buffer_lag must be positive")
		}
	}

	if c.Console.DefaultProject != "" {
		if _, err := os.Stat(c.Console.DefaultProject); err != nil {
			return fmt.Errorf("failed to stat default project file: %w", err)
		}
	}

	return nil
}

// BufferLag returns the parsed speaker buffer length, or 0 when unset so the
// audio engine picks its own default.
func (c *Config) BufferLag() time.Duration {
	if c.Audio.BufferLag == "" {
		return 0
	}

	lag, err := time.ParseDuration(c.Audio.BufferLag)
	if err != nil {
		return 0
	}

	return lag
}

// Load reads and parses the configuration file. A missing file in the
// default location is not an error - the defaults apply.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return nil, fmt.Errorf("config file %q does not exist", path)
		}

		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.OK(); err != nil {
		return nil, fmt.Errorf("error with config file: %w", err)
	}

	slog.Debug("Loaded config file", "path", path)

	return cfg, nil
}

// DefaultConfigDir returns $HOME/.config/stagecue
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Error("Failed to locate user home directory", "error", err)
		return ""
	}

	return filepath.Join(home, ".config", "stagecue")
}

// DefaultConfigPath returns the default configuration file path
// ($HOME/.config/stagecue/config.toml)
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, "config.toml")
}
