package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds user configuration loaded from a TOML file. Every field has a
// working default, so a missing config file is not an error.
//
// Example (~/.config/crnident/config.toml):
//
//	[cache]
//	backend = "file"          # file | redis | none
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[search]
//	budget = 1000000
//	timeout = "30s"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Search SearchConfig `toml:"search"`
	Serve  ServeConfig  `toml:"serve"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none". Default "file".
	Backend string `toml:"backend"`

	// Dir overrides the file cache directory (default ~/.cache/crnident).
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SearchConfig sets default pairwise search limits. Command-line flags
// override these per invocation.
type SearchConfig struct {
	// Budget caps candidate assignments per search. Zero means unlimited.
	Budget int64 `toml:"budget"`

	// Timeout caps wall-clock time per search, e.g. "30s". Empty means none.
	Timeout duration `toml:"timeout"`

	// Workers is evaluator parallelism. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	// Addr is the listen address. Default ":8080".
	Addr string `toml:"addr"`
}

// duration wraps time.Duration with TOML string decoding ("30s", "1m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the wrapped value.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Search: SearchConfig{
			Budget: 1_000_000,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig reads the config file at path, or the standard location when
// path is empty. A missing file yields defaults; a malformed file is an
// error so typos do not silently disable settings.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return DefaultConfig(), nil
		}
	}

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// configPath returns the config file path using XDG standard
// (~/.config/crnident/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if cfg.Search.Budget < 0 {
		return fmt.Errorf("search budget must be non-negative")
	}
	return nil
}
