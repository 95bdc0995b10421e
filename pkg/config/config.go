// Package config loads and validates nexport configuration.
//
// Configuration is assembled in three layers, each overriding the last:
//   - built-in defaults
//   - an optional TOML file (~/.config/nexport/config.toml by default)
//   - NEXPORT_* environment variables
//
// Command-line flags sit on top of all three and are applied by the CLI
// after Load returns.
//
// # File format
//
// A complete config file looks like this:
//
//	[server]
//	url = "https://nexus.example.com"
//	username = "admin"
//	timeout = "60s"
//
//	[export]
//	output = "/srv/nexus-backup"
//	concurrency = 8
//	retries = 3
//	repositories = ["maven-releases", "npm-hosted"]
//
//	[cache]
//	backend = "file"
//	ttl = "15m"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[status]
//	addr = ":8099"
//
// All sections and keys are optional. Passwords may be set in the file but
// the NEXPORT_PASSWORD environment variable or the credentials store saved
// by "nexport auth login" are the recommended places for them.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nexport/nexport/pkg/errors"
)

// Cache backend names accepted in [cache] backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Defaults applied before the file and environment are consulted.
const (
	DefaultConcurrency = 5
	DefaultRetries     = 3
	DefaultTimeout     = 60 * time.Second
	DefaultCacheTTL    = 15 * time.Minute
)

// Config is the root configuration for nexport.
type Config struct {
	Server Server `toml:"server"`
	Export Export `toml:"export"`
	Cache  Cache  `toml:"cache"`
	Status Status `toml:"status"`
}

// Server describes the Nexus instance to export from.
type Server struct {
	URL      string   `toml:"url"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
	Timeout  Duration `toml:"timeout"`
}

// Export controls what is exported and how aggressively.
type Export struct {
	Output       string   `toml:"output"`
	Concurrency  int      `toml:"concurrency"`
	Retries      int      `toml:"retries"`
	Repositories []string `toml:"repositories"`
}

// Cache selects the listing cache backend.
type Cache struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
	Redis   Redis    `toml:"redis"`
}

// Redis holds connection settings for the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Status configures the optional status HTTP server.
type Status struct {
	Addr string `toml:"addr"`
}

// Duration wraps time.Duration so TOML files can use "60s" / "15m" strings.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Server: Server{
			Timeout: Duration{DefaultTimeout},
		},
		Export: Export{
			Output:      "export",
			Concurrency: DefaultConcurrency,
			Retries:     DefaultRetries,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     Duration{DefaultCacheTTL},
		},
	}
}

// DefaultPath returns the standard config file location, honoring
// XDG_CONFIG_HOME (~/.config/nexport/config.toml otherwise).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "nexport", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nexport", "config.toml"), nil
}

// Load reads the config file at path (DefaultPath when empty), applies
// environment overrides and returns the result. A missing file is not an
// error; the defaults and environment still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultPath()
		if err == nil {
			path = defaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
			}
		case os.IsNotExist(err):
			// No config file is fine
		default:
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file %s", path)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides config values from NEXPORT_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("NEXPORT_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("NEXPORT_USERNAME"); v != "" {
		cfg.Server.Username = v
	}
	if v := os.Getenv("NEXPORT_PASSWORD"); v != "" {
		cfg.Server.Password = v
	}
	if v := os.Getenv("NEXPORT_OUTPUT"); v != "" {
		cfg.Export.Output = v
	}
	if v := os.Getenv("NEXPORT_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Export.Concurrency = n
		}
	}
	if v := os.Getenv("NEXPORT_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("NEXPORT_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
}

// Validate checks the config for values that would make an export fail.
func (c Config) Validate() error {
	if c.Server.URL != "" {
		if err := errors.ValidateURL(c.Server.URL); err != nil {
			return err
		}
	}
	if c.Export.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must be at least 1")
	}
	if c.Export.Retries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "retries must not be negative")
	}
	if c.Server.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone, "":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (expected file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis cache backend requires cache.redis.addr")
	}
	for _, repo := range c.Export.Repositories {
		if err := errors.ValidateRepositoryName(repo); err != nil {
			return err
		}
	}
	return nil
}

// BaseURL returns the server URL without a trailing slash.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.Server.URL, "/")
}
