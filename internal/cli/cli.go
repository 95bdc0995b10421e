// Package cli implements the nexport command-line interface.
//
// This package provides commands for exporting artifacts from a Nexus
// repository manager to local disk, inspecting the server, and managing
// saved credentials and the listing cache. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - export: Download every artifact of the selected repositories
//   - repos: List repositories visible on the server
//   - status: Check that the server is reachable
//   - auth: Save, inspect and remove server credentials
//   - cache: Manage the listing cache
//
// # Configuration
//
// Commands read ~/.config/nexport/config.toml (override with --config),
// then NEXPORT_* environment variables, then command-line flags. Saved
// credentials from "nexport auth login" fill in whatever is still missing.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nexport/nexport/pkg/buildinfo"
	"github.com/nexport/nexport/pkg/cache"
	"github.com/nexport/nexport/pkg/config"
	"github.com/nexport/nexport/pkg/credentials"
	"github.com/nexport/nexport/pkg/errors"
	"github.com/nexport/nexport/pkg/nexus"
)

// appName is the application name used for directories and display.
const appName = "nexport"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "nexport",
		Short:        "Nexport exports Nexus repositories to local disk",
		Long:         `Nexport walks every repository of a Sonatype Nexus server and downloads each artifact to a local directory tree, skipping files that are already present. Interrupted or partially failed runs can simply be repeated; only the gaps are fetched again.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/nexport/config.toml)")

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.reposCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration & Client Factory
// =============================================================================

// loadConfig assembles the effective configuration: file, environment and
// saved credentials. Flag overrides are applied by each command afterwards.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	applyCredentials(&cfg)
	return cfg, nil
}

// applyCredentials fills missing server settings from the saved login.
// Saved username and password apply only to the server they were saved for.
func applyCredentials(cfg *config.Config) {
	store, err := credentials.NewStore("")
	if err != nil {
		return
	}
	creds, err := store.Load()
	if err != nil || creds == nil {
		return
	}
	if cfg.Server.URL == "" {
		cfg.Server.URL = creds.Server
	}
	if !sameServer(cfg.Server.URL, creds.Server) {
		return
	}
	if cfg.Server.Username == "" {
		cfg.Server.Username = creds.Username
	}
	if cfg.Server.Password == "" {
		cfg.Server.Password = creds.Password
	}
}

func sameServer(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// newClient builds a Nexus client from the effective configuration.
// An unreachable cache backend degrades to no caching instead of failing
// the command.
func (c *CLI) newClient(ctx context.Context, cfg config.Config, noCache bool) (*nexus.Client, error) {
	if cfg.Server.URL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"no server configured (use --server, set NEXPORT_URL or run 'nexport auth login')")
	}

	backend, err := c.newBackend(ctx, cfg, noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "error", err)
		backend = cache.NewNullCache()
	}

	return nexus.NewClient(nexus.Config{
		BaseURL:  cfg.BaseURL(),
		Username: cfg.Server.Username,
		Password: cfg.Server.Password,
		Timeout:  cfg.Server.Timeout.Duration,
	}, backend, cfg.Cache.TTL.Duration), nil
}

// newBackend opens the listing-cache backend selected by the configuration.
func (c *CLI) newBackend(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		pr := newProgress(c.Logger)
		backend, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		pr.done("Connected to redis at " + cfg.Cache.Redis.Addr)
		return backend, nil
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/nexport/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
