// Package cli implements the crnident command-line interface.
//
// This package provides commands for comparing reaction networks, clustering
// collections into structural identity classes, searching for embedded
// subnetworks, and managing the pairwise result cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - compare: Decide structural identity of two networks
//   - cluster: Partition a collection into identity classes
//   - subnet: Search for a network embedded inside others
//   - fingerprint: Print permutation-invariant fingerprints
//   - random: Generate random test networks
//   - cache: Manage the pairwise result cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/crn-tools/crnident/pkg/buildinfo"
	"github.com/crn-tools/crnident/pkg/cache"
	"github.com/crn-tools/crnident/pkg/network"
)

// appName is the application name used for directories and display.
const appName = "crnident"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger and configuration
// loaded from the standard path (missing config files yield defaults).
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := LoadConfig("")
	if err != nil {
		cfg = DefaultConfig()
	}
	return &CLI{
		Logger: newLogger(w, level),
		Config: cfg,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "crnident decides structural identity of reaction networks",
		Long:         `crnident is a CLI tool for deciding whether chemical reaction networks are structurally identical up to renaming of species and reactions, clustering collections into identity classes, and finding networks embedded inside larger ones.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Commands read the logger back with loggerFromContext, so
			// helpers deep in a command never need the CLI struct.
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.clusterCommand())
	root.AddCommand(c.subnetCommand())
	root.AddCommand(c.fingerprintCommand())
	root.AddCommand(c.randomCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the cache backend selected by configuration. A noCache
// override or a backend failure degrades to the null cache; searches still
// run, just without result reuse.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache()
	}
	if c.Config.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Config.Cache.Redis.Addr,
			Password: c.Config.Cache.Redis.Password,
			DB:       c.Config.Cache.Redis.DB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/crnident/).
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

// =============================================================================
// Input Helpers
// =============================================================================

// loadNetwork reads a single network file.
func loadNetwork(path string) (*network.Network, error) {
	n, err := network.ReadNetworkFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return n, nil
}

// loadCollection reads a collection file or a directory of network files.
func loadCollection(path string) ([]*network.Network, error) {
	nets, err := network.ReadCollectionFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return nets, nil
}
