// Package cli implements the depmerge command-line interface.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depmerge/pkg/buildinfo"
	"github.com/matzehuels/depmerge/pkg/cache"
	"github.com/matzehuels/depmerge/pkg/config"
	"github.com/matzehuels/depmerge/pkg/pipeline"
	"github.com/matzehuels/depmerge/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depmerge"

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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depmerge reconciles external and internal dependency graphs",
		Long: `depmerge merges the dependency graph recorded by an external build tool with
the graph derived from the libraries a compilation actually sees, and writes
one canonical resolved-dependency manifest.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/depmerge/config.toml)")

	// Register all subcommands
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.diagnoseCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and DEPMERGE_* overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "cache", cfg.Cache.Backend, "toolchain", cfg.Toolchain.Home)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend := c.cfg.Cache.Backend
	if noCache {
		backend = config.CacheNone
	}
	cc, err := newCache(ctx, c.cfg, backend)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.cfg.Cache.TTL.Duration
	return r, nil
}

// newCache builds the cache backend named by backend.
func newCache(ctx context.Context, cfg config.Config, backend string) (cache.Cache, error) {
	switch backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.TTL.Duration), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL, appName+":")
	default:
		return cache.NewFileCache(cfg.Cache.Dir)
	}
}

// newStore opens MongoDB when a URI is configured and the file store otherwise.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if uri := c.cfg.Store.MongoURI; uri != "" {
		return store.NewMongoStore(ctx, uri, c.cfg.Store.Database)
	}
	return store.NewFileStore(c.cfg.Store.Dir)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatText}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputPath derives the file for format from base. With a single format
// base is used as is; otherwise the format becomes the extension.
func outputPath(base, format string, multiple bool) string {
	if !multiple {
		return base
	}
	ext := format
	if format == pipeline.FormatText {
		ext = "txt"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + ext
}
