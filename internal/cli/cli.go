// Package cli implements the flowlayout command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/buildinfo"
	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/config"
	"github.com/matzehuels/flowlayout/pkg/history"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// cacheConnectTimeout bounds the Redis connection attempt.
const cacheConnectTimeout = 10 * time.Second

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs; see RootCommand.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Flowlayout arranges workflow DAGs for display",
		Long: `Flowlayout is a CLI tool for laying out workflow task graphs. It assigns
every task a level, places levels left to right or top to bottom, and reports
edges that cut through unrelated tasks.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/flowlayout/config.toml)")

	// Register all subcommands
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.snapCommand())
	root.AddCommand(c.tidyCommand())
	root.AddCommand(c.exampleCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default location when the flag is
// empty.
func (c *CLI) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	// Layout results can change between releases.
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.TTL = c.Config.Cache.TTL.Std()
	return r, nil
}

// newCache opens the configured layout cache. An unreachable Redis
// degrades to no caching with a warning.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(ctx, cacheConnectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			c.Logger.Warn("layout cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	if cfg.Dir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.Dir)
}

// openHistory opens the configured history store.
func (c *CLI) openHistory(ctx context.Context) (history.Store, error) {
	s, err := history.Open(ctx, c.Config.History)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return s, nil
}

// remember records doc in the history. Failures are logged, not returned:
// history is a convenience and must not fail the command.
func (c *CLI) remember(ctx context.Context, name string, source history.Source, doc *workflow.Document) {
	data, err := workflow.Marshal(doc, workflow.FormatJSON, workflow.ExportOptions{IncludePositions: true})
	if err != nil {
		c.Logger.Debug("history skipped", "err", err)
		return
	}
	store, err := c.openHistory(ctx)
	if err != nil {
		c.Logger.Debug("history skipped", "err", err)
		return
	}
	defer store.Close()

	if doc.Name != "" {
		name = doc.Name
	}
	if _, err := store.Add(ctx, history.Entry{Name: name, Source: source, Data: data}); err != nil {
		c.Logger.Warn("could not record history", "err", err)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutDefaults returns pipeline options seeded from the configuration.
func (c *CLI) layoutDefaults() pipeline.Options {
	l := c.Config.Layout
	opts := pipeline.Options{
		Direction:    l.Direction,
		NodeSpacingX: l.NodeSpacingX,
		NodeSpacingY: l.NodeSpacingY,
		LevelSpacing: l.LevelSpacing,
		CenterNodes:  l.CenterNodes,
		NodeWidth:    l.NodeWidth,
		NodeHeight:   l.NodeHeight,
		BreakCycles:  l.BreakCycles,
		Grid:         l.Grid,
	}
	opts.SetDefaults()
	return opts
}
