// Package cli implements the componentscope command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/componentscope/pkg/buildinfo"
	"github.com/matzehuels/componentscope/pkg/cache"
	"github.com/matzehuels/componentscope/pkg/config"
	"github.com/matzehuels/componentscope/pkg/httputil"
	"github.com/matzehuels/componentscope/pkg/integrations/figma"
	"github.com/matzehuels/componentscope/pkg/pipeline"
	"github.com/matzehuels/componentscope/pkg/session"
	"github.com/matzehuels/componentscope/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "componentscope"

	// Subdirectories of the cache directory.
	responseCacheDir = "http"
	resultCacheDir   = "results"
)

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

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
	sessionDir string // empty selects the default session directory
}

// New creates a new CLI instance with a default logger and default settings.
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
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Componentscope maps how design system components contain each other",
		Long: `Componentscope reads a design file, finds every component declared on a
canvas and reports which components are built from which, where each one
appears, and how long reviewing all of them would take.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default <user config dir>/componentscope/config.toml)")

	// Register all subcommands
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.canvasesCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "cache", cfg.Cache.Backend, "storage", cfg.Storage.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The runner has no
// Fetcher; attach one with newFigmaClient when a file key is analyzed.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	rc, err := c.newResultCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(rc, nil, c.Logger), nil
}

// newResultCache opens the analysis result cache selected by the config.
func (c *CLI) newResultCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   appName + ":",
		})
	default:
		base, err := cacheDir()
		if err != nil && cfg.Dir == "" {
			c.Logger.Warn("result cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(c.resultCacheDir(base))
	}
}

// newResponseCache opens the Figma response cache, or returns nil when
// caching is disabled.
func (c *CLI) newResponseCache(noCache bool) (*httputil.Cache, error) {
	if noCache {
		return nil, nil
	}
	base, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return httputil.NewCache(filepath.Join(base, responseCacheDir), c.Config.Figma.CacheTTL.Std())
}

// newFigmaClient creates an API client using the token from the config,
// the environment or the stored session, in that order.
func (c *CLI) newFigmaClient(ctx context.Context, noCache bool) (*figma.Client, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	hc, err := c.newResponseCache(noCache)
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}
	return figma.NewClient(token, c.Config.Figma.BaseURL, hc), nil
}

func (c *CLI) token(ctx context.Context) (string, error) {
	if c.Config.Figma.Token != "" {
		return c.Config.Figma.Token, nil
	}
	store, err := session.NewCLIStore(c.sessionDir)
	if err != nil {
		return "", fmt.Errorf("open session store: %w", err)
	}
	sess, err := store.GetSession(ctx)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return "", fmt.Errorf("no API token (set %s or run '%s auth login')", config.EnvToken, appName)
	}
	return sess.Token, nil
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore opens the run store selected by the config.
func (c *CLI) newStore(ctx context.Context) (storage.Store, error) {
	cfg := c.Config.Storage
	if cfg.Backend == config.StorageMongo {
		return storage.NewMongoStore(ctx, storage.MongoOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	}
	return storage.NewDirStore(cfg.Dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/componentscope/).
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
