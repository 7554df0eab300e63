package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fusiongraph/pkg/auth"
	"github.com/matzehuels/fusiongraph/pkg/buildinfo"
	"github.com/matzehuels/fusiongraph/pkg/cache"
	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/graphql"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
	"github.com/matzehuels/fusiongraph/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "fusiongraph"

	// redisPrefix namespaces cache keys in a shared Redis.
	redisPrefix = appName + ":"
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

	configPath string
	hub        string
	project    string
	component  string
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "fusiongraph reads designs from the manufacturing data model API",
		Long: `fusiongraph reads the assembly hierarchy, thumbnails, STEP geometry and
physical properties of designs stored in Autodesk hubs, and watches them for
new milestones.

Designs are named by hub, project and component:

  fusiongraph hierarchy --hub "My Hub" --project "Bike" --component "Frame"`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template(graphql.DefaultEndpoint))

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/fusiongraph/config.toml)")
	flags.StringVar(&c.hub, "hub", "", "hub name")
	flags.StringVar(&c.project, "project", "", "project name")
	flags.StringVar(&c.component, "component", "", "component (design) name")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the response cache")
	flags.BoolVar(&c.refresh, "refresh", false, "ignore cached results and fetch again")

	// Register all subcommands
	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.thumbnailCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.propertiesCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Client Factory
// =============================================================================

// config loads the config file named by --config, or the default one.
func (c *CLI) config() (*Config, error) {
	if c.configPath != "" {
		return loadConfig(c.configPath, true)
	}
	path, err := defaultConfigPath()
	if err != nil {
		return loadConfig("", false)
	}
	return loadConfig(path, false)
}

// lookupKey combines flags with the config defaults.
func (c *CLI) lookupKey(cfg *Config) (mfg.LookupKey, error) {
	key := mfg.LookupKey{
		Hub:       firstNonEmpty(c.hub, cfg.Defaults.Hub),
		Project:   firstNonEmpty(c.project, cfg.Defaults.Project),
		Component: firstNonEmpty(c.component, cfg.Defaults.Component),
	}
	if err := key.Validate(); err != nil {
		return key, errors.Wrap(errors.GetCode(err), err,
			"name the design with --hub, --project and --component or set them under [defaults]")
	}
	return key, nil
}

// session opens the token store of the configured client.
func (c *CLI) session(cfg *Config) (*session.CLIStore, error) {
	if err := cfg.authConfig().Validate(); err != nil {
		return nil, err
	}
	return session.NewCLIStore("", cfg.Credentials.ClientID)
}

// graphqlClient builds an authenticated GraphQL client.
func (c *CLI) graphqlClient(ctx context.Context, cfg *Config) (*graphql.Client, error) {
	store, err := c.session(cfg)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenSource(ctx, cfg.authConfig(), store)
	if err != nil {
		return nil, err
	}
	return graphql.New(cfg.API.Endpoint, graphql.Options{
		HTTPClient:        &http.Client{Timeout: cfg.API.Timeout.Duration},
		Tokens:            tokens,
		Headers:           map[string]string{"User-Agent": buildinfo.UserAgent()},
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Retries:           cfg.API.Retries,
	}), nil
}

// newClient builds the design client. The returned func releases the cache.
func (c *CLI) newClient(ctx context.Context, cfg *Config) (*mfg.Client, func(), error) {
	gql, err := c.graphqlClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	client := mfg.NewClient(gql, mfg.Options{
		Cache: store,
		Keyer: cache.NewScopedKeyer(cache.NewDefaultKeyer(), session.IDFor(cfg.Credentials.ClientID)+":"),
		TTL:   cfg.Cache.TTL.Duration,
		Logger: func(msg string, args ...any) {
			c.Logger.Debug(msg, args...)
		},
	})
	return client, func() { _ = store.Close() }, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL, redisPrefix)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/fusiongraph/).
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

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
