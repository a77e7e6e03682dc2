package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/buildpath/pkg/buildinfo"
	"github.com/matzehuels/buildpath/pkg/cache"
	"github.com/matzehuels/buildpath/pkg/httputil"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/observability"
	"github.com/matzehuels/buildpath/pkg/repository"
	"github.com/matzehuels/buildpath/pkg/resolver"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "buildpath"

	envRepos = "BUILDPATH_REPOS"
	envRedis = "BUILDPATH_REDIS"
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

	repos       []string
	remote      string
	offline     bool
	redis       string
	noCache     bool
	retrieve    bool
	permitStubs bool
	metricsFile string

	registry *prometheus.Registry
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
	v, _, _ := buildinfo.Resolve()
	root := &cobra.Command{
		Use:          appName,
		Short:        "Buildpath resolves artifact dependency paths",
		Long:         `Buildpath flattens the dependency graph of an artifact into resolved paths, following path specifications, options and version overrides, and reports version conflicts between paths.`,
		Version:      v,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			c.setupMetrics()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.flushMetrics()
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringArrayVar(&c.repos, "repo", splitRepos(os.Getenv(envRepos)), "local repository directory (repeatable, env "+envRepos+")")
	flags.StringVar(&c.remote, "remote", repository.MavenCentral, "Maven repository base URL")
	flags.BoolVar(&c.offline, "offline", false, "do not consult the remote repository")
	flags.StringVar(&c.redis, "redis", os.Getenv(envRedis), "Redis address or URL for the shared metadata cache (env "+envRedis+")")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the metadata cache")
	flags.BoolVar(&c.retrieve, "retrieve", false, "download artifact content instead of recording hashes")
	flags.BoolVar(&c.permitStubs, "permit-stubs", false, "accept licensing stubs without content")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.alignCommand())
	root.AddCommand(c.shorthandCommand())
	root.AddCommand(c.pathsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Repository Factory
// =============================================================================

// newRepository builds the repository chain: local directories first, then
// the remote Maven repository, all behind an in-memory cache.
func (c *CLI) newRepository(ctx context.Context) (resolver.Repository, func(), error) {
	var repos []resolver.Repository
	for _, dir := range c.repos {
		repos = append(repos, repository.NewDir(dir))
	}

	closeFn := func() {}
	if !c.offline && c.remote != "" {
		store, err := c.newCache(ctx)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { _ = store.Close() }
		repos = append(repos, repository.NewMaven(repository.MavenOptions{
			URL:         c.remote,
			Cache:       store,
			DownloadDir: downloadDir(),
			Client:      httputil.NewClient(httputil.ClientOptions{}),
			Logger:      c.Logger,
		}))
	}
	return repository.NewCaching(repository.NewChain(repos...), 0), closeFn, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if c.redis != "" {
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: c.redis})
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(filepath.Join(dir, "metadata"))
}

func (c *CLI) newResolver(repo resolver.Repository, overrides []*model.Override) *resolver.Resolver {
	return resolver.New(repo, resolver.Options{
		Retrieve:    c.retrieve,
		PermitStubs: c.permitStubs,
		Overrides:   overrides,
		Logger:      c.Logger,
	})
}

// loadRoot reads the root artifact from a descriptor file, or looks it up in
// repo when arg is an identity.
func loadRoot(ctx context.Context, repo resolver.Repository, arg string) (*model.Artifact, error) {
	if _, err := os.Stat(arg); err == nil {
		return repository.LoadDescriptor(arg)
	}
	id, err := model.ParseID(arg)
	if err != nil {
		return nil, err
	}
	a, err := repo.Resolve(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// =============================================================================
// Metrics
// =============================================================================

func (c *CLI) setupMetrics() {
	if c.metricsFile == "" || c.registry != nil {
		return
	}
	c.registry = prometheus.NewRegistry()
	m := observability.NewPrometheus(c.registry)
	observability.SetResolveHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (c *CLI) flushMetrics() error {
	if c.registry == nil {
		return nil
	}
	return observability.WriteTextfile(c.metricsFile, c.registry)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/buildpath/).
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

// downloadDir is where retrieved content is stored.
func downloadDir() string {
	dir, err := cacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "content")
}

// splitRepos splits a colon separated repository list.
func splitRepos(s string) []string {
	var out []string
	for _, p := range filepath.SplitList(s) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
