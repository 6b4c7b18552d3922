// Package cli implements the composer-gateway command-line interface.
//
// # Commands
//
//   - serve: run the Composer repository HTTP server
//   - fetch: build one repository document and print it
//   - cache: inspect and prune the manifest cache
//   - config: print the effective configuration as TOML
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; otherwise
// log_level from the configuration applies. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-gateway/internal/config"
	"github.com/matzehuels/composer-gateway/pkg/cache"
	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/httputil"
	"github.com/matzehuels/composer-gateway/pkg/integrations"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// applyLogLevel sets the level from --verbose or the configured log_level.
func (c *CLI) applyLogLevel() error {
	if c.verbose {
		c.SetLogLevel(log.DebugLevel)
		return nil
	}
	level, err := log.ParseLevel(strings.ToLower(c.cfg.LogLevel))
	if err != nil {
		return gwerrors.Wrap(gwerrors.ErrCodeInvalidInput, err, "log_level")
	}
	c.SetLogLevel(level)
	return nil
}

// openCache opens the configured manifest cache backend.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.cfg.Cache

	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Backend {
	case config.BackendNone:
		backend = cache.NewNullCache()
	case config.BackendMemory:
		backend = cache.NewMemoryCache()
	case config.BackendRedis:
		backend, err = cache.NewRedisCache(ctx, cfg.RedisURL)
	case config.BackendMongo:
		backend, err = cache.NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		backend, err = cache.NewFileCache(cfg.Dir)
	}
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.ErrCodeUpstreamUnavailable, err, "open %s cache", cfg.Backend)
	}

	c.Logger.Debug("opened manifest cache", "backend", cfg.Backend, "prefix", cfg.Prefix)
	return cache.Prefixed(backend, cfg.Prefix), nil
}

// newGitLab creates a GitLab client for the configured instance.
func (c *CLI) newGitLab(breakers *httputil.Breakers) *gitlab.Client {
	api := integrations.NewClient(httputil.NewHTTPClient(c.cfg.Upstream.Timeout), nil)
	if breakers != nil {
		api = api.WithBreakers(breakers)
	}
	return gitlab.NewClient(api, c.cfg.InstanceURL)
}
