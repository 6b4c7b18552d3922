package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-gateway/pkg/observability"
)

// logBuildHooks reports repository builds at debug level.
type logBuildHooks struct {
	logger *log.Logger
}

func (h logBuildHooks) OnBuildStart(ctx context.Context, scope string) {
	loggerOr(ctx, h.logger).Debug("building repository", "scope", scope)
}

func (h logBuildHooks) OnBuildComplete(ctx context.Context, scope string, projects, versions int, d time.Duration, err error) {
	l := loggerOr(ctx, h.logger)
	if err != nil {
		l.Debug("repository build failed", "scope", scope, "err", err, "duration", d.Round(time.Millisecond))
		return
	}
	l.Debug("repository built", "scope", scope, "projects", projects, "versions", versions, "duration", d.Round(time.Millisecond))
}

func (h logBuildHooks) OnPageFetched(ctx context.Context, operation string, projects int) {
	loggerOr(ctx, h.logger).Debug("fetched page", "operation", operation, "projects", projects)
}

// logCacheHooks reports manifest cache traffic at debug level.
type logCacheHooks struct {
	logger *log.Logger
}

func (h logCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	loggerOr(ctx, h.logger).Debug("cache hit", "type", keyType)
}

func (h logCacheHooks) OnCacheMiss(ctx context.Context, keyType string) {
	loggerOr(ctx, h.logger).Debug("cache miss", "type", keyType)
}

func (h logCacheHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	loggerOr(ctx, h.logger).Debug("cache set", "type", keyType, "bytes", size)
}

// logHTTPHooks reports GitLab API calls at debug level.
type logHTTPHooks struct {
	logger *log.Logger
}

func (h logHTTPHooks) OnRequest(context.Context, string, string, string) {}

func (h logHTTPHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	loggerOr(ctx, h.logger).Debug("gitlab", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHTTPHooks) OnError(ctx context.Context, method, host, path string, err error) {
	loggerOr(ctx, h.logger).Warn("gitlab request failed", "method", method, "host", host, "path", path, "err", err)
}

// loggerOr prefers the request-scoped logger stored by the server.
func loggerOr(ctx context.Context, fallback *log.Logger) *log.Logger {
	if l, ok := ctx.Value(log.ContextKey).(*log.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// installHooks routes observability events to logger.
func installHooks(logger *log.Logger) {
	observability.SetBuildHooks(logBuildHooks{logger: logger})
	observability.SetCacheHooks(logCacheHooks{logger: logger})
	observability.SetHTTPHooks(logHTTPHooks{logger: logger})
}
