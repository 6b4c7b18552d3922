package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/composer-gateway/pkg/cache"
	"github.com/matzehuels/composer-gateway/pkg/httputil"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Options configures a Server.
type Options struct {
	GitLab   *gitlab.Client     // required
	Cache    cache.Cache        // manifest cache; nil disables caching
	Breakers *httputil.Breakers // reported by /healthz; may be nil
	Logger   *log.Logger        // nil uses log.Default()
}

// Server is the gateway's HTTP handler.
type Server struct {
	gitlab   *gitlab.Client
	cache    cache.Cache
	breakers *httputil.Breakers
	logger   *log.Logger
	router   chi.Router
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	s := &Server{
		gitlab:   opts.GitLab,
		cache:    opts.Cache,
		breakers: opts.Breakers,
		logger:   opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/packages", s.handleAll)
	r.Get("/packages.json", s.handleAll)
	r.Get("/*", s.handleScoped)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "gitlab", s.gitlab.InstanceURL())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
