// Package server provides HTTP server for the workspace document viewer.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-pkgz/lcw/v2"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/mill/app/enum"
	"github.com/umputun/mill/app/server/web"
)

//go:generate moq -out mocks/renderer.go -pkg mocks -skip-ensure -fmt goimports . Renderer
//go:generate moq -out mocks/expirer.go -pkg mocks -skip-ensure -fmt goimports . Expirer

const defaultCleanupInterval = time.Hour

// Server represents the HTTP server.
type Server struct {
	docs       Renderer
	expirer    Expirer
	cfg        Config
	version    string
	baseURL    string
	registry   *prometheus.Registry
	webHandler *web.Handler
	staticFS   fs.FS // embedded static files
}

// Renderer defines the interface for workspace rendering.
// Defined here (consumer side) to allow different renderer implementations.
type Renderer interface {
	web.Renderer
	Stats() lcw.CacheStat
	StartWatcher(ctx context.Context) (<-chan struct{}, error)
}

// Expirer removes preferences not updated since cutoff.
type Expirer interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Version         string
	BaseURL         string // base URL path for reverse proxy (e.g., /mill)
	Title           string // site title shown in the page header
	Watch           bool   // watch the workspace and drop stale renderings

	// theme preferences
	Backend         enum.Backend
	SystemTheme     enum.Theme    // assumed system preference when the browser sends no hint
	SecureCookie    bool          // mark preference cookies secure
	PrefsTTL        time.Duration // drop stored preferences not updated for this long, 0 keeps forever
	CleanupInterval time.Duration // how often expired preferences are removed

	// limits
	BodySizeLimit  int64 // max request body size in bytes
	RequestsPerSec int64 // max requests per second
}

// New creates a new Server instance.
// prefs is the preference store for the db backend, nil for the cookie backend.
// exp is optional, pass nil to keep stored preferences forever.
func New(rd Renderer, prefs web.PrefStore, exp Expirer, cfg Config) (*Server, error) {
	staticContent, err := web.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}

	s := &Server{
		docs:     rd,
		expirer:  exp,
		cfg:      cfg,
		version:  cfg.Version,
		baseURL:  cfg.BaseURL,
		registry: prometheus.NewRegistry(),
		staticFS: staticContent,
	}
	if err := s.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	webHandler, err := web.New(rd, prefs, web.Config{
		BaseURL:      cfg.BaseURL,
		Title:        cfg.Title,
		Backend:      cfg.Backend,
		SystemTheme:  cfg.SystemTheme,
		SecureCookie: cfg.SecureCookie,
		Registerer:   s.registry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create web handler: %w", err)
	}
	s.webHandler = webHandler

	return s, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.handler(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	if s.cfg.Watch {
		if _, err := s.docs.StartWatcher(ctx); err != nil {
			return fmt.Errorf("failed to start workspace watcher: %w", err)
		}
	}

	if s.expirer != nil && s.cfg.PrefsTTL > 0 {
		s.StartCleanup(ctx)
	}

	// graceful shutdown
	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] shutdown error: %v", err)
		}
	}()

	log.Printf("[DEBUG] started server on %s", s.cfg.Address)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartCleanup starts background removal of expired preferences.
// Runs periodically until context is canceled.
func (s *Server) StartCleanup(ctx context.Context) {
	interval := s.cfg.CleanupInterval
	if interval == 0 {
		interval = defaultCleanupInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Printf("[INFO] preference cleanup stopped")
				return
			case <-ticker.C:
				deleted, err := s.expirer.DeleteExpired(ctx, time.Now().Add(-s.cfg.PrefsTTL))
				if err != nil {
					log.Printf("[WARN] failed to cleanup expired preferences: %v", err)
					continue
				}
				if deleted > 0 {
					log.Printf("[INFO] cleaned up %d expired preferences", deleted)
				}
			}
		}
	}()
}

// handler returns the HTTP handler, wrapping routes with base URL support if configured.
func (s *Server) handler() http.Handler {
	routes := s.routes()
	if s.baseURL == "" {
		return routes
	}
	mux := http.NewServeMux()
	// redirect /base to /base/
	mux.HandleFunc(s.baseURL, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.baseURL+"/", http.StatusMovedPermanently)
	})
	// strip prefix for all routes under base URL
	mux.Handle(s.baseURL+"/", http.StripPrefix(s.baseURL, routes))
	return mux
}

// routes configures and returns the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	// global middleware (applies to all routes)
	router.Use(
		rest.Recoverer(log.Default()),
		rest.RealIP, // must be before Throttle to rate-limit by real client IP
		rest.Throttle(s.requestsPerSec()),
		rest.Trace,
		rest.SizeLimit(s.bodySizeLimit()),
		rest.AppInfo("mill", "umputun", s.version),
		rest.Ping,
	)

	router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFS))))
	router.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	router.Group().Route(func(webRouter *routegroup.Bundle) {
		s.webHandler.Register(webRouter)
	})

	return router
}

// registerMetrics exposes runtime and render cache metrics.
func (s *Server) registerMetrics() error {
	cacheStat := func(get func(lcw.CacheStat) float64) func() float64 {
		return func() float64 { return get(s.docs.Stats()) }
	}
	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "mill", Subsystem: "render_cache", Name: "hits_total",
			Help: "Rendered documents served from cache.",
		}, cacheStat(func(st lcw.CacheStat) float64 { return float64(st.Hits) })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "mill", Subsystem: "render_cache", Name: "misses_total",
			Help: "Documents rendered on a cache miss.",
		}, cacheStat(func(st lcw.CacheStat) float64 { return float64(st.Misses) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "mill", Subsystem: "render_cache", Name: "keys",
			Help: "Rendered documents kept in cache.",
		}, cacheStat(func(st lcw.CacheStat) float64 { return float64(st.Keys) })),
	}
	for _, c := range cs {
		if err := s.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// bodySizeLimit returns the configured body size limit, or default 64KB if not set.
func (s *Server) bodySizeLimit() int64 {
	if s.cfg.BodySizeLimit > 0 {
		return s.cfg.BodySizeLimit
	}
	return 64 * 1024 // 64KB default, only small forms are posted
}

// requestsPerSec returns the configured requests per second limit, or default 1000 if not set.
func (s *Server) requestsPerSec() int64 {
	if s.cfg.RequestsPerSec > 0 {
		return s.cfg.RequestsPerSec
	}
	return 1000 // default
}
