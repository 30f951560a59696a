package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/mill/app/docs"
	"github.com/umputun/mill/app/enum"
	"github.com/umputun/mill/app/server"
	"github.com/umputun/mill/app/server/web"
	"github.com/umputun/mill/app/store"
)

// ServerCmd implements the server subcommand
type ServerCmd struct {
	Root  string `short:"r" long:"root" env:"MILL_ROOT" default:"." description:"workspace root directory"`
	Title string `long:"title" env:"MILL_TITLE" default:"mill" description:"site title"`
	DB    string `short:"d" long:"db" env:"MILL_DB" default:"mill.db" description:"preference database URL (sqlite file or postgres://...)"`

	Server struct {
		Address         string        `long:"address" env:"ADDRESS" default:":8080" description:"server listen address"`
		ReadTimeout     time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"5s" description:"read timeout"`
		WriteTimeout    time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" default:"30s" description:"write timeout"`
		IdleTimeout     time.Duration `long:"idle-timeout" env:"IDLE_TIMEOUT" default:"60s" description:"idle timeout"`
		ShutdownTimeout time.Duration `long:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" default:"5s" description:"graceful shutdown timeout"`
		BaseURL         string        `long:"base-url" env:"BASE_URL" description:"base URL path for reverse proxy (e.g., /mill)"`
		BodyLimit       int64         `long:"body-limit" env:"BODY_LIMIT" default:"65536" description:"max request body size in bytes"`
		RequestsPerSec  int64         `long:"rps" env:"RPS" default:"1000" description:"max requests per second"`
	} `group:"server" namespace:"server" env-namespace:"MILL_SERVER"`

	Theme struct {
		Backend         string        `long:"backend" env:"BACKEND" default:"cookie" choice:"cookie" choice:"db" description:"where preferences are kept"`
		System          string        `long:"system" env:"SYSTEM" default:"light" choice:"light" choice:"dark" description:"system preference assumed without a client hint"`
		SecureCookie    bool          `long:"secure-cookie" env:"SECURE_COOKIE" description:"mark preference cookies secure"`
		TTL             time.Duration `long:"ttl" env:"TTL" default:"8760h" description:"drop stored preferences not updated for this long, 0 keeps forever"`
		CleanupInterval time.Duration `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"1h" description:"expired preferences cleanup interval"`
	} `group:"theme" namespace:"theme" env-namespace:"MILL_THEME"`

	Cache struct {
		Documents   int  `long:"documents" env:"DOCUMENTS" default:"1000" description:"max rendered documents kept in cache"`
		Preferences int  `long:"preferences" env:"PREFERENCES" default:"10000" description:"max preferences kept in cache"`
		Watch       bool `long:"watch" env:"WATCH" description:"watch workspace and drop stale renderings right away"`
	} `group:"cache" namespace:"cache" env-namespace:"MILL_CACHE"`

	Debug bool `long:"dbg" env:"DEBUG" description:"debug mode"`

	ctx    context.Context
	cancel context.CancelFunc
}

// Execute runs the server command
func (s *ServerCmd) Execute(_ []string) error {
	setupLogs(s.Debug)

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	if s.ctx == nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
		signals(s.cancel)
	}

	return s.run(s.ctx)
}

func (s *ServerCmd) run(ctx context.Context) error {
	baseURL, err := validateBaseURL(s.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	backend, err := enum.ParseBackend(s.Theme.Backend)
	if err != nil {
		return fmt.Errorf("invalid theme backend: %w", err)
	}
	system, err := enum.ParseTheme(s.Theme.System)
	if err != nil || !system.Explicit() {
		return fmt.Errorf("invalid system theme %q, must be light or dark", s.Theme.System)
	}

	log.Printf("[INFO] starting mill server on %s", s.Server.Address)
	if baseURL != "" {
		log.Printf("[INFO] base URL: %s", baseURL)
	}
	log.Printf("[INFO] theme preferences kept in %s, system default %s", backend, system)

	docService, err := docs.NewService(docs.Config{Root: s.Root, CacheEntries: s.Cache.Documents})
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}
	defer docService.Close()
	log.Printf("[INFO] serving workspace %s", docService.Root())

	// preference store is opened only for the db backend, cookies need nothing
	var prefs web.PrefStore
	var expirer server.Expirer
	if backend == enum.BackendDB {
		prefStore, stErr := store.New(s.DB)
		if stErr != nil {
			return fmt.Errorf("failed to initialize store: %w", stErr)
		}
		cached, cErr := store.NewCached(prefStore, s.Cache.Preferences)
		if cErr != nil {
			_ = prefStore.Close()
			return fmt.Errorf("failed to initialize store cache: %w", cErr)
		}
		defer cached.Close()
		prefs, expirer = cached, cached
	}

	srv, err := server.New(docService, prefs, expirer, server.Config{
		Address:         s.Server.Address,
		ReadTimeout:     s.Server.ReadTimeout,
		WriteTimeout:    s.Server.WriteTimeout,
		IdleTimeout:     s.Server.IdleTimeout,
		ShutdownTimeout: s.Server.ShutdownTimeout,
		Version:         revision,
		BaseURL:         baseURL,
		Title:           s.Title,
		Watch:           s.Cache.Watch,
		Backend:         backend,
		SystemTheme:     system,
		SecureCookie:    s.Theme.SecureCookie,
		PrefsTTL:        s.Theme.TTL,
		CleanupInterval: s.Theme.CleanupInterval,
		BodySizeLimit:   s.Server.BodyLimit,
		RequestsPerSec:  s.Server.RequestsPerSec,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// PruneCmd implements the prune subcommand
type PruneCmd struct {
	DB    string        `short:"d" long:"db" env:"MILL_DB" default:"mill.db" description:"preference database URL (sqlite file or postgres://...)"`
	TTL   time.Duration `long:"ttl" env:"MILL_THEME_TTL" default:"8760h" description:"delete preferences not updated for this long"`
	Debug bool          `long:"dbg" env:"DEBUG" description:"debug mode"`
}

// Execute runs the prune command
func (p *PruneCmd) Execute(_ []string) error {
	setupLogs(p.Debug)
	return p.run(context.Background())
}

func (p *PruneCmd) run(ctx context.Context) error {
	if p.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", p.TTL)
	}

	prefStore, err := store.New(p.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer prefStore.Close()

	deleted, err := prefStore.DeleteExpired(ctx, time.Now().Add(-p.TTL))
	if err != nil {
		return fmt.Errorf("failed to prune preferences: %w", err)
	}
	left, err := prefStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count preferences: %w", err)
	}
	log.Printf("[INFO] pruned %d preferences older than %v, %d left", deleted, p.TTL, left)
	return nil
}
