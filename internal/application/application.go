package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/cms-admin/internal/api"
	"github.com/eugenenazirov/cms-admin/internal/config"
	"github.com/eugenenazirov/cms-admin/internal/loader"
	"github.com/eugenenazirov/cms-admin/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.Storage
	reloader *loader.Reloader
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application from cfg and performs the first CMS config
// load. A document that fails to load or parse aborts startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	src, err := loader.ParseSource(cfg.CMSConfigSource)
	if err != nil {
		return nil, fmt.Errorf("invalid cms config source: %w", err)
	}

	store := storage.NewMemoryStorage()
	l := loader.New(
		loader.WithTimeout(cfg.ConfigRequestTimeout),
		loader.WithCacheBusting(cfg.CacheBustConfig),
	)
	reloader := loader.NewReloader(l, src, store, logger)

	if _, err := reloader.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to load cms config from %s: %w", src, err)
	}

	handler := api.NewHandler(store, api.WithReloader(reloader))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithAllowedOrigins(cfg.AllowedOrigins...),
	)

	rootHandler, err := BuildRootHandler(apiRouter, PageFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		storage:  store,
		reloader: reloader,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that routes API requests,
// serves static assets when page.StaticDir is set, and renders the admin page.
func BuildRootHandler(apiHandler http.Handler, page Page) (http.Handler, error) {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)

	if page.StaticDir != "" {
		staticPath := page.StaticDir
		if !filepath.IsAbs(staticPath) {
			resolved, err := resolveProjectPath(staticPath)
			if err != nil {
				return nil, err
			}
			staticPath = resolved
		}
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticPath))))
	}

	index, err := renderIndex(page)
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(index)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("cms_config", a.reloader.Source().String()),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
