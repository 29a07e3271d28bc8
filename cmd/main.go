package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fplsquad/internal/adapters/catalog"
	"github.com/okian/fplsquad/internal/adapters/fpl"
	"github.com/okian/fplsquad/internal/adapters/http/api"
	"github.com/okian/fplsquad/internal/adapters/http/swagger"
	"github.com/okian/fplsquad/internal/adapters/mcp"
	app "github.com/okian/fplsquad/internal/app"
	"github.com/okian/fplsquad/internal/config"
	"github.com/okian/fplsquad/pkg/logger"
	"github.com/rs/cors"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	corsMaxAgeSeconds = 600
)

// version is overridden at link time.
var version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	svc, err := newService(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to build service", logger.Error(err))
	}
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Fatal(ctx, "failed to start service", logger.Error(err))
	}
	defer svc.Stop()

	// Re-rank ahead of requests once the snapshot expires.
	go startCatalogRefresher(ctx, svc, cfg.CatalogTTL(), loggerInstance.Named("refresher"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService wires the FPL client, the catalog and the squad service from config.
func newService(cfg *config.Config, l logger.Logger) (*app.Service, error) {
	client := fpl.NewClient(
		fpl.WithBaseURL(cfg.FPL.BaseURL),
		fpl.WithTimeout(cfg.FPLTimeout()),
		fpl.WithRateLimit(cfg.FPL.RateLimit, cfg.FPL.Burst),
		fpl.WithUserAgent(cfg.FPL.UserAgent),
		fpl.WithLogger(l.Named("fpl")),
	)
	provider := catalog.NewProvider(client,
		catalog.WithTTL(cfg.CatalogTTL()),
		catalog.WithNormalizeOptions(cfg.NormalizeOptions()),
		catalog.WithLogger(l.Named("catalog")),
	)

	opts, err := app.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, app.WithCatalog(provider), app.WithLogger(l.Named("service")))
	return app.New(opts...), nil
}

// newHandler mounts the REST API, the docs and the MCP endpoint behind CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux, swagger.WithVersion(version))

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, cfg.MaxPlayersLimit)
	apiServer.Register(ctx, mux)

	mux.Handle("/mcp", mcp.Handler(mcp.NewServer(svc, version)))

	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Mcp-Session-Id"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         corsMaxAgeSeconds,
	}).Handler(mux)
}

// startCatalogRefresher refreshes the catalog every interval until ctx is done.
func startCatalogRefresher(ctx context.Context, svc *app.Service, interval time.Duration, l logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshCatalog(ctx, svc, l)
		}
	}
}

func refreshCatalog(ctx context.Context, svc *app.Service, l logger.Logger) {
	summary, err := svc.Refresh(ctx)
	if err != nil {
		l.Warn(ctx, "catalog refresh failed", logger.Error(err))
		return
	}
	l.Debug(ctx, "catalog refreshed",
		logger.Int("gameweek", summary.Gameweek),
		logger.Int("players", summary.Players),
		logger.Int("rejected", summary.Rejected))
}
