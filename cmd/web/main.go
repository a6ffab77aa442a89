package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"marketpulse/internal/cache"
	"marketpulse/internal/config"
	"marketpulse/internal/middleware"
	"marketpulse/internal/observability"
	"marketpulse/internal/server"
	"marketpulse/internal/services"
	"marketpulse/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

// Template handler functions that can access the template functions
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	generator := services.NewGenerator(cfg.Analytics.Seed, nil)

	start := time.Now()
	data := generator.Dataset()
	logger.Info("marketplace dataset generated",
		"duration", time.Since(start),
		"sellers", len(data.Sellers),
		"listings", len(data.Listings),
		"sales", len(data.Sales),
	)

	analytics := services.NewAnalytics(generator, logger)
	snapshots := cache.New(cfg.Analytics.SnapshotTTL)
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	// Snapshot windows are anchored to the current date, so cached
	// entries go stale at midnight even before their TTL expires.
	scheduler := cron.New()
	scheduler.AddFunc("@every 5m", func() {
		expired := snapshots.Sweep()
		idle := rateLimiter.Sweep()
		if expired > 0 || idle > 0 {
			logger.Debug("sweep completed", "expired_snapshots", expired, "idle_limiters", idle)
		}
	})
	scheduler.AddFunc("@daily", func() {
		snapshots.Clear()
		logger.Info("snapshot cache cleared for date rollover")
	})
	scheduler.Start()

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(analytics, snapshots, logger, cfg.Analytics.DefaultLookback, templateHandlers)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping scheduler")
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
