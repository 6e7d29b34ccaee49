// Package main is the entrypoint for the Afftrack API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afftrack/afftrack/internal/auth"
	"github.com/afftrack/afftrack/internal/cache"
	"github.com/afftrack/afftrack/internal/config"
	"github.com/afftrack/afftrack/internal/handler"
	"github.com/afftrack/afftrack/internal/metrics"
	"github.com/afftrack/afftrack/internal/middleware"
	"github.com/afftrack/afftrack/internal/repository"
	"github.com/afftrack/afftrack/internal/server"
	"github.com/afftrack/afftrack/internal/service"
)

func main() {
	ctx := context.Background()

	// Local development reads .env; production relies on real env vars
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Metrics
	var recorder metrics.Recorder = metrics.NewNoop()
	if cfg.MetricsEnabled {
		recorder = metrics.NewPrometheus(prometheus.DefaultRegisterer)
	}

	// Services
	linkService := service.NewLinkService(repo, cacheClient, recorder)
	analyticsService := service.NewAnalyticsService(repo, linkService, logger, recorder)
	statsService := service.NewStatsService(repo)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	linkHandler := handler.NewLinkHandler(linkService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	statsHandler := handler.NewStatsHandler(statsService, logger)
	redirectHandler := handler.NewRedirectHandler(linkService, analyticsService, cfg.LandingBaseURL, logger, recorder)

	r := setupRouter(h, healthHandler, linkHandler, analyticsHandler, statsHandler, redirectHandler, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	linkHandler *handler.LinkHandler,
	analyticsHandler *handler.AnalyticsHandler,
	statsHandler *handler.StatsHandler,
	redirectHandler *handler.RedirectHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.CORS())

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	if cfg.MetricsEnabled {
		r.Method("GET", "/metrics", promhttp.Handler())
	}

	authCfg := middleware.AuthConfig{
		Logger:    logger,
		Verifier:  auth.NewVerifier(cfg.AuthToken, cfg.AuthTokenHash),
		ProjectID: cfg.ProjectID,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}

	// Link management: reads are public, mutations require credentials
	r.Route("/affiliate-links", func(r chi.Router) {
		r.Get("/", linkHandler.List)
		r.Get("/slug/{slug}", linkHandler.GetBySlug)
		r.Get("/{id}", linkHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Post("/", linkHandler.Create)
			r.Put("/{id}", linkHandler.Update)
			r.Patch("/{id}", linkHandler.Patch)
			r.Delete("/{id}", linkHandler.Delete)
		})
	})

	// Click analytics: public beacon ingestion, IP rate-limited
	r.Route("/click-analytics", func(r chi.Router) {
		r.Get("/", analyticsHandler.List)
		r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/", analyticsHandler.Record)
	})

	// Aggregate snapshot
	r.Get("/affiliate-stats", statsHandler.Get)

	// Public redirect endpoint, IP rate-limited
	r.With(middleware.RateLimitIP(rateLimitCfg)).Get("/go/{slug}", redirectHandler.Redirect)

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
