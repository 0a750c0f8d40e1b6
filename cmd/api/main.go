// Package main is the entrypoint for the QuickAI API server.
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

	"github.com/quickai/quickai/internal/cache"
	"github.com/quickai/quickai/internal/config"
	"github.com/quickai/quickai/internal/handler"
	"github.com/quickai/quickai/internal/identity"
	"github.com/quickai/quickai/internal/metrics"
	"github.com/quickai/quickai/internal/middleware"
	"github.com/quickai/quickai/internal/provider"
	"github.com/quickai/quickai/internal/repository"
	"github.com/quickai/quickai/internal/server"
	"github.com/quickai/quickai/internal/service"
	"github.com/quickai/quickai/internal/storage"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
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

	// Initialize cache / quota store
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

	// Initialize blob storage
	blobStore, err := storage.New(ctx, storage.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize blob storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize identity provider client
	identityClient := identity.New(identity.Config{
		BaseURL:     cfg.IdentityBaseURL,
		APIKey:      cfg.IdentityAPIKey,
		PremiumPlan: cfg.PremiumPlanName,
	})

	// Initialize generative providers behind a shared circuit breaker
	textClient := provider.NewTextClient(provider.TextConfig{
		BaseURL: cfg.TextAPIBaseURL,
		APIKey:  cfg.TextAPIKey,
		Model:   cfg.TextModel,
		Timeout: cfg.ProviderTimeout,
	})
	imageClient := provider.NewImageClient(provider.ImageConfig{
		BaseURL: cfg.ImageAPIBaseURL,
		APIKey:  cfg.ImageAPIKey,
		Timeout: cfg.ProviderTimeout,
	})
	producer := provider.WithBreaker(
		provider.NewProducer(textClient, imageClient),
		provider.DefaultBreakerConfig("generative-providers"),
		logger,
	)

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	gatewayService := service.NewGatewayService(
		repo,
		cacheClient,
		producer,
		blobStore,
		cfg.FreeUsageLimit,
		logger,
		metricsRecorder,
	)
	creationService := service.NewCreationService(repo, logger, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	aiHandler := handler.NewAIHandler(gatewayService, logger)
	creationHandler := handler.NewCreationHandler(creationService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(h, healthHandler, aiHandler, creationHandler, metricsHandler, identityClient, cacheClient, cfg, logger)

	// Create and run server
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
		"free_usage_limit", cfg.FreeUsageLimit,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

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
	aiHandler *handler.AIHandler,
	creationHandler *handler.CreationHandler,
	metricsHandler *handler.MetricsHandler,
	identityClient *identity.Client,
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
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Metrics endpoint
	r.Get("/metrics", metricsHandler.Metrics)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:    logger,
		JWTSecret: []byte(cfg.JWTSecret),
		Identity:  identityClient,
		Cache:     cacheClient,
	}

	// Content-producing endpoints (require authentication)
	r.Route("/api/ai", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Post("/generate-article", aiHandler.GenerateArticle)
		r.Post("/generate-blog-title", aiHandler.GenerateBlogTitle)
		r.Post("/generate-image", aiHandler.GenerateImage)
		r.Post("/remove-image-background", aiHandler.RemoveImageBackground)
		r.Post("/remove-image-object", aiHandler.RemoveImageObject)
		r.Post("/resume-review", aiHandler.ResumeReview)
	})

	// Feed and social endpoints
	r.Route("/api/user", func(r chi.Router) {
		// The community feed is public; everything else needs a caller.
		r.Get("/get-published-creations", creationHandler.GetPublishedCreations)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Get("/get-user-creations", creationHandler.GetUserCreations)
			r.Post("/toggle-publish", creationHandler.TogglePublish)
			r.Post("/toggle-like-creations", creationHandler.ToggleLike)
		})
	})

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
