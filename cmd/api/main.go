// Package main is the entrypoint for the Gatepost API server.
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

	"github.com/gatepost/gatepost/internal/auth"
	"github.com/gatepost/gatepost/internal/cache"
	"github.com/gatepost/gatepost/internal/config"
	"github.com/gatepost/gatepost/internal/handler"
	"github.com/gatepost/gatepost/internal/mailer"
	"github.com/gatepost/gatepost/internal/metrics"
	"github.com/gatepost/gatepost/internal/middleware"
	"github.com/gatepost/gatepost/internal/repository"
	"github.com/gatepost/gatepost/internal/server"
	"github.com/gatepost/gatepost/internal/service"
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
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize outbound mail
	smtp := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	signInService := service.NewSignInService(repo, cacheClient, smtp, service.SignInConfig{
		SiteURL:    cfg.SiteURL,
		TokenTTL:   cfg.SignInTokenTTL,
		SessionTTL: cfg.UserSessionTTL,
		Metrics:    metricsRecorder,
	})
	requestService := service.NewAccessRequestService(repo, signInService, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	requestHandler := handler.NewRequestHandler(requestService, logger)
	adminHandler := handler.NewAdminHandler(requestService, handler.AdminHandlerConfig{
		Verifier:   auth.NewStaticSecretVerifier(cfg.AdminPassword),
		SessionTTL: cfg.AdminSessionTTL,
		Secure:     cfg.IsProduction(),
	}, logger)
	authHandler := handler.NewAuthHandler(signInService, handler.AuthHandlerConfig{
		SessionTTL: cfg.UserSessionTTL,
		Secure:     cfg.IsProduction(),
	}, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		root:     h,
		health:   healthHandler,
		requests: requestHandler,
		admin:    adminHandler,
		auth:     authHandler,
		metrics:  metricsHandler,
		sessions: signInService,
		cfg:      cfg,
		logger:   logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("database", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"site_url", cfg.SiteURL,
		"env", cfg.AppEnv,
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

// routerDeps bundles everything the router needs.
type routerDeps struct {
	root     *handler.Handler
	health   *handler.HealthHandler
	requests *handler.RequestHandler
	admin    *handler.AdminHandler
	auth     *handler.AuthHandler
	metrics  *handler.MetricsHandler
	sessions middleware.SessionResolver
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.root.Hello)

	// Public access request submission
	r.Post("/api/v1/requests", deps.requests.Submit)

	// Passwordless sign-in surface (no auth required)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/resend-link", deps.auth.ResendLink)
		r.Get("/callback", deps.auth.Callback)
		r.Post("/signout", deps.auth.SignOut)
	})

	// Admin surface; login is the only route outside the cookie gate
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", deps.admin.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.logger))
			r.Post("/logout", deps.admin.Logout)
			r.Get("/requests", deps.admin.ListRequests)
			r.Patch("/requests", deps.admin.UpdateStatus)
			r.Get("/metrics", deps.metrics.Metrics)
		})
	})

	// Entitlement-gated dashboard behind the user session
	r.Group(func(r chi.Router) {
		r.Use(middleware.UserSession(deps.sessions, deps.logger))
		r.Get("/api/v1/dashboard", deps.auth.Dashboard)
	})

	// 404 and 405 handlers
	r.NotFound(deps.root.NotFound)
	r.MethodNotAllowed(deps.root.MethodNotAllowed)

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
