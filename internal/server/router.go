package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/handler"
	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/middleware"
	"github.com/apilab/apilab/internal/repository"
	"github.com/apilab/apilab/internal/service"
)

// RouterConfig holds everything the HTTP router is assembled from.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics *metrics.InMemoryRecorder

	Store         repository.Store
	Authenticator *auth.Authenticator
	Seeder        service.Resetter

	// Publisher and Live are nil when the live log stream is disabled.
	Publisher middleware.RequestLogPublisher
	Live      LiveStream
	// LogStreamMaxLen is the configured stream length; it caps live-log reads.
	LogStreamMaxLen int64

	IsDevelopment      bool
	MaxRequestBodySize int64
	CORSOrigins        []string
	ChaosMaxLatency    time.Duration
	AdminRoleRequired  bool
	StaticDir          string

	// ChaosRand overrides the chaos sampler; nil uses math/rand/v2.
	ChaosRand middleware.Rand
}

// LiveStream reads the live log stream and reports its health.
type LiveStream interface {
	handler.LiveLogReader
	handler.HealthChecker
}

// NewRouter builds the application router. Chaos runs outside the request
// logger, so simulated failures never reach the request log.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewInMemory()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.Chaos(middleware.ChaosConfig{
		Logger:     logger,
		Metrics:    recorder,
		MaxLatency: cfg.ChaosMaxLatency,
		Rand:       cfg.ChaosRand,
	}))
	r.Use(middleware.RequestLogger(middleware.RequestLogConfig{
		Logger:    logger,
		Store:     cfg.Store,
		Tokens:    cfg.Authenticator,
		Metrics:   recorder,
		Publisher: cfg.Publisher,
	}))
	// Handler panics become a logged 500 before the request logger sees them.
	r.Use(middleware.Recoverer(logger))

	h := handler.New(cfg.StaticDir)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	var live handler.LiveLogReader
	var redisCheck handler.HealthChecker
	if cfg.Live != nil {
		live, redisCheck = cfg.Live, cfg.Live
	}

	callers := handler.NewCallerResolver(cfg.Authenticator, cfg.Store, recorder, logger.With("component", "auth"))
	healthHandler := handler.NewHealthHandler(cfg.Store, redisCheck)
	authHandler := handler.NewAuthHandler(cfg.Authenticator, callers, recorder, logger.With("component", "handler.auth"))
	todoHandler := handler.NewTodoHandler(
		service.NewTodoService(cfg.Store, recorder),
		callers,
		logger.With("component", "handler.todo"),
	)
	adminHandler := handler.NewAdminHandler(
		service.NewAdminService(cfg.Store, cfg.Seeder),
		callers,
		handler.AdminConfig{AdminRoleRequired: cfg.AdminRoleRequired, Live: live, LiveMaxLen: cfg.LogStreamMaxLen},
		logger.With("component", "handler.admin"),
	)
	scenarioHandler := handler.NewScenarioHandler()
	metricsHandler := handler.NewMetricsHandler(recorder, callers)

	r.Get("/", h.Index)
	r.Handle("/static/*", h.Static())
	r.Get("/readyz", healthHandler.Readyz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/me", authHandler.Me)

		r.Route("/todos", func(r chi.Router) {
			r.MethodNotAllowed(todoHandler.MethodNotAllowed)

			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Get("/{id:[0-9]+}", todoHandler.Get)
			r.Put("/{id:[0-9]+}", todoHandler.Update)
			r.Patch("/{id:[0-9]+}", todoHandler.Update)
			r.Delete("/{id:[0-9]+}", todoHandler.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", adminHandler.Users)
			r.Get("/logs", adminHandler.Logs)
			r.Get("/logs/live", adminHandler.LiveLogs)
			r.Get("/db/tables/{name}", adminHandler.Table)
			r.Post("/reset", adminHandler.Reset)
			r.Get("/metrics", metricsHandler.Metrics)
		})

		r.Get("/scenarios", scenarioHandler.List)
		r.Get("/scenarios/{id}", scenarioHandler.Get)

		r.Get("/postman/collection", h.Postman)
	})

	return r
}
