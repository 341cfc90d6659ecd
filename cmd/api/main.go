// Package main is the entrypoint for the API Lab server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/config"
	"github.com/apilab/apilab/internal/logstream"
	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/repository"
	"github.com/apilab/apilab/internal/seed"
	"github.com/apilab/apilab/internal/server"
)

func main() {
	ctx := context.Background()

	if err := config.LoadDotenv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	store, err := repository.Open(ctx, cfg.DatabaseURL, repository.Options{Migrate: true})
	if err != nil {
		logger.Error(
			"failed to open database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", slog.String("database_url", redactURL(cfg.DatabaseURL)))

	seeder := seed.NewSeeder(store, logger.With("component", "seed"))
	if cfg.AutoSeed {
		seeded, err := seeder.EnsureSeeded(ctx)
		if err != nil {
			logger.Error("failed to seed database", "error", err)
			store.Close()
			os.Exit(1)
		}
		if seeded {
			logger.Info("seeded empty database",
				"admin", seed.AdminEmail,
				"user", seed.UserEmail,
			)
		}
	}

	recorder := metrics.NewInMemory()
	authn := auth.NewAuthenticator(store, auth.NewTokenIssuer(cfg.JWTSecretKey))

	routerCfg := server.RouterConfig{
		Logger:             logger,
		Metrics:            recorder,
		Store:              store,
		Authenticator:      authn,
		Seeder:             seeder,
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CORSOrigins:        cfg.GetCORSAllowedOrigins(),
		ChaosMaxLatency:    cfg.ChaosMaxLatency,
		AdminRoleRequired:  cfg.AdminRoleRequired,
		StaticDir:          cfg.StaticDir,
	}

	var closeRedis func() error
	if cfg.RedisURL != "" {
		redisClient, err := logstream.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			store.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis, live log stream enabled")

		routerCfg.Publisher = logstream.NewPublisher(redisClient, cfg.LogStreamMaxLen, logger, recorder)
		routerCfg.Live = logstream.NewReader(redisClient)
		routerCfg.LogStreamMaxLen = cfg.LogStreamMaxLen
		closeRedis = redisClient.Close
	}

	srv := server.New(server.NewRouter(routerCfg), server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("database", func(context.Context) error {
		store.Close()
		return nil
	})
	if closeRedis != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return closeRedis()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"chaos_max_latency", cfg.ChaosMaxLatency,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

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
