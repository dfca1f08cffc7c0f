// Package main is the entrypoint for the avatarly web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/avatarly/avatarly/internal/cache"
	"github.com/avatarly/avatarly/internal/config"
	"github.com/avatarly/avatarly/internal/handler"
	"github.com/avatarly/avatarly/internal/metrics"
	"github.com/avatarly/avatarly/internal/repository"
	"github.com/avatarly/avatarly/internal/server"
	"github.com/avatarly/avatarly/internal/service"
	"github.com/avatarly/avatarly/internal/upload"
)

const (
	startupTimeout       = 10 * time.Second
	migrateRetryInterval = 5 * time.Second
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Optional .env for local development; real environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)

	// Document store. The pool dials lazily, so an unreachable database is
	// logged and requests fail until it comes back and migrations have been
	// applied by the background retry.
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("configure database: %s", sanitizeError(err, cfg.DatabaseURL))
	}
	stopMigrations := connectDatabase(ctx, cfg, repo, logger)

	userCache := connectCache(ctx, cfg, logger)

	storage, err := newAvatarStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("configure avatar storage: %w", err)
	}
	uploader := upload.NewUploader(storage, logger)

	recorder := metrics.NewInMemory()
	accounts := service.NewAccountService(repo, uploader, recorder, logger)

	var cacheChecker handler.HealthChecker
	if userCache != nil {
		accounts.WithCache(userCache)
		cacheChecker = userCache
	}

	router := server.NewRouter(server.Deps{
		Logger:        logger,
		IsDevelopment: cfg.IsDevelopment(),
		MaxBodySize:   cfg.MaxUploadSize,
		Pages:         handler.NewPageHandler(cfg.PublicDir, cfg.AssetsDir),
		Accounts:      handler.NewAccountHandler(accounts, logger, cfg.MaxUploadSize),
		Uploads:       uploader,
		Health:        handler.NewHealthHandler(repo, cacheChecker),
		Metrics:       handler.NewMetricsHandler(recorder),
	})

	srv := server.New(router, server.Options{
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("migrations", func(ctx context.Context) error {
		stopMigrations()
		return nil
	})
	if userCache != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return userCache.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"avatar_storage", cfg.AvatarStorage,
		"cache_enabled", userCache != nil,
	)

	return srv.Run(ctx)
}

// connectDatabase pings the store and applies migrations. Failures are
// logged and startup continues; failed migrations are retried in the
// background until they succeed or the returned stop func is called.
func connectDatabase(ctx context.Context, cfg *config.Config, repo *repository.Repository, logger *slog.Logger) (stop func()) {
	pingCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	reachable := true
	if err := repo.Ping(pingCtx); err != nil {
		reachable = false
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
	} else {
		logger.Info("connected to database", slog.String("database_url", redactURL(cfg.DatabaseURL)))
	}

	if !cfg.DBMigrate {
		return func() {}
	}

	migrate := func(ctx context.Context) error {
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return errors.New(sanitizeError(err, cfg.DatabaseURL))
		}
		return nil
	}

	if reachable {
		err := migrate(pingCtx)
		if err == nil {
			logger.Info("migrations applied")
			return func() {}
		}
		logger.Error("failed to apply migrations", slog.String("error", err.Error()))
	}

	bgCtx, stopRetry := context.WithCancel(ctx)
	go func() {
		_ = migrateUntilApplied(bgCtx, migrate, migrateRetryInterval, logger)
	}()
	return stopRetry
}

// migrateUntilApplied calls migrate until it succeeds or ctx is done.
func migrateUntilApplied(ctx context.Context, migrate func(context.Context) error, interval time.Duration, logger *slog.Logger) error {
	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		err := migrate(attemptCtx)
		cancel()
		if err == nil {
			logger.Info("migrations applied", slog.Int("attempt", attempt))
			return nil
		}
		logger.Warn("migrations pending, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", interval),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// connectCache returns nil when the cache is disabled or unreachable.
func connectCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cache.Cache {
	if cfg.RedisURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	c, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("user cache disabled: failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return nil
	}
	logger.Info("connected to Redis")
	return c
}

func newAvatarStorage(ctx context.Context, cfg *config.Config) (upload.Storage, error) {
	switch cfg.AvatarStorage {
	case config.StorageS3:
		return upload.NewS3Storage(ctx, upload.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return upload.NewDiskStorage(cfg.UploadDir)
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

	q := parsed.Query()
	if q.Has("password") {
		q.Set("password", "redacted")
		parsed.RawQuery = q.Encode()
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
