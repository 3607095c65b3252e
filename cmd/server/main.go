// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	commentQueue "github.com/codecollab/reviewd/internal/comment"
	commentRepository "github.com/codecollab/reviewd/internal/comment/repository"
	"github.com/codecollab/reviewd/internal/config"
	"github.com/codecollab/reviewd/internal/database/database"
	"github.com/codecollab/reviewd/internal/database/migrate"
	"github.com/codecollab/reviewd/internal/health"
	"github.com/codecollab/reviewd/internal/lock"
	"github.com/codecollab/reviewd/internal/middleware"
	reviewRouter "github.com/codecollab/reviewd/internal/review/router"
	"github.com/codecollab/reviewd/internal/scm/p4cli"
	"github.com/codecollab/reviewd/pkg/logger"
)

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck // Sync on stderr is best-effort

	db, err := database.New()
	if err != nil {
		zapLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer database.Close(db) //nolint:errcheck // closing on shutdown

	if err := migrate.Migrate(db); err != nil {
		zapLogger.Fatalw("failed to run migrations", "error", err)
	}

	locks := newLockProvider(zapLogger)

	vcs := p4cli.New(
		config.GetEnv("P4_PORT", "localhost:1666"),
		config.GetEnv("P4_USER", "reviewd"),
		zapLogger,
	)

	comments := commentQueue.NewQueue(
		commentRepository.New(db),
		zapLogger,
		config.GetEnvInt("COMMENT_QUEUE_SIZE", commentQueue.DefaultQueueSize),
	)
	comments.Start()
	defer comments.Stop()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Logger(zapLogger))
	r.Use(middleware.Recovery(zapLogger))

	r.GET("/health", health.New(db, zapLogger).Check)
	reviewRouter.RegisterRoutes(r, db, &cfg, locks, vcs, comments, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLogger.Infow("starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Infow("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Errorw("forced shutdown", "error", err)
	}
}

// newLockProvider picks the commit lock backend. A configured Redis address
// selects the distributed provider, otherwise locking stays in-process.
func newLockProvider(zapLogger *zap.SugaredLogger) lock.Provider {
	addr := config.GetEnv("REDIS_ADDR", "")
	if addr == "" {
		zapLogger.Infow("using in-process commit locks")
		return lock.NewMemoryProvider()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetEnvInt("REDIS_DB", 0),
	})
	zapLogger.Infow("using redis commit locks", "addr", addr)
	return lock.NewRedisProvider(client)
}
