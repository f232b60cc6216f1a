package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminpanel/internal/api"
	"adminpanel/internal/config"
	"adminpanel/internal/devserver"
	"adminpanel/internal/middleware"
	"adminpanel/internal/session"
	"adminpanel/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger.InitLogger(cfg.App.Environment)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("devserver startup failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The refresh allow-list and the rate limiter share redis when configured.
	var (
		rdb   *redis.Client
		store session.Store = session.NewMemoryStore()
	)
	if cfg.Session.Backend == "redis" {
		var err error
		rdb, err = initRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.Session.KeyPrefix+"dev:", cfg.Dev.RefreshTokenTTL)
	}

	limiter := middleware.NewRateLimiter(rdb, cfg.Dev.RequestsPerSecond, cfg.Session.KeyPrefix+"ratelimit:")
	go pruneLimiter(ctx, limiter)

	r := api.RegisterRoutes(api.RouterConfig{
		Tokens:   devserver.NewTokenIssuer(store, cfg.Dev.SigningKey, cfg.Dev.AccessTokenTTL, cfg.Dev.RefreshTokenTTL),
		Accounts: devserver.DefaultAccounts(),
		Admins:   devserver.DefaultAdmins(cfg.Dev.SeedAdmins, time.Now()),
		Limiter:  limiter,
		Origins:  cfg.Dev.Origins,
		BasePath: "/admin",
	})

	srv := &http.Server{
		Addr:    cfg.Dev.Port,
		Handler: r,
	}

	go func() {
		logger.Info("devserver starting",
			zap.String("addr", cfg.Dev.Port),
			zap.String("session_backend", cfg.Session.Backend),
			zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down devserver...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("devserver exited properly")
	return nil
}

func pruneLimiter(ctx context.Context, l *middleware.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Prune(10 * time.Minute); n > 0 {
				logger.Debug("pruned idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}

func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
