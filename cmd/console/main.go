package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminpanel/client"
	"adminpanel/internal/chart"
	"adminpanel/internal/config"
	"adminpanel/internal/metrics"
	"adminpanel/internal/notify"
	"adminpanel/internal/resource"
	"adminpanel/internal/service"
	"adminpanel/internal/session"
	"adminpanel/pkg/constraints"
	"adminpanel/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger.InitLogger(cfg.App.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("console failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sess := session.New(store)
	svcs := newServices(cfg, sess)

	if sess.ConsumePasswordChanged(ctx) {
		logger.Info("password was changed, clearing stored session")
		if err := sess.Clear(ctx); err != nil {
			return err
		}
	}
	if !sess.IsAuthenticated(ctx) {
		if err := signIn(ctx, cfg.Console, svcs.Auth); err != nil {
			return err
		}
	}

	cache := resource.NewQueryCache(resource.Policy{FreshFor: cfg.Cache.FreshFor, GCAfter: cfg.Cache.GCAfter}, nil)
	go cache.RunJanitor(ctx, time.Minute)

	// Toasts go through a hub so more views can subscribe; the log is one.
	hub := notify.NewHub(100)
	go hub.Run(ctx)
	toasts, unsubscribe := hub.Subscribe(16)
	defer unsubscribe()
	go notify.Forward(toasts, notify.LogNotifier{})
	var notifier notify.Notifier = hub
	admins := resource.NewAdmins(svcs.Admins, cache, notifier, service.ListParams{Page: 1, Limit: 10})
	defer admins.List.Close()
	if err := admins.List.Fetch(ctx); err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	state := admins.List.State()
	logger.Info("admins loaded",
		zap.Int("count", len(state.Items)),
		zap.Int("total", state.Pagination.Total))

	if stats, err := svcs.Dashboard.Stats(ctx); err != nil {
		logger.Warn("dashboard stats unavailable", zap.String("message", client.Message(err)))
	} else {
		logger.Info("dashboard stats", zap.Any("stats", stats.Data))
	}

	queue := resource.NewVerificationQueue(svcs.FaceVerifications, cache, notifier, cfg.Cache.PollInterval)
	if res, err := queue.Pending(ctx); err != nil {
		logger.Warn("verification queue unavailable", zap.String("message", client.Message(err)))
	} else {
		logger.Info("pending verifications", zap.Int("count", len(res.Data.Items)))
	}

	return revenueChart(ctx, cfg, svcs.Dashboard)
}

func newServices(cfg *config.Config, sess *session.Session) *service.Services {
	c := client.New(client.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		UseMockData:       cfg.API.UseMockData,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	}, sess,
		client.WithObserver(metrics.NewPrometheusObserver()),
		client.WithSessionExpired(func() {
			logger.Warn("session expired, sign in again")
		}),
	)
	return service.NewServices(c, service.WithAnalyticsTimeout(cfg.API.AnalyticsTimeout))
}

func signIn(ctx context.Context, cfg config.ConsoleConfig, auth *service.AuthService) error {
	res, err := auth.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return fmt.Errorf("login: %s", client.Message(err))
	}
	if !res.Success {
		return fmt.Errorf("login rejected: %s", res.Message)
	}
	if res.Data.RequiresTwoFactor {
		if cfg.TwoFactorCode == "" {
			return fmt.Errorf("two-factor code required, set ADMIN_CONSOLE_TWO_FACTOR_CODE")
		}
		if _, err := auth.VerifyTwoFactor(ctx, cfg.TwoFactorCode); err != nil {
			return fmt.Errorf("verify two-factor: %s", client.Message(err))
		}
	}
	logger.Info("signed in", zap.String("email", cfg.Email))
	return nil
}

// revenueChart loads this month and then switches to the yearly view, which
// goes through the debounce.
func revenueChart(ctx context.Context, cfg *config.Config, dash *service.DashboardService) error {
	results := make(chan chart.Result, 1)
	loader := chart.NewLoader(chart.SeriesLoader(dash.Revenue), func(r chart.Result) {
		results <- r
	}, chart.WithDebounce(cfg.Chart.Debounce))
	defer loader.Close()

	now := time.Now()
	filters := []chart.Filter{
		{Range: constraints.RangeDaily, Month: int(now.Month()), Year: now.Year()},
		{Range: constraints.RangeMonthly, Year: now.Year()},
	}
	for _, f := range filters {
		loader.SetFilter(f)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-results:
			fields := []zap.Field{
				zap.String("range", string(r.Filter.Range)),
				zap.Int("points", len(r.Points)),
				zap.Bool("synthetic", r.Synthetic),
			}
			if r.Err != nil {
				fields = append(fields, zap.Error(r.Err))
			}
			logger.Info("revenue chart", fields...)
		}
	}
	return nil
}

func initStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	if cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return session.NewRedisStore(rdb, cfg.Session.KeyPrefix, 0), func() { rdb.Close() }, nil
}
