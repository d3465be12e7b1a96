package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/PetCafe/config"
	"github.com/BearBump/PetCafe/internal/broker/kafka"
	"github.com/BearBump/PetCafe/internal/cache/rediscache"
	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	apifake "github.com/BearBump/PetCafe/internal/integrations/cafeapi/fake"
	"github.com/BearBump/PetCafe/internal/services/watcher"
	"github.com/BearBump/PetCafe/internal/storage/pgconsole"
	"golang.org/x/sync/errgroup"
)

type watcherFactories struct {
	newStorage     func(cfg *config.Config) (repo watcher.Repository, closeFn func(), err error)
	newProducer    func(cfg *config.Config) watcher.Producer
	newRateLimiter func(cfg *config.Config) watcher.RateLimiter
	newOrders      func(cfg *config.Config) watcher.OrderReader
}

func defaultWatcherFactories() watcherFactories {
	return watcherFactories{
		newStorage: func(cfg *config.Config) (watcher.Repository, func(), error) {
			st, err := pgconsole.New(cfg.PostgresDSN())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) watcher.Producer {
			return kafka.NewProducer(cfg.KafkaBrokers())
		},
		newRateLimiter: func(cfg *config.Config) watcher.RateLimiter {
			return rediscache.NewRateLimiter(cfg.RedisAddr())
		},
		newOrders: func(cfg *config.Config) watcher.OrderReader {
			// No API address: run against the in-memory backend, same as the console.
			if cfg.Cafe.APIBaseURL == "" {
				return apifake.NewSeeded()
			}
			return cafeapi.New(cfg.Cafe.APIBaseURL, time.Duration(cfg.Cafe.APIReadTimeoutSeconds)*time.Second)
		},
	}
}

func secondsOr(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func plannerConfig(cfg config.WatcherConfig) watcher.PlannerConfig {
	pc := watcher.PlannerConfig{
		NextCheck: secondsOr(cfg.NextCheckSeconds, 0),
		Backoff1:  secondsOr(cfg.Backoff1Seconds, 0),
		Backoff2:  secondsOr(cfg.Backoff2Seconds, 0),
		Backoff3:  secondsOr(cfg.Backoff3Seconds, 0),
		Backoff4:  secondsOr(cfg.Backoff4Seconds, 0),
		Jitter:    watcher.DefaultPlannerConfig().Jitter,
	}
	if cfg.AbandonAfterMinutes > 0 {
		pc.AbandonAfter = time.Duration(cfg.AbandonAfterMinutes) * time.Minute
	}
	return pc
}

func newWatcher(cfg *config.Config, f watcherFactories) (*watcher.Watcher, func(), error) {
	topic := cfg.Kafka.OrderUpdatedTopicName
	if topic == "" {
		topic = "order.updated"
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	w := watcher.New(repo, f.newOrders(cfg), f.newProducer(cfg), f.newRateLimiter(cfg), topic).
		WithSettings(
			secondsOr(cfg.Watcher.PollIntervalSeconds, 5*time.Second),
			cfg.Watcher.BatchSize,
			cfg.Watcher.Concurrency,
			secondsOr(cfg.Watcher.LeaseSeconds, 60*time.Second),
			int64(cfg.Watcher.RateLimitPerMinute),
		).
		WithPlanner(plannerConfig(cfg.Watcher)).
		WithToken(cfg.Watcher.ServiceToken)
	return w, closeFn, nil
}

// RunOrderWatcher runs the poll loop and its ops HTTP server until ctx ends.
func RunOrderWatcher(ctx context.Context, cfg *config.Config, swaggerPath string, f watcherFactories) error {
	w, closeFn, err := newWatcher(cfg, f)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("order watcher started")
		return w.Run(gctx)
	})
	if swaggerPath != "" {
		g.Go(func() error {
			return runWatcherHTTPServer(gctx, watcherHTTPOpts{
				httpAddr:    cfg.Watcher.HTTPAddr,
				swaggerPath: swaggerPath,
				watcher:     w,
				cfg:         cfg,
			})
		})
	}
	return g.Wait()
}
