package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BearBump/PetCafe/config"
	"github.com/BearBump/PetCafe/internal/cache/rediscache"
	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	apifake "github.com/BearBump/PetCafe/internal/integrations/cafeapi/fake"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/watcher"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct{}

func (r *fakeRepo) ClaimDueSessions(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.CheckoutSession, error) {
	return []*models.CheckoutSession{}, nil
}

type noopProducer struct{}

func (p noopProducer) Publish(ctx context.Context, topic string, key, value []byte) error { return nil }

func testFactories(closed *bool) watcherFactories {
	return watcherFactories{
		newStorage: func(cfg *config.Config) (watcher.Repository, func(), error) {
			return &fakeRepo{}, func() { *closed = true }, nil
		},
		newProducer:    func(cfg *config.Config) watcher.Producer { return noopProducer{} },
		newRateLimiter: func(cfg *config.Config) watcher.RateLimiter { return nil },
		newOrders:      func(cfg *config.Config) watcher.OrderReader { return apifake.New() },
	}
}

func TestDefaultWatcherFactories_SelectOrders(t *testing.T) {
	f := defaultWatcherFactories()

	_, ok := f.newOrders(&config.Config{}).(*apifake.Backend)
	require.True(t, ok)

	_, ok = f.newOrders(&config.Config{Cafe: config.CafeConfig{APIBaseURL: "http://api.local"}}).(*cafeapi.Client)
	require.True(t, ok)

	cfg := &config.Config{
		Kafka: config.KafkaConfig{Host: "localhost", Port: 9092},
		Redis: config.RedisConfig{Host: "localhost", Port: 6379},
	}
	require.NotNil(t, f.newProducer(cfg))
	_, ok = f.newRateLimiter(cfg).(*rediscache.RateLimiter)
	require.True(t, ok)
}

func TestPlannerConfig_FromYAMLValues(t *testing.T) {
	pc := plannerConfig(config.WatcherConfig{AbandonAfterMinutes: 15, NextCheckSeconds: 30, Backoff2Seconds: 90})
	require.Equal(t, 15*time.Minute, pc.AbandonAfter)
	require.Equal(t, 30*time.Second, pc.NextCheck)
	require.Equal(t, 90*time.Second, pc.Backoff2)
	require.Zero(t, pc.Backoff1)
}

func TestRunOrderWatcher_ContextCanceled(t *testing.T) {
	closed := false
	cfg := &config.Config{Watcher: config.WatcherConfig{PollIntervalSeconds: 1}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := RunOrderWatcher(ctx, cfg, "", testFactories(&closed))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, closed)
}

func TestRunWatcherHTTPServer_Endpoints(t *testing.T) {
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	cfg := &config.Config{Watcher: config.WatcherConfig{BatchSize: 7, ServiceToken: "secret"}}
	w, _, err := newWatcher(cfg, testFactories(new(bool)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runWatcherHTTPServer(ctx, watcherHTTPOpts{
			httpAddr:    "127.0.0.1:0",
			swaggerPath: sw,
			onListen:    func(addr string) { addrCh <- addr },
			watcher:     w,
			cfg:         cfg,
		})
	}()
	base := "http://" + <-addrCh

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/config")
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	_ = resp.Body.Close()
	require.Equal(t, float64(7), out["batchSize"])
	require.NotContains(t, out, "serviceToken")

	resp, err = http.Post(base+"/trigger", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/stats")
	require.NoError(t, err)
	var st watcher.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	_ = resp.Body.Close()
	require.NotNil(t, st.LastTriggerAt)

	cancel()
	require.Error(t, <-errCh)
}
