package watcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/PetCafe/internal/broker/messages"
	"github.com/BearBump/PetCafe/internal/cache/rediscache"
	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/pkg/errors"
)

type Repository interface {
	ClaimDueSessions(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.CheckoutSession, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Watcher polls the backend for pending bank-transfer orders and publishes
// what it finds to order.updated.
type Watcher struct {
	repo     Repository
	orders   OrderReader
	producer Producer
	rl       RateLimiter

	topic string
	token string

	planner *Planner
	now     func() time.Time

	pollInterval       time.Duration
	batchSize          int
	concurrency        int
	lease              time.Duration
	rateLimitPerMinute int64
	publishAttempts    int

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalClaimed        atomic.Int64
	totalProcessed      atomic.Int64
	totalConfirmed      atomic.Int64
	totalAbandoned      atomic.Int64
	totalErrors         atomic.Int64
	inFlight            atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, orders OrderReader, producer Producer, rl RateLimiter, topic string) *Watcher {
	return &Watcher{
		repo: repo, orders: orders, producer: producer, rl: rl, topic: topic,
		planner:            NewPlanner(DefaultPlannerConfig(), nil),
		now:                time.Now,
		pollInterval:       5 * time.Second,
		batchSize:          50,
		concurrency:        5,
		lease:              60 * time.Second,
		rateLimitPerMinute: 60,
		publishAttempts:    10,
		triggerCh:          make(chan struct{}, 1),
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (w *Watcher) WithSettings(pollInterval time.Duration, batchSize, concurrency int, lease time.Duration, rlPerMin int64) *Watcher {
	if pollInterval > 0 {
		w.pollInterval = pollInterval
	}
	if batchSize > 0 {
		w.batchSize = batchSize
	}
	if concurrency > 0 {
		w.concurrency = concurrency
	}
	if lease > 0 {
		w.lease = lease
	}
	if rlPerMin > 0 {
		w.rateLimitPerMinute = rlPerMin
	}
	return w
}

func (w *Watcher) WithPlanner(cfg PlannerConfig) *Watcher {
	w.planner = NewPlanner(cfg, nil)
	return w
}

// WithToken sets the bearer token presented to the backend.
func (w *Watcher) WithToken(token string) *Watcher {
	w.token = token
	return w
}

// Trigger forces an immediate cycle. Non-blocking.
func (w *Watcher) Trigger() {
	w.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	LastCycleAt    *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt  *time.Time `json:"lastTriggerAt,omitempty"`
	TotalClaimed   int64      `json:"totalClaimed"`
	TotalProcessed int64      `json:"totalProcessed"`
	TotalConfirmed int64      `json:"totalConfirmed"`
	TotalAbandoned int64      `json:"totalAbandoned"`
	TotalErrors    int64      `json:"totalErrors"`
	InFlight       int64      `json:"inFlight"`
	LastError      string     `json:"lastError,omitempty"`
}

func (w *Watcher) Stats() Stats {
	st := Stats{
		StartedAt:      time.Unix(0, w.startedAtUnixNano).UTC(),
		TotalClaimed:   w.totalClaimed.Load(),
		TotalProcessed: w.totalProcessed.Load(),
		TotalConfirmed: w.totalConfirmed.Load(),
		TotalAbandoned: w.totalAbandoned.Load(),
		TotalErrors:    w.totalErrors.Load(),
		InFlight:       w.inFlight.Load(),
	}
	if n := w.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := w.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	w.lastErrorMu.Lock()
	st.LastError = w.lastError
	w.lastErrorMu.Unlock()
	return st
}

func (w *Watcher) Run(ctx context.Context) error {
	t := time.NewTicker(w.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			w.runOnce(ctx)
		case <-w.triggerCh:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) setLastError(err error) {
	w.lastErrorMu.Lock()
	w.lastError = err.Error()
	w.lastErrorMu.Unlock()
}

func (w *Watcher) runOnce(ctx context.Context) {
	now := w.now().UTC()
	w.lastCycleUnixNano.Store(now.UnixNano())

	items, err := w.repo.ClaimDueSessions(ctx, now, w.batchSize, w.lease)
	if err != nil {
		slog.Error("claim due sessions", "error", err.Error())
		w.setLastError(err)
		return
	}
	w.totalClaimed.Add(int64(len(items)))

	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup
	for _, cs := range items {
		sem <- struct{}{}
		wg.Add(1)
		w.inFlight.Add(1)
		go func(cs *models.CheckoutSession) {
			defer func() {
				w.inFlight.Add(-1)
				<-sem
				wg.Done()
			}()
			if err := w.processOne(ctx, cs); err != nil {
				w.totalErrors.Add(1)
				w.setLastError(err)
				slog.Error("process checkout session", "order_id", cs.OrderID, "error", err.Error())
			}
			w.totalProcessed.Add(1)
		}(cs)
	}
	wg.Wait()
}

// check asks the backend once and decides the session's next state.
func (w *Watcher) check(ctx context.Context, cs *models.CheckoutSession, now time.Time) messages.OrderUpdated {
	msg := messages.OrderUpdated{OrderID: cs.OrderID, CheckedAt: now}

	if w.token != "" {
		ctx = cafeapi.WithToken(ctx, w.token)
	}
	order, err := w.orders.GetOrder(ctx, cs.OrderID)
	if err != nil {
		e := err.Error()
		msg.Error = &e
		msg.NextCheckAt = now.Add(w.planner.BackoffDelay(cs.CheckCount + 1))
		return msg
	}

	msg.OrderStatus = order.Status
	msg.NextCheckAt = now.Add(w.planner.NextCheckDelay())
	switch {
	case order.Status == models.OrderStatusPaid:
		msg.Phase = models.PhaseConfirmed
	case order.Status == models.OrderStatusCancelled, w.planner.Stale(cs.CreatedAt, now):
		msg.Phase = models.PhaseAbandoned
	default:
		msg.Phase = models.PhasePending
	}
	return msg
}

func (w *Watcher) processOne(ctx context.Context, cs *models.CheckoutSession) error {
	now := w.now().UTC()

	if w.rl != nil && w.rateLimitPerMinute > 0 {
		minuteKey := rediscache.OrderPollKey(now)
		allowed, n, err := w.rl.Allow(ctx, minuteKey, w.rateLimitPerMinute, rediscache.OrderPollWindow)
		if err != nil {
			return err
		}
		if !allowed {
			// Minute budget spent: slow down a little before calling anyway.
			slog.Warn("rate limit exceeded", "key", minuteKey, "count", n)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}

	msg := w.check(ctx, cs, now)
	switch msg.Phase {
	case models.PhaseConfirmed:
		w.totalConfirmed.Add(1)
	case models.PhaseAbandoned:
		w.totalAbandoned.Add(1)
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal kafka msg")
	}

	// Kafka may lag behind the worker on a fresh docker compose.
	var pubErr error
	for i := 0; i < w.publishAttempts; i++ {
		if pubErr = w.producer.Publish(ctx, w.topic, []byte(cs.OrderID), b); pubErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(150*(i+1)) * time.Millisecond):
		}
	}
	return errors.Wrap(pubErr, "publish order.updated")
}
