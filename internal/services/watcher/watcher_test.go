package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/PetCafe/internal/broker/messages"
	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	mu    sync.Mutex
	topic string
	key   []byte
	value []byte
	calls int
	errs  []error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.topic, p.key, p.value = topic, key, value
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return err
	}
	return nil
}

func (p *fakeProducer) last(t *testing.T) messages.OrderUpdated {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	var msg messages.OrderUpdated
	require.NoError(t, json.Unmarshal(p.value, &msg))
	return msg
}

type fakeRL struct {
	allowed bool
	err     error
	keys    []string
}

func (r *fakeRL) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	r.keys = append(r.keys, key)
	return r.allowed, 1, r.err
}

type fakeOrders struct {
	order *models.Order
	err   error
	token string
}

func (o *fakeOrders) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o.token = cafeapi.TokenFromContext(ctx)
	if o.err != nil {
		return nil, o.err
	}
	out := *o.order
	out.ID = id
	return &out, nil
}

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestWatcher(orders OrderReader, fp *fakeProducer, rl RateLimiter) *Watcher {
	w := New(nil, orders, fp, rl, "order.updated")
	w.planner = NewPlanner(PlannerConfig{NextCheck: time.Minute, AbandonAfter: 30 * time.Minute}, nil)
	w.now = func() time.Time { return fixedNow }
	return w
}

func TestWatcher_processOne_paidConfirms(t *testing.T) {
	fp := &fakeProducer{}
	rl := &fakeRL{allowed: true}
	w := newTestWatcher(&fakeOrders{order: &models.Order{Status: models.OrderStatusPaid}}, fp, rl)

	cs := &models.CheckoutSession{OrderID: "ord-1", CreatedAt: fixedNow.Add(-time.Minute)}
	require.NoError(t, w.processOne(context.Background(), cs))

	require.Equal(t, 1, fp.calls)
	require.Equal(t, "order.updated", fp.topic)
	require.Equal(t, []byte("ord-1"), fp.key)
	msg := fp.last(t)
	require.Equal(t, models.PhaseConfirmed, msg.Phase)
	require.Equal(t, models.OrderStatusPaid, msg.OrderStatus)
	require.Nil(t, msg.Error)
	require.Equal(t, []string{"rl:cafeapi:orders:202506011000"}, rl.keys)
	require.Equal(t, int64(1), w.Stats().TotalConfirmed)
}

func TestWatcher_processOne_staleAbandons(t *testing.T) {
	fp := &fakeProducer{}
	w := newTestWatcher(&fakeOrders{order: &models.Order{Status: models.OrderStatusPending}}, fp, nil)

	cs := &models.CheckoutSession{OrderID: "ord-2", CreatedAt: fixedNow.Add(-31 * time.Minute)}
	require.NoError(t, w.processOne(context.Background(), cs))
	require.Equal(t, models.PhaseAbandoned, fp.last(t).Phase)
}

func TestWatcher_processOne_stillPending(t *testing.T) {
	fp := &fakeProducer{}
	w := newTestWatcher(&fakeOrders{order: &models.Order{Status: models.OrderStatusPending}}, fp, nil)

	cs := &models.CheckoutSession{OrderID: "ord-3", CreatedAt: fixedNow.Add(-5 * time.Minute)}
	require.NoError(t, w.processOne(context.Background(), cs))
	msg := fp.last(t)
	require.Equal(t, models.PhasePending, msg.Phase)
	require.Equal(t, fixedNow.Add(time.Minute), msg.NextCheckAt.UTC())
}

func TestWatcher_processOne_errorBackoff(t *testing.T) {
	fp := &fakeProducer{}
	w := newTestWatcher(&fakeOrders{err: errors.New("boom")}, fp, nil)

	cs := &models.CheckoutSession{OrderID: "ord-4", CheckCount: 2, CreatedAt: fixedNow}
	require.NoError(t, w.processOne(context.Background(), cs))
	msg := fp.last(t)
	require.NotNil(t, msg.Error)
	require.Equal(t, "boom", *msg.Error)
	require.Empty(t, msg.Phase)
	require.Equal(t, fixedNow.Add(2*time.Minute), msg.NextCheckAt.UTC())
}

func TestWatcher_processOne_forwardsToken(t *testing.T) {
	orders := &fakeOrders{order: &models.Order{Status: models.OrderStatusPending}}
	w := newTestWatcher(orders, &fakeProducer{}, nil).WithToken("svc-token")

	require.NoError(t, w.processOne(context.Background(), &models.CheckoutSession{OrderID: "ord-5"}))
	require.Equal(t, "svc-token", orders.token)
}

func TestWatcher_processOne_publishRetries(t *testing.T) {
	fp := &fakeProducer{errs: []error{errors.New("not ready"), errors.New("not ready")}}
	w := newTestWatcher(&fakeOrders{order: &models.Order{Status: models.OrderStatusPaid}}, fp, nil)

	require.NoError(t, w.processOne(context.Background(), &models.CheckoutSession{OrderID: "ord-6"}))
	require.Equal(t, 3, fp.calls)
}

func TestWatcher_processOne_rateLimiterError(t *testing.T) {
	fp := &fakeProducer{}
	w := newTestWatcher(&fakeOrders{order: &models.Order{}}, fp, &fakeRL{err: errors.New("redis down")})

	require.Error(t, w.processOne(context.Background(), &models.CheckoutSession{OrderID: "ord-7"}))
	require.Equal(t, 0, fp.calls)
}

func TestWatcher_WithSettings(t *testing.T) {
	w := New(nil, nil, &fakeProducer{}, nil, "t").
		WithSettings(5*time.Second, 7, 9, 11*time.Second, 13)
	require.Equal(t, 5*time.Second, w.pollInterval)
	require.Equal(t, 7, w.batchSize)
	require.Equal(t, 9, w.concurrency)
	require.Equal(t, 11*time.Second, w.lease)
	require.Equal(t, int64(13), w.rateLimitPerMinute)
}

type fakeRepo struct {
	mu    sync.Mutex
	calls int
	items []*models.CheckoutSession
}

func (r *fakeRepo) ClaimDueSessions(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.CheckoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	items := r.items
	r.items = nil
	return items, nil
}

func TestWatcher_Run_ProcessesClaimedAndStops(t *testing.T) {
	repo := &fakeRepo{items: []*models.CheckoutSession{{OrderID: "a"}, {OrderID: "b"}}}
	fp := &fakeProducer{}
	w := New(repo, &fakeOrders{order: &models.Order{Status: models.OrderStatusPaid}}, fp, nil, "t").
		WithSettings(5*time.Millisecond, 10, 2, time.Second, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	st := w.Stats()
	require.Equal(t, int64(2), st.TotalClaimed)
	require.Equal(t, int64(2), st.TotalProcessed)
	require.Equal(t, int64(2), st.TotalConfirmed)
	require.NotNil(t, st.LastCycleAt)
}
