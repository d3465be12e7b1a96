package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/PetCafe/internal/broker/messages"
	"github.com/BearBump/PetCafe/internal/cache/rediscache"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type blobStoreMock struct {
	mock.Mock
}

func (m *blobStoreMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Bool(1), args.Error(2)
}

func (m *blobStoreMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *blobStoreMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	t.Cleanup(func() { _ = rc.Close() })
	return NewStore(rc, time.Hour, nil, ""), mr
}

var latte = models.CartItem{ID: "p1", Name: "Cà phê sữa", Price: 20000, Quantity: 1}

func TestStore_AddMergesSameID(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "acc-1", latte)
	require.NoError(t, err)
	c, err := s.Add(ctx, "acc-1", latte)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	require.Equal(t, 2, c.Items[0].Quantity)
	require.Equal(t, int64(40000), c.Total)

	raw, err := mr.Get(KeyPrefix + "acc-1")
	require.NoError(t, err)
	var stored []models.CartItem
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Equal(t, c.Items, stored)
	require.Greater(t, mr.TTL(KeyPrefix+"acc-1"), time.Duration(0))
}

func TestStore_DecreaseFloorsAtOne(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "acc-1", latte)
	require.NoError(t, err)
	c, err := s.Decrease(ctx, "acc-1", "p1")
	require.NoError(t, err)
	require.Equal(t, 1, c.Items[0].Quantity)

	c, err = s.Increase(ctx, "acc-1", "p1")
	require.NoError(t, err)
	require.Equal(t, 2, c.Items[0].Quantity)

	_, err = s.Increase(ctx, "acc-1", "nope")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestStore_RemoveAndClear(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "acc-1", latte)
	require.NoError(t, err)
	_, err = s.AddService(ctx, "acc-1", models.Service{ID: "5", Name: "Tắm", Price: 100000}, "2025-07-01")
	require.NoError(t, err)

	c, err := s.Remove(ctx, "acc-1", "p1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.Equal(t, "svc-5", c.Items[0].ID)
	require.Equal(t, "2025-07-01", c.Items[0].BookingDate)

	c, err = s.Clear(ctx, "acc-1")
	require.NoError(t, err)
	require.Empty(t, c.Items)
	require.False(t, mr.Exists(KeyPrefix+"acc-1"))
}

func TestStore_InvalidInput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "acc-1", models.CartItem{ID: "", Name: "x"})
	require.ErrorIs(t, err, ErrInvalidItem)
	_, err = s.Add(ctx, "", latte)
	require.ErrorIs(t, err, ErrNoAccount)
	_, err = s.AddService(ctx, "acc-1", models.Service{ID: "5", Name: "Tắm"}, "01/07/2025")
	require.ErrorIs(t, err, ErrInvalidItem)
}

func TestStore_CorruptBlobIsEmpty(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set(KeyPrefix+"acc-1", "[{broken"))

	c, err := s.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Empty(t, c.Items)

	c, err = s.Add(context.Background(), "acc-1", latte)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
}

func TestStore_FailedReadDoesNotClobber(t *testing.T) {
	blobs := &blobStoreMock{}
	blobs.On("Get", mock.Anything, KeyPrefix+"acc-1").Return(nil, false, errors.New("redis down"))
	s := NewStore(blobs, time.Hour, nil, "")

	_, err := s.Add(context.Background(), "acc-1", latte)
	require.ErrorIs(t, err, ErrUnavailable)
	blobs.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestStore_SubscribeAndPublish(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	defer rc.Close()

	pub := &publisherMock{}
	pub.On("Publish", mock.Anything, "cart.updated", []byte("acc-1"), mock.Anything).Return(nil)
	s := NewStore(rc, 0, pub, "cart.updated")

	var mu sync.Mutex
	var seen []models.Cart
	cancel := s.Subscribe("acc-1", func(c models.Cart) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c)
	})
	other := s.Subscribe("acc-2", func(models.Cart) { t.Error("wrong account notified") })
	defer other()

	_, err := s.Add(context.Background(), "acc-1", latte)
	require.NoError(t, err)
	cancel()
	_, err = s.Add(context.Background(), "acc-1", latte)
	require.NoError(t, err)

	require.Len(t, seen, 1)
	require.Equal(t, int64(20000), seen[0].Total)
	pub.AssertNumberOfCalls(t, "Publish", 2)

	var msg messages.CartUpdated
	require.NoError(t, json.Unmarshal(pub.Calls[1].Arguments.Get(3).([]byte), &msg))
	require.Equal(t, s.Origin(), msg.Origin)
	require.Equal(t, 2, msg.Items[0].Quantity)
}

func TestStore_PublishFailureDoesNotFailMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	defer rc.Close()

	pub := &publisherMock{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kafka down"))
	s := NewStore(rc, 0, pub, "cart.updated")

	c, err := s.Add(context.Background(), "acc-1", latte)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
}

func TestStore_ApplyRemote(t *testing.T) {
	s, _ := newTestStore(t)

	got := 0
	defer s.Subscribe("acc-1", func(c models.Cart) { got++ })()

	require.NoError(t, s.ApplyRemote(messages.CartUpdated{AccountID: "acc-1", Origin: s.Origin()}))
	require.Zero(t, got)

	require.NoError(t, s.ApplyRemote(messages.CartUpdated{AccountID: "acc-1", Origin: "other", Items: []models.CartItem{latte}}))
	require.Equal(t, 1, got)

	require.Error(t, s.ApplyRemote(messages.CartUpdated{}))
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s, _ := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add(context.Background(), "acc-1", latte)
		}()
	}
	wg.Wait()

	c, err := s.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Equal(t, 20, c.Items[0].Quantity)
}

func TestMerge(t *testing.T) {
	items := Merge(nil, latte)
	items = Merge(items, models.CartItem{ID: "p2", Name: "Bánh", Price: 10, Quantity: 3})
	items = Merge(items, latte)
	require.Len(t, items, 2)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, 3, items[1].Quantity)
}

// stuckPublisher blocks the first Publish until release is closed.
type stuckPublisher struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (p *stuckPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.release
	}
	return nil
}

func TestStore_SlowBrokerDoesNotHoldAccountLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := rediscache.New(mr.Addr())
	defer rc.Close()

	pub := &stuckPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewStore(rc, time.Hour, pub, "cart.updated")
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Add(ctx, "acc-1", latte)
		done <- err
	}()
	<-pub.entered

	second := make(chan models.Cart, 1)
	go func() {
		c, _ := s.Increase(ctx, "acc-1", "p1")
		second <- c
	}()

	select {
	case c := <-second:
		require.Equal(t, 2, c.Items[0].Quantity)
	case <-time.After(2 * time.Second):
		t.Fatal("mutation waited for the broker")
	}

	close(pub.release)
	require.NoError(t, <-done)
}
