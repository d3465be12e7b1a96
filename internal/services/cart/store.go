package cart

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/PetCafe/internal/broker/messages"
	"github.com/BearBump/PetCafe/internal/cache"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const KeyPrefix = "sales_cart:"

var (
	ErrUnavailable  = errors.New("Không thể tải giỏ hàng, vui lòng thử lại")
	ErrItemNotFound = errors.New("Sản phẩm không có trong giỏ hàng")
	ErrInvalidItem  = errors.New("Sản phẩm không hợp lệ")
	ErrNoAccount    = errors.New("Thiếu tài khoản")
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Store is the observable per-account cart. Mutations are read-modify-write
// under a per-account lock; subscribers hear about every change, local or
// relayed from another console instance.
type Store struct {
	blobs cache.BlobStore
	ttl   time.Duration

	pub    Publisher
	topic  string
	origin string

	locks [64]sync.Mutex

	subsMu sync.Mutex
	subs   map[string]map[uint64]func(models.Cart)
	nextID uint64
}

func NewStore(blobs cache.BlobStore, ttl time.Duration, pub Publisher, topic string) *Store {
	return &Store{
		blobs:  blobs,
		ttl:    ttl,
		pub:    pub,
		topic:  topic,
		origin: uuid.NewString(),
		subs:   map[string]map[uint64]func(models.Cart){},
	}
}

// Origin identifies this instance in cart.updated messages.
func (s *Store) Origin() string { return s.origin }

func key(accountID string) string { return KeyPrefix + accountID }

func (s *Store) lock(accountID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

func (s *Store) Get(ctx context.Context, accountID string) (models.Cart, error) {
	if accountID == "" {
		return models.Cart{}, ErrNoAccount
	}
	items, err := s.read(ctx, accountID)
	if err != nil {
		return models.Cart{}, err
	}
	return newCart(accountID, items), nil
}

func (s *Store) read(ctx context.Context, accountID string) ([]models.CartItem, error) {
	raw, ok, err := s.blobs.Get(ctx, key(accountID))
	if err != nil {
		slog.Error("cart read failed", "account_id", accountID, "error", err.Error())
		return nil, ErrUnavailable
	}
	if !ok {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("cart blob is corrupt, starting empty", "account_id", accountID, "error", err.Error())
		return []models.CartItem{}, nil
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// mutate never writes unless the current cart was read first; a failed read
// leaves the stored cart untouched. Subscribers and the broker hear about the
// change after the account lock is released.
func (s *Store) mutate(ctx context.Context, accountID string, fn func([]models.CartItem) ([]models.CartItem, error)) (models.Cart, error) {
	if accountID == "" {
		return models.Cart{}, ErrNoAccount
	}
	c, err := s.write(ctx, accountID, fn)
	if err != nil {
		return models.Cart{}, err
	}
	s.notify(c)
	s.publish(ctx, c)
	return c, nil
}

func (s *Store) write(ctx context.Context, accountID string, fn func([]models.CartItem) ([]models.CartItem, error)) (models.Cart, error) {
	mu := s.lock(accountID)
	mu.Lock()
	defer mu.Unlock()

	items, err := s.read(ctx, accountID)
	if err != nil {
		return models.Cart{}, err
	}
	items, err = fn(items)
	if err != nil {
		return models.Cart{}, err
	}

	if len(items) == 0 {
		if err := s.blobs.Delete(ctx, key(accountID)); err != nil {
			return models.Cart{}, errors.Wrap(err, "delete cart")
		}
	} else {
		b, err := json.Marshal(items)
		if err != nil {
			return models.Cart{}, errors.Wrap(err, "marshal cart")
		}
		if err := s.blobs.Set(ctx, key(accountID), b, s.ttl); err != nil {
			return models.Cart{}, errors.Wrap(err, "write cart")
		}
	}
	return newCart(accountID, items), nil
}

func (s *Store) Add(ctx context.Context, accountID string, item models.CartItem) (models.Cart, error) {
	item.ID = strings.TrimSpace(item.ID)
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.ID == "" || item.Name == "" || item.Price < 0 || item.Quantity < 1 {
		return models.Cart{}, ErrInvalidItem
	}
	return s.mutate(ctx, accountID, func(items []models.CartItem) ([]models.CartItem, error) {
		return Merge(items, item), nil
	})
}

// AddService books a service as a cart line with id svc-<serviceID>.
func (s *Store) AddService(ctx context.Context, accountID string, svc models.Service, bookingDate string) (models.Cart, error) {
	if svc.ID == "" {
		return models.Cart{}, ErrInvalidItem
	}
	if bookingDate != "" {
		if _, err := time.Parse(time.DateOnly, bookingDate); err != nil {
			return models.Cart{}, ErrInvalidItem
		}
	}
	return s.Add(ctx, accountID, models.CartItem{
		ID:          models.ServiceItemPrefix + svc.ID,
		Name:        svc.Name,
		Price:       svc.Price,
		Quantity:    1,
		BookingDate: bookingDate,
	})
}

func (s *Store) Increase(ctx context.Context, accountID, itemID string) (models.Cart, error) {
	return s.mutate(ctx, accountID, func(items []models.CartItem) ([]models.CartItem, error) {
		return adjust(items, itemID, +1)
	})
}

// Decrease never drops a line below quantity 1; use Remove for that.
func (s *Store) Decrease(ctx context.Context, accountID, itemID string) (models.Cart, error) {
	return s.mutate(ctx, accountID, func(items []models.CartItem) ([]models.CartItem, error) {
		return adjust(items, itemID, -1)
	})
}

func (s *Store) Remove(ctx context.Context, accountID, itemID string) (models.Cart, error) {
	return s.mutate(ctx, accountID, func(items []models.CartItem) ([]models.CartItem, error) {
		out := make([]models.CartItem, 0, len(items))
		found := false
		for _, it := range items {
			if it.ID == itemID {
				found = true
				continue
			}
			out = append(out, it)
		}
		if !found {
			return nil, ErrItemNotFound
		}
		return out, nil
	})
}

func (s *Store) Clear(ctx context.Context, accountID string) (models.Cart, error) {
	return s.mutate(ctx, accountID, func([]models.CartItem) ([]models.CartItem, error) {
		return []models.CartItem{}, nil
	})
}

func (s *Store) Total(ctx context.Context, accountID string) (int64, error) {
	c, err := s.Get(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return c.Total, nil
}

// Merge adds item to items, summing quantities of lines with the same id.
func Merge(items []models.CartItem, item models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items)+1)
	merged := false
	for _, it := range items {
		if it.ID == item.ID {
			it.Quantity += item.Quantity
			if item.BookingDate != "" {
				it.BookingDate = item.BookingDate
			}
			merged = true
		}
		out = append(out, it)
	}
	if !merged {
		out = append(out, item)
	}
	return out
}

func adjust(items []models.CartItem, itemID string, delta int) ([]models.CartItem, error) {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == itemID {
			out[i].Quantity = max(out[i].Quantity+delta, 1)
			return out, nil
		}
	}
	return nil, ErrItemNotFound
}

func newCart(accountID string, items []models.CartItem) models.Cart {
	return models.Cart{AccountID: accountID, Items: items, Total: models.CartTotal(items)}
}

// Subscribe registers fn for changes of accountID's cart. The returned
// func unsubscribes.
func (s *Store) Subscribe(accountID string, fn func(models.Cart)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.nextID++
	id := s.nextID
	if s.subs[accountID] == nil {
		s.subs[accountID] = map[uint64]func(models.Cart){}
	}
	s.subs[accountID][id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs[accountID], id)
		if len(s.subs[accountID]) == 0 {
			delete(s.subs, accountID)
		}
	}
}

func (s *Store) notify(c models.Cart) {
	s.subsMu.Lock()
	fns := make([]func(models.Cart), 0, len(s.subs[c.AccountID]))
	for _, fn := range s.subs[c.AccountID] {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (s *Store) publish(ctx context.Context, c models.Cart) {
	if s.pub == nil || s.topic == "" {
		return
	}
	b, err := json.Marshal(messages.CartUpdated{
		AccountID: c.AccountID,
		Origin:    s.origin,
		Items:     c.Items,
		Total:     c.Total,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("marshal cart.updated", "error", err.Error())
		return
	}
	if err := s.pub.Publish(ctx, s.topic, []byte(c.AccountID), b); err != nil {
		slog.Warn("publish cart.updated failed", "account_id", c.AccountID, "error", err.Error())
	}
}

// ApplyRemote relays a cart.updated message from another instance to local
// subscribers. Own echoes are ignored.
func (s *Store) ApplyRemote(msg messages.CartUpdated) error {
	if msg.AccountID == "" {
		return errors.New("account_id is required")
	}
	if msg.Origin == s.origin {
		return nil
	}
	items := msg.Items
	if items == nil {
		items = []models.CartItem{}
	}
	s.notify(newCart(msg.AccountID, items))
	return nil
}
