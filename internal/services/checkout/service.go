package checkout

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/PetCafe/internal/broker/messages"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/BearBump/PetCafe/internal/storage/pgconsole"
	"github.com/pkg/errors"
)

var (
	ErrEmptyCart       = errors.New("Giỏ hàng đang trống")
	ErrSessionNotFound = errors.New("Không tìm thấy đơn hàng")
)

// MsgSessionNotSaved is returned with an order the console could not track.
const MsgSessionNotSaved = "Đơn hàng đã được tạo nhưng chưa lưu được trạng thái thanh toán"

type OrderBackend interface {
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)
	ConfirmOrder(ctx context.Context, id string) (*models.Order, error)
}

type CartStore interface {
	Get(ctx context.Context, accountID string) (models.Cart, error)
	Clear(ctx context.Context, accountID string) (models.Cart, error)
}

type Repository interface {
	CreateSession(ctx context.Context, cs models.CheckoutSession) error
	GetSession(ctx context.Context, orderID string) (*models.CheckoutSession, error)
	ListSessions(ctx context.Context, accountID string, limit int) ([]*models.CheckoutSession, error)
	ConfirmSession(ctx context.Context, orderID string, at time.Time) (*models.CheckoutSession, error)
	ApplySessionUpdate(ctx context.Context, upd pgconsole.SessionUpdate) error
}

type Config struct {
	// RedirectBaseURL prefixes the /checkout redirect; empty gives a relative URL.
	RedirectBaseURL string
	Bank            Bank
	// FirstCheckDelay is when the watcher first looks at a bank transfer.
	FirstCheckDelay time.Duration
}

type Result struct {
	Session     models.CheckoutSession `json:"session"`
	RedirectURL string                 `json:"redirect_url"`
	QRURL       string                 `json:"qr_url,omitempty"`
	Warning     string                 `json:"warning,omitempty"`
}

type Service struct {
	api  OrderBackend
	cart CartStore
	repo Repository
	cfg  Config
	now  func() time.Time
}

func New(api OrderBackend, cart CartStore, repo Repository, cfg Config) *Service {
	if cfg.FirstCheckDelay <= 0 {
		cfg.FirstCheckDelay = time.Minute
	}
	return &Service{api: api, cart: cart, repo: repo, cfg: cfg, now: time.Now}
}

// Checkout submits the account's cart as an order. Once the backend has the
// order, a pending session is stored and the cart is cleared; the caller
// redirects to the returned URL. A session that cannot be stored does not hide
// the order: the result carries a warning instead. Backend errors are returned
// unchanged, single attempt.
func (s *Service) Checkout(ctx context.Context, accountID string, c Contact) (*Result, validation.FieldErrors, error) {
	if errs := ValidateContact(c); !errs.OK() {
		return nil, errs, nil
	}

	cart, err := s.cart.Get(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if len(cart.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}
	if _, err := Transition(CartPhase(cart), models.PhasePending); err != nil {
		return nil, nil, err
	}

	order, err := s.api.CreateOrder(ctx, BuildOrderRequest(c, cart.Items))
	if err != nil {
		return nil, nil, err
	}

	total := order.TotalAmount
	if total == 0 {
		total = cart.Total
	}
	now := s.now().UTC()
	cs := models.CheckoutSession{
		OrderID:       order.ID,
		InvoiceID:     order.InvoiceID,
		AccountID:     accountID,
		PaymentMethod: c.PaymentMethod,
		Phase:         models.PhasePending,
		Total:         total,
		NextCheckAt:   now.Add(s.cfg.FirstCheckDelay),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c.PaymentMethod == models.PaymentMethodBankTransfer {
		cs.QRURL = s.cfg.Bank.QRURL(total, transferInfo(order))
	}
	res := &Result{
		Session:     cs,
		RedirectURL: s.redirectURL(order, c.PaymentMethod),
		QRURL:       cs.QRURL,
	}
	if err := s.repo.CreateSession(ctx, cs); err != nil {
		slog.Error("save checkout session failed", "account_id", accountID, "order_id", order.ID, "error", err.Error())
		res.Warning = MsgSessionNotSaved
	}

	if _, err := s.cart.Clear(ctx, accountID); err != nil {
		slog.Warn("clear cart after order failed", "account_id", accountID, "order_id", order.ID, "error", err.Error())
	}
	return res, nil, nil
}

func transferInfo(o *models.Order) string {
	if o.InvoiceID != "" {
		return o.InvoiceID
	}
	return o.ID
}

func (s *Service) redirectURL(o *models.Order, method string) string {
	q := url.Values{}
	q.Set("orderId", o.ID)
	q.Set("invoiceId", o.InvoiceID)
	q.Set("method", method)
	return strings.TrimRight(s.cfg.RedirectBaseURL, "/") + "/checkout?" + q.Encode()
}

func (s *Service) Session(ctx context.Context, accountID, orderID string) (*models.CheckoutSession, error) {
	cs, err := s.repo.GetSession(ctx, orderID)
	if errors.Is(err, pgconsole.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if cs.AccountID != accountID {
		return nil, ErrSessionNotFound
	}
	return cs, nil
}

func (s *Service) Sessions(ctx context.Context, accountID string, limit int) ([]*models.CheckoutSession, error) {
	return s.repo.ListSessions(ctx, accountID, limit)
}

// Confirm finalizes payment of a pending order. One call to the backend,
// its message surfaces verbatim on failure.
func (s *Service) Confirm(ctx context.Context, accountID, orderID string) (*models.CheckoutSession, error) {
	cs, err := s.Session(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(cs.Phase, models.PhaseConfirmed); err != nil {
		return nil, err
	}

	if _, err := s.api.ConfirmOrder(ctx, orderID); err != nil {
		return nil, err
	}

	out, err := s.repo.ConfirmSession(ctx, orderID, s.now())
	if errors.Is(err, pgconsole.ErrNotFound) {
		// the watcher got there first
		return s.Session(ctx, accountID, orderID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "confirm checkout session")
	}
	return out, nil
}

// ApplyOrderUpdate stores a watcher result received over Kafka.
func (s *Service) ApplyOrderUpdate(ctx context.Context, msg messages.OrderUpdated) error {
	if msg.OrderID == "" {
		return errors.New("order_id is required")
	}
	if msg.CheckedAt.IsZero() {
		msg.CheckedAt = s.now().UTC()
	}
	if msg.NextCheckAt.IsZero() {
		msg.NextCheckAt = msg.CheckedAt.Add(s.cfg.FirstCheckDelay)
	}
	switch msg.Phase {
	case "", models.PhasePending, models.PhaseConfirmed, models.PhaseAbandoned:
	default:
		return errors.Errorf("unknown phase %q", msg.Phase)
	}
	return s.repo.ApplySessionUpdate(ctx, pgconsole.SessionUpdate{
		OrderID:     msg.OrderID,
		CheckedAt:   msg.CheckedAt,
		Phase:       msg.Phase,
		NextCheckAt: msg.NextCheckAt,
		Error:       msg.Error,
	})
}
