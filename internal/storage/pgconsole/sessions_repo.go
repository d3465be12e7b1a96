package pgconsole

import (
	"context"
	"time"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// SessionUpdate is the outcome of one order check by the watcher.
// Empty Phase keeps the session pending.
type SessionUpdate struct {
	OrderID     string
	CheckedAt   time.Time
	Phase       string
	NextCheckAt time.Time
	Error       *string
}

const sessionColumns = `
  order_id, invoice_id, account_id, payment_method, phase, total, qr_url,
  check_count, last_error, next_check_at, confirmed_at, created_at, updated_at`

func scanSession(row pgx.Row) (*models.CheckoutSession, error) {
	var cs models.CheckoutSession
	err := row.Scan(
		&cs.OrderID, &cs.InvoiceID, &cs.AccountID, &cs.PaymentMethod, &cs.Phase, &cs.Total, &cs.QRURL,
		&cs.CheckCount, &cs.LastError, &cs.NextCheckAt, &cs.ConfirmedAt, &cs.CreatedAt, &cs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *Storage) CreateSession(ctx context.Context, cs models.CheckoutSession) error {
	now := time.Now().UTC()
	if cs.CreatedAt.IsZero() {
		cs.CreatedAt = now
	}
	if cs.NextCheckAt.IsZero() {
		cs.NextCheckAt = now
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO checkout_sessions (
  order_id, invoice_id, account_id, payment_method, phase, total, qr_url,
  next_check_at, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
ON CONFLICT (order_id) DO NOTHING
`, cs.OrderID, cs.InvoiceID, cs.AccountID, cs.PaymentMethod, cs.Phase, cs.Total, cs.QRURL,
		cs.NextCheckAt.UTC(), cs.CreatedAt.UTC())
	return errors.Wrap(err, "insert checkout session")
}

func (s *Storage) GetSession(ctx context.Context, orderID string) (*models.CheckoutSession, error) {
	cs, err := scanSession(s.db.QueryRow(ctx, `SELECT`+sessionColumns+` FROM checkout_sessions WHERE order_id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select checkout session")
	}
	return cs, nil
}

func (s *Storage) ListSessions(ctx context.Context, accountID string, limit int) ([]*models.CheckoutSession, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `SELECT`+sessionColumns+`
FROM checkout_sessions
WHERE account_id = $1
ORDER BY created_at DESC
LIMIT $2
`, accountID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select checkout sessions")
	}
	defer rows.Close()

	out := []*models.CheckoutSession{}
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan checkout session")
		}
		out = append(out, cs)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// ConfirmSession moves a pending session to CONFIRMED. ErrNotFound means
// there is no pending session with that id.
func (s *Storage) ConfirmSession(ctx context.Context, orderID string, at time.Time) (*models.CheckoutSession, error) {
	cs, err := scanSession(s.db.QueryRow(ctx, `
UPDATE checkout_sessions
SET phase = $2, confirmed_at = $3, last_error = NULL, updated_at = now()
WHERE order_id = $1 AND phase = $4
RETURNING`+sessionColumns,
		orderID, models.PhaseConfirmed, at.UTC(), models.PhasePending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "confirm checkout session")
	}
	return cs, nil
}

// ClaimDueSessions leases pending bank-transfer sessions that are due
// (SELECT ... FOR UPDATE SKIP LOCKED) so parallel watchers never share one.
func (s *Storage) ClaimDueSessions(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.CheckoutSession, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT`+sessionColumns+`
FROM checkout_sessions
WHERE phase = $2
  AND payment_method = $3
  AND next_check_at <= $1
ORDER BY next_check_at ASC
LIMIT $4
FOR UPDATE SKIP LOCKED
`, now.UTC(), models.PhasePending, models.PaymentMethodBankTransfer, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select due sessions")
	}
	var picked []*models.CheckoutSession
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan due session")
		}
		picked = append(picked, cs)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	leaseUntil := now.UTC().Add(lease)
	for _, cs := range picked {
		if _, err := tx.Exec(ctx, `UPDATE checkout_sessions SET next_check_at = $2, updated_at = now() WHERE order_id = $1`, cs.OrderID, leaseUntil); err != nil {
			return nil, errors.Wrap(err, "lease session")
		}
		cs.NextCheckAt = leaseUntil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return picked, nil
}

// ApplySessionUpdate records a watcher check. Only pending sessions change,
// so a late message never reopens a confirmed or abandoned one.
func (s *Storage) ApplySessionUpdate(ctx context.Context, upd SessionUpdate) error {
	if upd.Error != nil && *upd.Error != "" {
		_, err := s.db.Exec(ctx, `
UPDATE checkout_sessions
SET
  last_checked_at = $2,
  check_count = check_count + 1,
  last_error = $3,
  next_check_at = $4,
  updated_at = now()
WHERE order_id = $1 AND phase = $5
`, upd.OrderID, upd.CheckedAt.UTC(), *upd.Error, upd.NextCheckAt.UTC(), models.PhasePending)
		return errors.Wrap(err, "update session (error)")
	}

	phase := upd.Phase
	if phase == "" {
		phase = models.PhasePending
	}
	var confirmedAt *time.Time
	if phase == models.PhaseConfirmed {
		t := upd.CheckedAt.UTC()
		confirmedAt = &t
	}
	_, err := s.db.Exec(ctx, `
UPDATE checkout_sessions
SET
  phase = $3,
  last_checked_at = $2,
  check_count = 0,
  last_error = NULL,
  next_check_at = $4,
  confirmed_at = COALESCE($5, confirmed_at),
  updated_at = now()
WHERE order_id = $1 AND phase = $6
`, upd.OrderID, upd.CheckedAt.UTC(), phase, upd.NextCheckAt.UTC(), confirmedAt, models.PhasePending)
	return errors.Wrap(err, "update session (ok)")
}
