package pgconsole

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS checkout_sessions (
  order_id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL DEFAULT '',
  account_id TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  phase TEXT NOT NULL,
  total BIGINT NOT NULL DEFAULT 0,
  qr_url TEXT NOT NULL DEFAULT '',
  check_count INT NOT NULL DEFAULT 0,
  last_error TEXT NULL,
  last_checked_at TIMESTAMPTZ NULL,
  next_check_at TIMESTAMPTZ NOT NULL,
  confirmed_at TIMESTAMPTZ NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_checkout_sessions_due ON checkout_sessions(phase, next_check_at)`,
		`CREATE INDEX IF NOT EXISTS idx_checkout_sessions_account ON checkout_sessions(account_id, created_at DESC)`,
		`
CREATE TABLE IF NOT EXISTS assignment_drafts (
  task_id TEXT PRIMARY KEY,
  mode TEXT NOT NULL,
  body JSONB NOT NULL,
  submitted_at TIMESTAMPTZ NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
