package pgconsole

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) GetDraft(ctx context.Context, taskID string) (*models.AssignmentDraft, error) {
	var body []byte
	var submittedAt *time.Time
	var updatedAt time.Time
	err := s.db.QueryRow(ctx, `
SELECT body, submitted_at, updated_at FROM assignment_drafts WHERE task_id = $1
`, taskID).Scan(&body, &submittedAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select draft")
	}

	var d models.AssignmentDraft
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, errors.Wrap(err, "decode draft")
	}
	d.TaskID = taskID
	d.SubmittedAt = submittedAt
	d.UpdatedAt = updatedAt
	return &d, nil
}

// SaveDraft upserts the draft. Submission time is owned by MarkSubmitted; a
// submitted draft is never overwritten.
func (s *Storage) SaveDraft(ctx context.Context, d models.AssignmentDraft) error {
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "encode draft")
	}
	tag, err := s.db.Exec(ctx, `
INSERT INTO assignment_drafts (task_id, mode, body, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (task_id)
DO UPDATE SET mode = EXCLUDED.mode, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
WHERE assignment_drafts.submitted_at IS NULL
`, d.TaskID, d.Mode, body, d.UpdatedAt.UTC())
	if err != nil {
		return errors.Wrap(err, "upsert draft")
	}
	if tag.RowsAffected() == 0 {
		return ErrSubmitted
	}
	return nil
}

func (s *Storage) MarkSubmitted(ctx context.Context, taskID string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
UPDATE assignment_drafts SET submitted_at = $2, updated_at = $2 WHERE task_id = $1
`, taskID, at.UTC())
	if err != nil {
		return errors.Wrap(err, "mark draft submitted")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
