package petgroups

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/pkg/errors"
)

const StatusBoardKey = "pet_status_updates"

const statusMaxLen = 50

// Statuses reads the board. A corrupt blob reads as empty.
func (s *Service) Statuses(ctx context.Context) (map[string]models.GroupStatus, error) {
	raw, ok, err := s.board.Get(ctx, StatusBoardKey)
	if err != nil {
		return nil, errors.Wrap(err, "read status board")
	}
	out := map[string]models.GroupStatus{}
	if !ok {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Warn("status board is corrupt, starting empty", "error", err.Error())
		return map[string]models.GroupStatus{}, nil
	}
	return out, nil
}

func (s *Service) SetStatus(ctx context.Context, groupID, status, note, by string) (models.GroupStatus, validation.FieldErrors, error) {
	status = strings.TrimSpace(status)
	errs := validation.FieldErrors{}
	switch {
	case groupID == "":
		errs["group_id"] = "Vui lòng chọn nhóm"
	case status == "":
		errs["status"] = "Trạng thái không được để trống"
	case utf8.RuneCountInString(status) > statusMaxLen:
		errs["status"] = validation.ValidateMaxLen("Trạng thái", status, statusMaxLen)
	}
	if msg := validation.ValidateMaxLen("Ghi chú", note, validation.TextMaxLen); msg != "" {
		errs["note"] = msg
	}
	if !errs.OK() {
		return models.GroupStatus{}, errs, nil
	}

	s.boardMu.Lock()
	defer s.boardMu.Unlock()

	board, err := s.Statuses(ctx)
	if err != nil {
		return models.GroupStatus{}, nil, err
	}
	st := models.GroupStatus{
		GroupID:   groupID,
		Status:    status,
		Note:      note,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: by,
	}
	board[groupID] = st

	b, err := json.Marshal(board)
	if err != nil {
		return models.GroupStatus{}, nil, errors.Wrap(err, "marshal status board")
	}
	if err := s.board.Set(ctx, StatusBoardKey, b, 0); err != nil {
		return models.GroupStatus{}, nil, errors.Wrap(err, "write status board")
	}
	return st, nil, nil
}
