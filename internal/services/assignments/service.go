package assignments

import (
	"context"
	"time"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/storage/pgconsole"
	"github.com/pkg/errors"
)

var (
	ErrAlreadySubmitted = errors.New("Phân công đã được gửi")
	ErrDraftNotFound    = errors.New("Chưa có bản nháp phân công")
)

type Repository interface {
	GetDraft(ctx context.Context, taskID string) (*models.AssignmentDraft, error)
	SaveDraft(ctx context.Context, d models.AssignmentDraft) error
	MarkSubmitted(ctx context.Context, taskID string, at time.Time) error
}

// Command is one wizard step sent by the UI.
type Command struct {
	Op         string               `json:"op"`
	Slot       string               `json:"slot,omitempty"`
	AreaIDs    []string             `json:"areaIds,omitempty"`
	PetGroup   *models.PetGroupPick `json:"petGroup,omitempty"`
	GroupName  string               `json:"groupName,omitempty"`
	StaffGroup *models.StaffGroup   `json:"staffGroup,omitempty"`
	Index      int                  `json:"index,omitempty"`
}

const (
	OpSetAreas         = "set_areas"
	OpAddPetGroup      = "add_pet_group"
	OpRemovePetGroup   = "remove_pet_group"
	OpAddStaffGroup    = "add_staff_group"
	OpUpdateStaffGroup = "update_staff_group"
	OpRemoveStaffGroup = "remove_staff_group"
	OpAddSlot          = "add_slot"
	OpRemoveSlot       = "remove_slot"
)

var ErrUnknownOp = errors.New("Thao tác không hợp lệ")

// Apply dispatches a command to the matching pure operation.
func Apply(d models.AssignmentDraft, cmd Command) (models.AssignmentDraft, error) {
	switch cmd.Op {
	case OpSetAreas:
		return SetAreas(d, cmd.Slot, cmd.AreaIDs)
	case OpAddPetGroup:
		if cmd.PetGroup == nil {
			return d, ErrEmptyGroupName
		}
		return AddPetGroup(d, cmd.Slot, *cmd.PetGroup)
	case OpRemovePetGroup:
		return RemovePetGroup(d, cmd.Slot, cmd.GroupName)
	case OpAddStaffGroup:
		if cmd.StaffGroup == nil {
			return d, ErrEmptyGroupName
		}
		return AddStaffGroup(d, cmd.Slot, *cmd.StaffGroup)
	case OpUpdateStaffGroup:
		if cmd.StaffGroup == nil {
			return d, ErrEmptyGroupName
		}
		return UpdateStaffGroup(d, cmd.Slot, cmd.Index, *cmd.StaffGroup)
	case OpRemoveStaffGroup:
		return RemoveStaffGroup(d, cmd.Slot, cmd.Index)
	case OpAddSlot:
		return AddSlot(d, cmd.Slot)
	case OpRemoveSlot:
		return RemoveSlot(d, cmd.Slot)
	}
	return d, ErrUnknownOp
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get loads the task's draft, or a fresh one in mode when none is stored.
func (s *Service) Get(ctx context.Context, taskID, mode string) (models.AssignmentDraft, error) {
	d, err := s.repo.GetDraft(ctx, taskID)
	if errors.Is(err, pgconsole.ErrNotFound) {
		if mode == "" {
			mode = models.AssignmentModeInternal
		}
		return NewDraft(taskID, mode)
	}
	if err != nil {
		return models.AssignmentDraft{}, err
	}
	return *d, nil
}

// Put replaces the whole draft after checking it.
func (s *Service) Put(ctx context.Context, d models.AssignmentDraft) (models.AssignmentDraft, error) {
	cur, err := s.repo.GetDraft(ctx, d.TaskID)
	if err != nil && !errors.Is(err, pgconsole.ErrNotFound) {
		return models.AssignmentDraft{}, err
	}
	if cur != nil && cur.SubmittedAt != nil {
		return models.AssignmentDraft{}, ErrAlreadySubmitted
	}
	if err := Check(d); err != nil {
		return models.AssignmentDraft{}, err
	}
	d.SubmittedAt = nil
	d.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, d); err != nil {
		return models.AssignmentDraft{}, err
	}
	return d, nil
}

func (s *Service) Apply(ctx context.Context, taskID, mode string, cmd Command) (models.AssignmentDraft, error) {
	d, err := s.Get(ctx, taskID, mode)
	if err != nil {
		return models.AssignmentDraft{}, err
	}
	if d.SubmittedAt != nil {
		return models.AssignmentDraft{}, ErrAlreadySubmitted
	}
	next, err := Apply(d, cmd)
	if err != nil {
		return d, err
	}
	next.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, next); err != nil {
		return models.AssignmentDraft{}, err
	}
	return next, nil
}

// save loses to a concurrent Submit: the stored draft is frozen.
func (s *Service) save(ctx context.Context, d models.AssignmentDraft) error {
	err := s.repo.SaveDraft(ctx, d)
	if errors.Is(err, pgconsole.ErrSubmitted) {
		return ErrAlreadySubmitted
	}
	return err
}

func (s *Service) Conflicts(ctx context.Context, taskID string) ([]Conflict, error) {
	d, err := s.Get(ctx, taskID, "")
	if err != nil {
		return nil, err
	}
	return Conflicts(d), nil
}

// Submit freezes the draft. Conflicts are returned as warnings.
func (s *Service) Submit(ctx context.Context, taskID string) (models.AssignmentDraft, []Conflict, error) {
	d, err := s.repo.GetDraft(ctx, taskID)
	if errors.Is(err, pgconsole.ErrNotFound) {
		return models.AssignmentDraft{}, nil, ErrDraftNotFound
	}
	if err != nil {
		return models.AssignmentDraft{}, nil, err
	}
	if d.SubmittedAt != nil {
		return models.AssignmentDraft{}, nil, ErrAlreadySubmitted
	}
	if err := Check(*d); err != nil {
		return models.AssignmentDraft{}, nil, err
	}
	at := s.now().UTC()
	if err := s.repo.MarkSubmitted(ctx, taskID, at); err != nil {
		return models.AssignmentDraft{}, nil, err
	}
	d.SubmittedAt = &at
	d.UpdatedAt = at
	return *d, Conflicts(*d), nil
}
