package petgroups

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrIneligible = errors.New("Một số thú cưng không phù hợp với nhóm")
	ErrBatch      = errors.New("Cập nhật nhóm thất bại, đã hoàn tác các thay đổi")
	ErrNotMember  = errors.New("Thú cưng không thuộc nhóm này")
)

type Candidate struct {
	Pet        models.Pet `json:"pet"`
	Selectable bool       `json:"selectable"`
	Reason     string     `json:"reason,omitempty"`
}

// BatchResult reports what a membership batch did to each pet.
type BatchResult struct {
	Applied            []string          `json:"applied"`
	Skipped            []string          `json:"skipped,omitempty"`
	Rejected           map[string]string `json:"rejected,omitempty"`
	Failed             map[string]string `json:"failed,omitempty"`
	Compensated        []string          `json:"compensated,omitempty"`
	CompensationFailed map[string]string `json:"compensation_failed,omitempty"`
}

// Eligibility marks every pet as selectable for g or not, with the reason.
// Current members are selectable.
func Eligibility(pets []models.Pet, g models.PetGroup) []Candidate {
	out := make([]Candidate, 0, len(pets))
	for _, p := range pets {
		reason := validation.EligibilityReason(p, g)
		out = append(out, Candidate{Pet: p, Selectable: reason == "", Reason: reason})
	}
	return out
}

func (s *Service) Eligibility(ctx context.Context, groupID string) ([]Candidate, error) {
	g, err := s.api.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	pets, err := s.api.ListPets(ctx)
	if err != nil {
		return nil, err
	}
	return Eligibility(pets, *g), nil
}

// AddPets moves petIDs into the group. Every pet is fetched first and the
// whole batch is rejected if any of them does not fit. Updates then fan out;
// if one fails, pets already moved get their previous group back.
func (s *Service) AddPets(ctx context.Context, groupID string, petIDs []string) (BatchResult, error) {
	res := BatchResult{Applied: []string{}}

	g, err := s.api.GetGroup(ctx, groupID)
	if err != nil {
		return res, err
	}

	ids := dedup(petIDs)
	snapshots := make([]models.Pet, len(ids))

	fetch, fctx := errgroup.WithContext(ctx)
	fetch.SetLimit(s.concurrency)
	for i, id := range ids {
		fetch.Go(func() error {
			p, err := s.api.GetPet(fctx, id)
			if err != nil {
				return errors.Wrapf(err, "get pet %s", id)
			}
			snapshots[i] = *p
			return nil
		})
	}
	if err := fetch.Wait(); err != nil {
		return res, err
	}

	todo := make([]models.Pet, 0, len(snapshots))
	for _, p := range snapshots {
		if p.InGroup(groupID) {
			res.Skipped = append(res.Skipped, p.ID)
			continue
		}
		if reason := validation.EligibilityReason(p, *g); reason != "" {
			if res.Rejected == nil {
				res.Rejected = map[string]string{}
			}
			res.Rejected[p.ID] = reason
			continue
		}
		todo = append(todo, p)
	}
	if len(res.Rejected) > 0 {
		return res, ErrIneligible
	}

	var mu sync.Mutex
	var applied, unknown []models.Pet
	failed := map[string]string{}

	// Siblings keep running after a failure: a cancelled request may still
	// have landed on the backend.
	var upd errgroup.Group
	upd.SetLimit(s.concurrency)
	for _, prev := range todo {
		upd.Go(func() error {
			next := prev
			gid := groupID
			next.GroupID = &gid
			_, err := s.api.UpdatePet(ctx, prev.ID, next)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[prev.ID] = err.Error()
				if !rejectedByBackend(err) {
					unknown = append(unknown, prev)
				}
				return errors.Wrapf(err, "update pet %s", prev.ID)
			}
			applied = append(applied, prev)
			return nil
		})
	}
	if err := upd.Wait(); err == nil {
		for _, p := range applied {
			res.Applied = append(res.Applied, p.ID)
		}
		sort.Strings(res.Applied)
		return res, nil
	}

	res.Failed = failed
	s.compensate(context.WithoutCancel(ctx), append(applied, unknown...), &res)
	return res, ErrBatch
}

// rejectedByBackend reports whether the backend answered, so the write
// surely did not happen. Transport errors and timeouts leave it unknown.
func rejectedByBackend(err error) bool {
	return cafeapi.StatusCode(err) != 0 || errors.Is(err, cafeapi.ErrPetNotFound)
}

// compensate writes the pre-batch snapshots back.
func (s *Service) compensate(ctx context.Context, applied []models.Pet, res *BatchResult) {
	for _, prev := range applied {
		if _, err := s.api.UpdatePet(ctx, prev.ID, prev); err != nil {
			slog.Error("membership compensation failed", "pet_id", prev.ID, "error", err.Error())
			if res.CompensationFailed == nil {
				res.CompensationFailed = map[string]string{}
			}
			res.CompensationFailed[prev.ID] = err.Error()
			continue
		}
		res.Compensated = append(res.Compensated, prev.ID)
	}
	sort.Strings(res.Compensated)
}

// RemovePet clears the pet's group.
func (s *Service) RemovePet(ctx context.Context, groupID, petID string) (*models.Pet, error) {
	p, err := s.api.GetPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	if !p.InGroup(groupID) {
		return nil, ErrNotMember
	}
	p.GroupID = nil
	return s.api.UpdatePet(ctx, petID, *p)
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
