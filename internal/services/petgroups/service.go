package petgroups

import (
	"context"
	"sync"

	"github.com/BearBump/PetCafe/internal/cache"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/pkg/errors"
)

type Backend interface {
	ListPets(ctx context.Context) ([]models.Pet, error)
	GetPet(ctx context.Context, id string) (*models.Pet, error)
	UpdatePet(ctx context.Context, id string, p models.Pet) (*models.Pet, error)
	ListSpecies(ctx context.Context) ([]models.Species, error)
	ListBreeds(ctx context.Context) ([]models.Breed, error)
	ListGroups(ctx context.Context) ([]models.PetGroup, error)
	GetGroup(ctx context.Context, id string) (*models.PetGroup, error)
	CreateGroup(ctx context.Context, g models.PetGroup) (*models.PetGroup, error)
	UpdateGroup(ctx context.Context, id string, g models.PetGroup) (*models.PetGroup, error)
	DeleteGroup(ctx context.Context, id string) error
}

const DefaultConcurrency = 5

var ErrGroupNotEmpty = errors.New("Không thể xóa nhóm đang có thú cưng")

type Service struct {
	api         Backend
	board       cache.BlobStore
	concurrency int

	boardMu sync.Mutex
}

func New(api Backend, board cache.BlobStore, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{api: api, board: board, concurrency: concurrency}
}

func (s *Service) refs(ctx context.Context) (validation.Refs, error) {
	species, err := s.api.ListSpecies(ctx)
	if err != nil {
		return validation.Refs{}, errors.Wrap(err, "list species")
	}
	breeds, err := s.api.ListBreeds(ctx)
	if err != nil {
		return validation.Refs{}, errors.Wrap(err, "list breeds")
	}
	return validation.Refs{Species: species, Breeds: breeds}, nil
}

func (s *Service) List(ctx context.Context, f Filter) (ListResult, error) {
	groups, err := s.api.ListGroups(ctx)
	if err != nil {
		return ListResult{}, err
	}
	pets, err := s.api.ListPets(ctx)
	if err != nil {
		return ListResult{}, err
	}
	return List(groups, pets, f), nil
}

func (s *Service) Create(ctx context.Context, in validation.GroupInput) (*models.PetGroup, validation.FieldErrors, error) {
	refs, err := s.refs(ctx)
	if err != nil {
		return nil, nil, err
	}
	if errs := validation.ValidateGroup(in, refs); !errs.OK() {
		return nil, errs, nil
	}
	g, err := s.api.CreateGroup(ctx, validation.ToGroup(in))
	return g, nil, err
}

func (s *Service) Update(ctx context.Context, id string, in validation.GroupInput) (*models.PetGroup, validation.FieldErrors, error) {
	refs, err := s.refs(ctx)
	if err != nil {
		return nil, nil, err
	}
	if errs := validation.ValidateGroup(in, refs); !errs.OK() {
		return nil, errs, nil
	}
	g := validation.ToGroup(in)
	g.ID = id
	out, err := s.api.UpdateGroup(ctx, id, g)
	return out, nil, err
}

// Delete refuses to drop a group that still has members.
func (s *Service) Delete(ctx context.Context, id string) error {
	pets, err := s.api.ListPets(ctx)
	if err != nil {
		return err
	}
	for _, p := range pets {
		if p.InGroup(id) {
			return ErrGroupNotEmpty
		}
	}
	return s.api.DeleteGroup(ctx, id)
}
