package pets

import (
	"context"
	"time"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/integrations/upload"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Backend interface {
	ListPets(ctx context.Context) ([]models.Pet, error)
	GetPet(ctx context.Context, id string) (*models.Pet, error)
	CreatePet(ctx context.Context, p models.Pet) (*models.Pet, error)
	UpdatePet(ctx context.Context, id string, p models.Pet) (*models.Pet, error)
	DeletePet(ctx context.Context, id string) error
	ListHealthRecords(ctx context.Context, petID string) ([]models.HealthRecord, error)
	ListVaccinationRecords(ctx context.Context, petID string) ([]models.VaccinationRecord, error)
	HealthStatusOptions(ctx context.Context) ([]models.HealthStatusOption, error)
	ListSpecies(ctx context.Context) ([]models.Species, error)
	ListBreeds(ctx context.Context) ([]models.Breed, error)
	ListGroups(ctx context.Context) ([]models.PetGroup, error)
}

// Image is an uploaded pet photo waiting to be stored.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	api      Backend
	uploader upload.Uploader
	now      func() time.Time
}

func New(api Backend, uploader upload.Uploader) *Service {
	return &Service{api: api, uploader: uploader, now: time.Now}
}

func (s *Service) Refs(ctx context.Context) (validation.Refs, error) {
	var refs validation.Refs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		refs.Species, err = s.api.ListSpecies(gctx)
		return errors.Wrap(err, "list species")
	})
	g.Go(func() (err error) {
		refs.Breeds, err = s.api.ListBreeds(gctx)
		return errors.Wrap(err, "list breeds")
	})
	g.Go(func() (err error) {
		refs.Groups, err = s.api.ListGroups(gctx)
		return errors.Wrap(err, "list groups")
	})
	if err := g.Wait(); err != nil {
		return validation.Refs{}, err
	}
	return refs, nil
}

func (s *Service) List(ctx context.Context, f Filter) (ListResult, error) {
	all, err := s.api.ListPets(ctx)
	if err != nil {
		return ListResult{}, err
	}
	return List(all, f), nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Pet, error) {
	return s.api.GetPet(ctx, id)
}

// Detail loads the pet with its health and vaccination records in parallel.
// Any failure fails the whole view.
func (s *Service) Detail(ctx context.Context, id string) (*models.PetDetail, error) {
	var d models.PetDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Pet, err = s.api.GetPet(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Health, err = s.api.ListHealthRecords(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.Vaccinations, err = s.api.ListVaccinationRecords(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.Health == nil {
		d.Health = []models.HealthRecord{}
	}
	if d.Vaccinations == nil {
		d.Vaccinations = []models.VaccinationRecord{}
	}
	return &d, nil
}

func (s *Service) HealthStatusOptions(ctx context.Context) []models.HealthStatusOption {
	opts, err := s.api.HealthStatusOptions(ctx)
	opts = cafeapi.Lenient(opts, err, "health-status-options")
	if len(opts) == 0 {
		for _, st := range models.HealthStatuses {
			opts = append(opts, models.HealthStatusOption{Value: st, Label: st})
		}
	}
	return opts
}

func (s *Service) Validate(ctx context.Context, in validation.PetInput) (validation.FieldErrors, error) {
	refs, err := s.Refs(ctx)
	if err != nil {
		return nil, err
	}
	return validation.ValidatePet(in, refs, s.now()), nil
}

// Save validates the form, stores the image if one is attached, then creates
// (id == "") or overwrites the pet. Field errors stop it before any write.
func (s *Service) Save(ctx context.Context, id string, in validation.PetInput, img *Image) (*models.Pet, validation.FieldErrors, error) {
	errs, err := s.Validate(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if img != nil {
		if msg := validation.ValidateImage(img.ContentType, img.Data); msg != "" {
			errs["image"] = msg
		}
	}
	if !errs.OK() {
		return nil, errs, nil
	}

	if img != nil {
		url, err := s.uploader.Upload(ctx, img.Filename, img.ContentType, img.Data)
		if err != nil {
			return nil, nil, errors.Wrap(err, "upload pet image")
		}
		in.ImageURL = url
	}

	p := validation.ToPet(in)
	if id == "" {
		out, err := s.api.CreatePet(ctx, p)
		return out, nil, err
	}
	p.ID = id
	out, err := s.api.UpdatePet(ctx, id, p)
	return out, nil, err
}

// UploadImage stores a photo on its own, for forms that attach the URL later.
func (s *Service) UploadImage(ctx context.Context, img Image) (string, validation.FieldErrors, error) {
	if msg := validation.ValidateImage(img.ContentType, img.Data); msg != "" {
		return "", validation.FieldErrors{"image": msg}, nil
	}
	url, err := s.uploader.Upload(ctx, img.Filename, img.ContentType, img.Data)
	if err != nil {
		return "", nil, errors.Wrap(err, "upload pet image")
	}
	return url, nil, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.api.DeletePet(ctx, id)
}

// FormFor builds the form state, seeded from an existing pet when id is set.
func (s *Service) FormFor(ctx context.Context, id string) (*Form, error) {
	refs, err := s.Refs(ctx)
	if err != nil {
		return nil, err
	}
	var in validation.PetInput
	if id != "" {
		p, err := s.api.GetPet(ctx, id)
		if err != nil {
			return nil, err
		}
		in = validation.FromPet(*p)
	}
	return NewForm(in, refs), nil
}
