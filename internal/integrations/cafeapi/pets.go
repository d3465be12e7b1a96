package cafeapi

import (
	"context"
	"net/http"

	"github.com/BearBump/PetCafe/internal/models"
)

func (c *Client) ListPets(ctx context.Context) ([]models.Pet, error) {
	l, err := getList[models.Pet](ctx, c, "/pets", nil)
	return l.Items, err
}

func (c *Client) GetPet(ctx context.Context, id string) (*models.Pet, error) {
	p, err := getOne[models.Pet](ctx, c, pathID("/pets", id))
	return p, petNotFound(err)
}

func (c *Client) CreatePet(ctx context.Context, p models.Pet) (*models.Pet, error) {
	return sendRecord(ctx, c, http.MethodPost, "/pets", p)
}

// UpdatePet sends the whole record; the backend has no partial update.
func (c *Client) UpdatePet(ctx context.Context, id string, p models.Pet) (*models.Pet, error) {
	p.ID = id
	out, err := sendRecord(ctx, c, http.MethodPut, pathID("/pets", id), p)
	return out, petNotFound(err)
}

func (c *Client) DeletePet(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, pathID("/pets", id), nil, nil)
	return petNotFound(err)
}

func (c *Client) ListHealthRecords(ctx context.Context, petID string) ([]models.HealthRecord, error) {
	l, err := getList[models.HealthRecord](ctx, c, pathID("/pets", petID)+"/health-records", nil)
	return l.Items, petNotFound(err)
}

func (c *Client) ListVaccinationRecords(ctx context.Context, petID string) ([]models.VaccinationRecord, error) {
	l, err := getList[models.VaccinationRecord](ctx, c, pathID("/pets", petID)+"/vaccination-records", nil)
	return l.Items, petNotFound(err)
}

func (c *Client) HealthStatusOptions(ctx context.Context) ([]models.HealthStatusOption, error) {
	l, err := getList[models.HealthStatusOption](ctx, c, "/pets/health-status-options", nil)
	return l.Items, err
}

func (c *Client) ListSpecies(ctx context.Context) ([]models.Species, error) {
	l, err := getList[models.Species](ctx, c, "/pet-species", nil)
	return l.Items, err
}

func (c *Client) ListBreeds(ctx context.Context) ([]models.Breed, error) {
	l, err := getList[models.Breed](ctx, c, "/pet-breeds", nil)
	return l.Items, err
}

func petNotFound(err error) error {
	if err != nil && StatusCode(err) == http.StatusNotFound {
		return ErrPetNotFound
	}
	return err
}
