package cafeapi

import (
	"context"
	"net/http"

	"github.com/BearBump/PetCafe/internal/models"
)

func (c *Client) ListGroups(ctx context.Context) ([]models.PetGroup, error) {
	l, err := getList[models.PetGroup](ctx, c, "/pet-groups", nil)
	return l.Items, err
}

func (c *Client) GetGroup(ctx context.Context, id string) (*models.PetGroup, error) {
	return getOne[models.PetGroup](ctx, c, pathID("/pet-groups", id))
}

func (c *Client) CreateGroup(ctx context.Context, g models.PetGroup) (*models.PetGroup, error) {
	return sendRecord(ctx, c, http.MethodPost, "/pet-groups", g)
}

func (c *Client) UpdateGroup(ctx context.Context, id string, g models.PetGroup) (*models.PetGroup, error) {
	g.ID = id
	return sendRecord(ctx, c, http.MethodPut, pathID("/pet-groups", id), g)
}

func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, pathID("/pet-groups", id), nil, nil)
	return err
}
