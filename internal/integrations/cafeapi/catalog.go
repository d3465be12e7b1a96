package cafeapi

import (
	"context"
	"net/url"

	"github.com/BearBump/PetCafe/internal/models"
)

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	l, err := getList[models.Product](ctx, c, "/products", nil)
	return l.Items, err
}

func (c *Client) ListProductCategories(ctx context.Context) ([]models.ProductCategory, error) {
	l, err := getList[models.ProductCategory](ctx, c, "/product-categories", nil)
	return l.Items, err
}

func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	l, err := getList[models.Service](ctx, c, "/services", nil)
	return l.Items, err
}

func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	l, err := getList[models.Team](ctx, c, "/teams", nil)
	return l.Items, err
}

func (c *Client) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	return getOne[models.Team](ctx, c, pathID("/teams", id))
}

func (c *Client) ListNotifications(ctx context.Context, query url.Values) (List[models.Notification], error) {
	return getList[models.Notification](ctx, c, "/notifications", query)
}
