package cafeapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/pkg/errors"
)

func (c *Client) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	out, err := send[models.Order](ctx, c, http.MethodPost, "/orders", req)
	if err == nil && (out == nil || out.ID == "") {
		return nil, errors.New("create order: backend returned no order id")
	}
	return out, err
}

// ConfirmOrder finalizes payment of a created order. The result is nil when
// the backend answers 204.
func (c *Client) ConfirmOrder(ctx context.Context, id string) (*models.Order, error) {
	return send[models.Order](ctx, c, http.MethodPut, pathID("/orders", id)+"/confirm", nil)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return getOne[models.Order](ctx, c, pathID("/orders", id))
}

func (c *Client) ListOrders(ctx context.Context, query url.Values) (List[models.Order], error) {
	return getList[models.Order](ctx, c, "/orders", query)
}

func (c *Client) ListTransactions(ctx context.Context, query url.Values) (List[models.Transaction], error) {
	return getList[models.Transaction](ctx, c, "/transactions", query)
}
