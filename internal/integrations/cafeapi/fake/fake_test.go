package fake

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/stretchr/testify/require"
)

func TestBackend_PetLifecycle(t *testing.T) {
	b := NewSeeded()
	ctx := context.Background()

	created, err := b.CreatePet(ctx, models.Pet{Name: "Sữa", SpeciesID: "sp-cat"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := b.GetPet(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Sữa", got.Name)

	require.NoError(t, b.DeletePet(ctx, created.ID))
	_, err = b.GetPet(ctx, created.ID)
	require.ErrorIs(t, err, cafeapi.ErrPetNotFound)
}

func TestBackend_FailOn(t *testing.T) {
	b := NewSeeded()
	boom := errors.New("boom")
	b.FailOn("UpdatePet", "pet-2", boom)

	_, err := b.UpdatePet(context.Background(), "pet-1", models.Pet{Name: "Mochi"})
	require.NoError(t, err)
	_, err = b.UpdatePet(context.Background(), "pet-2", models.Pet{Name: "Bơ"})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, b.Calls("UpdatePet"))
}

func TestBackend_Orders(t *testing.T) {
	b := NewSeeded()
	ctx := context.Background()

	o, err := b.CreateOrder(ctx, models.OrderRequest{
		PaymentMethod: models.PaymentMethodBankTransfer,
		Products:      []models.OrderProductLine{{ProductID: "prd-latte", Quantity: 2}},
		Services:      []models.OrderServiceLine{{ServiceID: "srv-groom", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(220000), o.TotalAmount)
	require.Equal(t, "INV-000001", o.InvoiceID)
	require.Equal(t, models.OrderStatusPending, o.Status)

	_, err = b.ConfirmOrder(ctx, o.ID)
	require.NoError(t, err)
	got, err := b.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, got.Status)

	l, err := b.ListOrders(ctx, url.Values{"limit": {"1"}})
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	require.Equal(t, 1, l.Pagination.TotalPages)

	tx, err := b.ListTransactions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tx.Items, 1)
}

func TestBackend_GetOrder_NotFound(t *testing.T) {
	_, err := New().GetOrder(context.Background(), "missing")
	require.Equal(t, 404, cafeapi.StatusCode(err))
}
