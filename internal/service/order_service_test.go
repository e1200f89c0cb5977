package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type flakyOrders struct {
	conflicts int
	numbers   []string
}

func (f *flakyOrders) Create(_ context.Context, o models.Order) (models.Order, error) {
	f.numbers = append(f.numbers, o.OrderNumber)
	if f.conflicts > 0 {
		f.conflicts--
		return models.Order{}, repository.ErrConflict
	}
	return o, nil
}

func (f *flakyOrders) GetByID(context.Context, string) (models.Order, error) {
	return models.Order{}, repository.ErrNotFound
}

func (f *flakyOrders) List(context.Context, models.OrderFilter) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *flakyOrders) UpdateStatus(_ context.Context, id string, status models.OrderStatus) (models.Order, error) {
	return models.Order{ID: id, Status: status}, nil
}

func TestCreateOrderComputesTotals(t *testing.T) {
	store := &flakyOrders{}
	svc := NewOrderService(store, nil)

	order, err := svc.Create(context.Background(), "admin", CreateOrderInput{
		CustomerName: " Acme Corp ",
		Email:        "Ops@Acme.io",
		Currency:     "eur",
		Items: []models.OrderItem{
			{Description: "GPU node", Quantity: 2, UnitPriceCents: 150000},
			{Description: "Setup", Quantity: 1, UnitPriceCents: 9900},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", order.CustomerRef)
	assert.Equal(t, "ops@acme.io", order.Email)
	assert.Equal(t, "EUR", order.Currency)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, int64(300000), order.Items[0].LineTotalCents)
	assert.Equal(t, int64(309900), order.TotalCents)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := NewOrderService(&flakyOrders{}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin", CreateOrderInput{CustomerName: "x", Email: "x@y.z"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Create(ctx, "admin", CreateOrderInput{
		CustomerName: "x",
		Email:        "x@y.z",
		Items:        []models.OrderItem{{Description: "bad", Quantity: 0, UnitPriceCents: 10}},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.UpdateStatus(ctx, "admin", "o1", models.OrderStatus("SHIPPED"))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateOrderRetriesNumberCollisions(t *testing.T) {
	items := []models.OrderItem{{Description: "CPU", Quantity: 1, UnitPriceCents: 100}}

	store := &flakyOrders{conflicts: 2}
	_, err := NewOrderService(store, nil).Create(context.Background(), "admin", CreateOrderInput{CustomerName: "a", Email: "a@b.c", Items: items})
	require.NoError(t, err)
	assert.Len(t, store.numbers, 3)

	store = &flakyOrders{conflicts: 3}
	_, err = NewOrderService(store, nil).Create(context.Background(), "admin", CreateOrderInput{CustomerName: "a", Email: "a@b.c", Items: items})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Len(t, store.numbers, 3)
}
