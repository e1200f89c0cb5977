package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type OrderStore interface {
	Create(ctx context.Context, o models.Order) (models.Order, error)
	GetByID(ctx context.Context, id string) (models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error)
}

const orderNumberAttempts = 3

type OrderService struct {
	orders   OrderStore
	activity *ActivityRecorder
	now      func() time.Time
}

func NewOrderService(orders OrderStore, activity *ActivityRecorder) *OrderService {
	return &OrderService{orders: orders, activity: activity, now: time.Now}
}

type CreateOrderInput struct {
	UserID       *string
	InquiryID    *string
	CustomerName string
	Email        string
	Currency     string
	Notes        *string
	Items        []models.OrderItem
}

func (s *OrderService) Create(ctx context.Context, actorID string, input CreateOrderInput) (models.Order, error) {
	if len(input.Items) == 0 {
		return models.Order{}, apperr.Validation("Invalid order", map[string]string{"items": "at least one item is required"})
	}

	order := models.Order{
		ID:          ids.New(),
		UserID:      input.UserID,
		InquiryID:   input.InquiryID,
		CustomerRef: strings.TrimSpace(input.CustomerName),
		Email:       normalizeEmail(input.Email),
		Status:      models.OrderPending,
		Currency:    strings.ToUpper(strings.TrimSpace(input.Currency)),
		Notes:       input.Notes,
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}

	for _, item := range input.Items {
		if item.Quantity <= 0 || item.UnitPriceCents < 0 {
			return models.Order{}, apperr.Validation("Invalid order", map[string]string{"items": "quantity must be positive and price non-negative"})
		}
		item.LineTotalCents = int64(item.Quantity) * item.UnitPriceCents
		order.TotalCents += item.LineTotalCents
		order.Items = append(order.Items, item)
	}

	// Order numbers are random; retry on the rare unique collision.
	for attempt := 0; ; attempt++ {
		number, err := ids.OrderNumber(s.now())
		if err != nil {
			return models.Order{}, apperr.Internal(err)
		}
		order.OrderNumber = number

		created, err := s.orders.Create(ctx, order)
		if err == nil {
			s.activity.Record(ctx, &actorID, "order.created", "order", created.ID, map[string]any{
				"orderNumber": created.OrderNumber,
				"totalCents":  created.TotalCents,
			})
			return created, nil
		}
		if !errors.Is(err, repository.ErrConflict) || attempt+1 >= orderNumberAttempts {
			return models.Order{}, storeError(err, "Order")
		}
	}
}

func (s *OrderService) Get(ctx context.Context, id string) (models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return models.Order{}, storeError(err, "Order")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, f models.OrderFilter) (models.PageResult[models.Order], error) {
	if f.Status != "" && !f.Status.Valid() {
		return models.PageResult[models.Order]{}, apperr.Validation("Invalid filter", map[string]string{"status": "unknown order status"})
	}
	items, total, err := s.orders.List(ctx, f)
	if err != nil {
		return models.PageResult[models.Order]{}, apperr.Internal(err)
	}
	return models.NewPageResult(items, total, f.Page), nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, actorID, id string, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, apperr.Validation("Invalid order status", map[string]string{"status": "unknown order status"})
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return models.Order{}, storeError(err, "Order")
	}
	s.activity.Record(ctx, &actorID, "order.status_changed", "order", id, map[string]string{"status": string(status)})
	return o, nil
}
