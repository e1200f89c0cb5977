package models

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	UserID      *string     `json:"userId,omitempty"`
	InquiryID   *string     `json:"inquiryId,omitempty"`
	CustomerRef string      `json:"customerName"`
	Email       string      `json:"email"`
	Status      OrderStatus `json:"status"`
	Currency    string      `json:"currency"`
	TotalCents  int64       `json:"totalCents"`
	Notes       *string     `json:"notes,omitempty"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID             string  `json:"id"`
	ProductID      *string `json:"productId,omitempty"`
	Description    string  `json:"description"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	LineTotalCents int64   `json:"lineTotalCents"`
}

type OrderFilter struct {
	Status OrderStatus
	Search string
	Page   Page
}
