package handlers

import (
	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/response"
	"computing-marketplace/api/internal/service"
)

type orderItemRequest struct {
	ProductID      *string `json:"productId"`
	Description    string  `json:"description" binding:"required,max=300"`
	Quantity       int     `json:"quantity" binding:"required,gt=0"`
	UnitPriceCents int64   `json:"unitPriceCents" binding:"gte=0"`
}

type orderRequest struct {
	UserID       *string            `json:"userId"`
	InquiryID    *string            `json:"inquiryId"`
	CustomerName string             `json:"customerName" binding:"required,max=200"`
	Email        string             `json:"email" binding:"required,email"`
	Currency     string             `json:"currency" binding:"omitempty,len=3"`
	Notes        *string            `json:"notes"`
	Items        []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (h HandlerSet) ListOrders(c *gin.Context) {
	page, err := h.svc.Orders.List(c.Request.Context(), models.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   pageFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", page)
}

func (h HandlerSet) GetOrder(c *gin.Context) {
	o, err := h.svc.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", o)
}

func (h HandlerSet) CreateOrder(c *gin.Context) {
	var req orderRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:      trimmed(it.ProductID),
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}

	o, err := h.svc.Orders.Create(c.Request.Context(), actorID(c), service.CreateOrderInput{
		UserID:       trimmed(req.UserID),
		InquiryID:    trimmed(req.InquiryID),
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Currency:     req.Currency,
		Notes:        trimmed(req.Notes),
		Items:        items,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Order created", o)
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (h HandlerSet) UpdateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.svc.Orders.UpdateStatus(c.Request.Context(), actorID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Order status updated", o)
}
