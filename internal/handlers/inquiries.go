package handlers

import (
	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/response"
	"computing-marketplace/api/internal/service"
)

type inquiryRequest struct {
	ProductID   *string `json:"productId"`
	FullName    string  `json:"fullName" binding:"required,max=120"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=40"`
	CompanyName *string `json:"companyName" binding:"omitempty,max=200"`
	Region      *string `json:"region" binding:"omitempty,max=80"`
	Budget      *string `json:"budget" binding:"omitempty,max=80"`
	Message     string  `json:"message" binding:"required,min=5,max=5000"`
	Source      string  `json:"source" binding:"omitempty,max=60"`
}

func (h HandlerSet) SubmitInquiry(c *gin.Context) {
	var req inquiryRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := h.svc.Inquiries.Submit(c.Request.Context(), service.SubmitInquiryInput{
		ProductID:   trimmed(req.ProductID),
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       trimmed(req.Phone),
		CompanyName: trimmed(req.CompanyName),
		Region:      trimmed(req.Region),
		Budget:      trimmed(req.Budget),
		Message:     req.Message,
		Source:      req.Source,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Inquiry submitted", in)
}

func (h HandlerSet) ListInquiries(c *gin.Context) {
	page, err := h.svc.Inquiries.List(c.Request.Context(), models.InquiryFilter{
		Status:   models.InquiryStatus(c.Query("status")),
		Priority: models.InquiryPriority(c.Query("priority")),
		Search:   c.Query("search"),
		Page:     pageFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", page)
}

func (h HandlerSet) GetInquiry(c *gin.Context) {
	in, err := h.svc.Inquiries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", in)
}

type inquiryPatchRequest struct {
	Status     *models.InquiryStatus   `json:"status"`
	Priority   *models.InquiryPriority `json:"priority"`
	Notes      *string                 `json:"notes" binding:"omitempty,max=5000"`
	AssignedTo *string                 `json:"assignedTo"`
}

func (h HandlerSet) UpdateInquiry(c *gin.Context) {
	var req inquiryPatchRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := h.svc.Inquiries.Update(c.Request.Context(), actorID(c), c.Param("id"), models.InquiryPatch{
		Status:     req.Status,
		Priority:   req.Priority,
		Notes:      req.Notes,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Inquiry updated", in)
}

func (h HandlerSet) DeleteInquiry(c *gin.Context) {
	if err := h.svc.Inquiries.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Inquiry deleted", nil)
}
