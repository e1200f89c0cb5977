package handlers

import (
	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/response"
)

func (h HandlerSet) DashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", stats)
}

func (h HandlerSet) InquiryTrend(c *gin.Context) {
	points, err := h.svc.Dashboard.InquiryTrend(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", points)
}

func (h HandlerSet) Kanban(c *gin.Context) {
	columns, err := h.svc.Dashboard.Kanban(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", columns)
}

func (h HandlerSet) RecentActivity(c *gin.Context) {
	logs, err := h.svc.Dashboard.RecentActivity(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", logs)
}
