package handlers

import (
	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/response"
	"computing-marketplace/api/internal/service"
)

type newsRequest struct {
	Title      string            `json:"title" binding:"required,max=200"`
	Slug       string            `json:"slug" binding:"omitempty,max=96"`
	Summary    *string           `json:"summary" binding:"omitempty,max=500"`
	Body       string            `json:"body" binding:"required"`
	CoverImage *string           `json:"coverImage"`
	Tags       []string          `json:"tags"`
	Status     models.NewsStatus `json:"status"`
}

func (r newsRequest) input() service.NewsInput {
	return service.NewsInput{
		Title:      r.Title,
		Slug:       r.Slug,
		Summary:    trimmed(r.Summary),
		Body:       r.Body,
		CoverImage: trimmed(r.CoverImage),
		Tags:       r.Tags,
		Status:     r.Status,
	}
}

func (h HandlerSet) ListNews(c *gin.Context) {
	page, err := h.svc.News.List(c.Request.Context(), models.NewsFilter{
		Status: models.NewsStatus(c.Query("status")),
		Tag:    c.Query("tag"),
		Search: c.Query("search"),
		Page:   pageFrom(c),
	}, hasRole(c, models.RoleAdmin))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", page)
}

// GetNews looks the article up by slug.
func (h HandlerSet) GetNews(c *gin.Context) {
	article, err := h.svc.News.GetBySlug(c.Request.Context(), c.Param("id"), hasRole(c, models.RoleAdmin))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", article)
}

func (h HandlerSet) CreateNews(c *gin.Context) {
	var req newsRequest
	if !bindJSON(c, &req) {
		return
	}
	article, err := h.svc.News.Create(c.Request.Context(), actorID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Article created", article)
}

func (h HandlerSet) UpdateNews(c *gin.Context) {
	var req newsRequest
	if !bindJSON(c, &req) {
		return
	}
	article, err := h.svc.News.Update(c.Request.Context(), actorID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Article updated", article)
}

func (h HandlerSet) DeleteNews(c *gin.Context) {
	if err := h.svc.News.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Article deleted", nil)
}

type solutionRequest struct {
	Title      string                   `json:"title" binding:"required,max=200"`
	Slug       string                   `json:"slug" binding:"omitempty,max=96"`
	Industry   *string                  `json:"industry"`
	Summary    *string                  `json:"summary" binding:"omitempty,max=500"`
	Body       string                   `json:"body"`
	ImageURL   *string                  `json:"imageUrl"`
	IsActive   *bool                    `json:"isActive"`
	SortOrder  int                      `json:"sortOrder"`
	Benefits   []models.SolutionBenefit `json:"benefits"`
	ProductIDs []string                 `json:"productIds"`
}

func (r solutionRequest) model() models.Solution {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Solution{
		Title:      r.Title,
		Slug:       r.Slug,
		Industry:   trimmed(r.Industry),
		Summary:    trimmed(r.Summary),
		Body:       r.Body,
		ImageURL:   trimmed(r.ImageURL),
		IsActive:   active,
		SortOrder:  r.SortOrder,
		Benefits:   r.Benefits,
		ProductIDs: r.ProductIDs,
	}
}

func (h HandlerSet) ListSolutions(c *gin.Context) {
	includeInactive := queryBool(c, "includeInactive") && hasRole(c, models.RoleAdmin)
	solutions, err := h.svc.Solutions.List(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", solutions)
}

func (h HandlerSet) GetSolution(c *gin.Context) {
	sol, err := h.svc.Solutions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", sol)
}

func (h HandlerSet) CreateSolution(c *gin.Context) {
	var req solutionRequest
	if !bindJSON(c, &req) {
		return
	}
	sol, err := h.svc.Solutions.Create(c.Request.Context(), actorID(c), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Solution created", sol)
}

func (h HandlerSet) UpdateSolution(c *gin.Context) {
	var req solutionRequest
	if !bindJSON(c, &req) {
		return
	}
	sol, err := h.svc.Solutions.Update(c.Request.Context(), actorID(c), c.Param("id"), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Solution updated", sol)
}

func (h HandlerSet) DeleteSolution(c *gin.Context) {
	if err := h.svc.Solutions.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Solution deleted", nil)
}

type navigationRequest struct {
	ParentID  *string `json:"parentId"`
	Label     string  `json:"label" binding:"required,max=120"`
	Href      string  `json:"href" binding:"required,max=500"`
	SortOrder int     `json:"sortOrder"`
	IsVisible *bool   `json:"isVisible"`
}

func (r navigationRequest) model() models.NavigationItem {
	visible := true
	if r.IsVisible != nil {
		visible = *r.IsVisible
	}
	return models.NavigationItem{
		ParentID:  trimmed(r.ParentID),
		Label:     r.Label,
		Href:      r.Href,
		SortOrder: r.SortOrder,
		IsVisible: visible,
	}
}

// NavigationTree hides invisible items unless an admin asks for ?all=true.
func (h HandlerSet) NavigationTree(c *gin.Context) {
	includeHidden := queryBool(c, "all") && hasRole(c, models.RoleAdmin)
	tree, err := h.svc.Navigation.Tree(c.Request.Context(), includeHidden)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", tree)
}

func (h HandlerSet) CreateNavigationItem(c *gin.Context) {
	var req navigationRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Navigation.Create(c.Request.Context(), actorID(c), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Navigation item created", item)
}

func (h HandlerSet) UpdateNavigationItem(c *gin.Context) {
	var req navigationRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Navigation.Update(c.Request.Context(), actorID(c), c.Param("id"), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Navigation item updated", item)
}

func (h HandlerSet) DeleteNavigationItem(c *gin.Context) {
	if err := h.svc.Navigation.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Navigation item deleted", nil)
}
