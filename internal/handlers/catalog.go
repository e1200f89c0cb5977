package handlers

import (
	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/response"
)

type productRequest struct {
	CategoryID       string                        `json:"categoryId" binding:"required"`
	Name             string                        `json:"name" binding:"required,max=200"`
	Type             models.ProductType            `json:"type" binding:"required"`
	Description      string                        `json:"description"`
	ShortDescription *string                       `json:"shortDescription" binding:"omitempty,max=500"`
	ImageURL         *string                       `json:"imageUrl"`
	Regions          []string                      `json:"regions"`
	Tags             []string                      `json:"tags"`
	Status           models.ProductStatus          `json:"status"`
	IsFeatured       bool                          `json:"isFeatured"`
	SortOrder        int                           `json:"sortOrder"`
	Features         []models.ProductFeature       `json:"features"`
	Specifications   []models.ProductSpecification `json:"specifications"`
	Pricing          []models.ProductPricing       `json:"pricing"`
	UseCases         []models.ProductUseCase       `json:"useCases"`
}

func (r productRequest) model() models.Product {
	return models.Product{
		CategoryID:     r.CategoryID,
		Name:           r.Name,
		Type:           r.Type,
		Description:    r.Description,
		ShortDesc:      trimmed(r.ShortDescription),
		ImageURL:       trimmed(r.ImageURL),
		Regions:        r.Regions,
		Tags:           r.Tags,
		Status:         r.Status,
		IsFeatured:     r.IsFeatured,
		SortOrder:      r.SortOrder,
		Features:       r.Features,
		Specifications: r.Specifications,
		Pricing:        r.Pricing,
		UseCases:       r.UseCases,
	}
}

// ListProducts shows only active products to the public unless a status is requested.
func (h HandlerSet) ListProducts(c *gin.Context) {
	f := models.ProductFilter{
		CategoryID: c.Query("category"),
		Tags:       splitList(c.QueryArray("tags")),
		Region:     c.Query("region"),
		Search:     c.Query("search"),
		Status:     models.ProductStatus(c.Query("status")),
		Page:       pageFrom(c),
	}
	if f.Status == "" && !hasRole(c, models.RoleAdmin, models.RoleSales) {
		f.Status = models.ProductStatusActive
	}
	if raw := c.Query("featured"); raw != "" {
		featured := queryBool(c, "featured")
		f.Featured = &featured
	}

	page, err := h.svc.Catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", page)
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	p, err := h.svc.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", p)
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Catalog.CreateProduct(c.Request.Context(), actorID(c), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Product created", p)
}

func (h HandlerSet) UpdateProduct(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Catalog.UpdateProduct(c.Request.Context(), actorID(c), c.Param("id"), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Product updated", p)
}

func (h HandlerSet) DeleteProduct(c *gin.Context) {
	if err := h.svc.Catalog.DeleteProduct(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Product deleted", nil)
}

type categoryRequest struct {
	ID          string  `json:"id" binding:"omitempty,max=96"`
	Name        string  `json:"name" binding:"required,max=120"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	SortOrder   int     `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}

func (r categoryRequest) model() models.Category {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: trimmed(r.Description),
		Icon:        trimmed(r.Icon),
		SortOrder:   r.SortOrder,
		IsActive:    active,
	}
}

func (h HandlerSet) ListCategories(c *gin.Context) {
	includeInactive := queryBool(c, "includeInactive") && hasRole(c, models.RoleAdmin)
	categories, err := h.svc.Catalog.ListCategories(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", categories)
}

func (h HandlerSet) GetCategory(c *gin.Context) {
	cat, err := h.svc.Catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "", cat)
}

func (h HandlerSet) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.svc.Catalog.CreateCategory(c.Request.Context(), actorID(c), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Category created", cat)
}

func (h HandlerSet) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.svc.Catalog.UpdateCategory(c.Request.Context(), actorID(c), c.Param("id"), req.model())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Category updated", cat)
}

func (h HandlerSet) DeleteCategory(c *gin.Context) {
	if err := h.svc.Catalog.DeleteCategory(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, "Category deleted", nil)
}
