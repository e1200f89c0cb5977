package service

import (
	"context"
	"errors"
	"strings"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/content"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type ProductStore interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Update(ctx context.Context, p models.Product) (models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error)
	Delete(ctx context.Context, id string) error
}

type CategoryStore interface {
	Create(ctx context.Context, c models.Category) (models.Category, error)
	Update(ctx context.Context, c models.Category) (models.Category, error)
	GetByID(ctx context.Context, id string) (models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	Delete(ctx context.Context, id string) error
}

type CatalogService struct {
	products   ProductStore
	categories CategoryStore
	activity   *ActivityRecorder
}

func NewCatalogService(products ProductStore, categories CategoryStore, activity *ActivityRecorder) *CatalogService {
	return &CatalogService{products: products, categories: categories, activity: activity}
}

func (s *CatalogService) ListProducts(ctx context.Context, f models.ProductFilter) (models.PageResult[models.Product], error) {
	if f.Status != "" && !validProductStatus(f.Status) {
		return models.PageResult[models.Product]{}, apperr.Validation("Invalid filter", map[string]string{"status": "unknown product status"})
	}
	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return models.PageResult[models.Product]{}, apperr.Internal(err)
	}
	return models.NewPageResult(items, total, f.Page), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, storeError(err, "Product")
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actorID string, p models.Product) (models.Product, error) {
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}
	if err := s.checkProduct(ctx, p); err != nil {
		return models.Product{}, err
	}

	p.ID = ids.New()
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return models.Product{}, storeError(err, "Product")
	}
	s.activity.Record(ctx, &actorID, "product.created", "product", created.ID, map[string]string{"name": created.Name})
	return created, nil
}

// UpdateProduct replaces the product and all of its child rows.
func (s *CatalogService) UpdateProduct(ctx context.Context, actorID, id string, p models.Product) (models.Product, error) {
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}
	if err := s.checkProduct(ctx, p); err != nil {
		return models.Product{}, err
	}

	p.ID = id
	updated, err := s.products.Update(ctx, p)
	if err != nil {
		return models.Product{}, storeError(err, "Product")
	}
	s.activity.Record(ctx, &actorID, "product.updated", "product", id, nil)
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actorID, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return storeError(err, "Product")
	}
	s.activity.Record(ctx, &actorID, "product.deleted", "product", id, nil)
	return nil
}

func (s *CatalogService) checkProduct(ctx context.Context, p models.Product) error {
	fields := map[string]string{}
	if !validProductType(p.Type) {
		fields["type"] = "must be one of GPU_SERVER, CLOUD_INSTANCE, APPLIANCE, MAAS"
	}
	if !validProductStatus(p.Status) {
		fields["status"] = "must be one of ACTIVE, INACTIVE, SOLD_OUT"
	}
	for _, pr := range p.Pricing {
		if pr.PriceCents < 0 {
			fields["pricing"] = "prices cannot be negative"
		}
	}
	if _, err := s.categories.GetByID(ctx, p.CategoryID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return apperr.Internal(err)
		}
		fields["categoryId"] = "unknown category"
	}
	if len(fields) > 0 {
		return apperr.Validation("Invalid product", fields)
	}
	return nil
}

func validProductType(t models.ProductType) bool {
	switch t {
	case models.ProductTypeGPUServer, models.ProductTypeCloudInstance, models.ProductTypeAppliance, models.ProductTypeMaaS:
		return true
	}
	return false
}

func validProductStatus(st models.ProductStatus) bool {
	switch st {
	case models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusSoldOut:
		return true
	}
	return false
}

func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	categories, err := s.categories.List(ctx, !includeInactive)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return models.Category{}, storeError(err, "Category")
	}
	return c, nil
}

// CreateCategory keys the category by the given id, or a slug of its name.
func (s *CatalogService) CreateCategory(ctx context.Context, actorID string, c models.Category) (models.Category, error) {
	id := content.Slugify(strings.TrimSpace(c.ID))
	if id == "" {
		id = content.Slugify(c.Name)
	}
	if id == "" {
		return models.Category{}, apperr.Validation("Invalid category", map[string]string{"id": "cannot derive an id from the name"})
	}
	c.ID = id

	created, err := s.categories.Create(ctx, c)
	if err != nil {
		return models.Category{}, storeError(err, "Category")
	}
	s.activity.Record(ctx, &actorID, "category.created", "category", created.ID, nil)
	return created, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actorID, id string, c models.Category) (models.Category, error) {
	c.ID = id
	updated, err := s.categories.Update(ctx, c)
	if err != nil {
		return models.Category{}, storeError(err, "Category")
	}
	s.activity.Record(ctx, &actorID, "category.updated", "category", id, nil)
	return updated, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, actorID, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return apperr.Conflict("Category still has products")
		}
		return storeError(err, "Category")
	}
	s.activity.Record(ctx, &actorID, "category.deleted", "category", id, nil)
	return nil
}
