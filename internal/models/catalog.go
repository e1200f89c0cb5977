package models

import "time"

type ProductType string

const (
	ProductTypeGPUServer     ProductType = "GPU_SERVER"
	ProductTypeCloudInstance ProductType = "CLOUD_INSTANCE"
	ProductTypeAppliance     ProductType = "APPLIANCE"
	ProductTypeMaaS          ProductType = "MAAS"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusSoldOut  ProductStatus = "SOLD_OUT"
)

// Category uses its slug as the natural primary key.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Product struct {
	ID             string                 `json:"id"`
	CategoryID     string                 `json:"categoryId"`
	Name           string                 `json:"name"`
	Type           ProductType            `json:"type"`
	Description    string                 `json:"description"`
	ShortDesc      *string                `json:"shortDescription,omitempty"`
	ImageURL       *string                `json:"imageUrl,omitempty"`
	Regions        []string               `json:"regions"`
	Tags           []string               `json:"tags"`
	Status         ProductStatus          `json:"status"`
	IsFeatured     bool                   `json:"isFeatured"`
	SortOrder      int                    `json:"sortOrder"`
	Features       []ProductFeature       `json:"features"`
	Specifications []ProductSpecification `json:"specifications"`
	Pricing        []ProductPricing       `json:"pricing"`
	UseCases       []ProductUseCase       `json:"useCases"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

type ProductFeature struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	SortOrder   int     `json:"sortOrder"`
}

type ProductSpecification struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	SortOrder int    `json:"sortOrder"`
}

type ProductPricing struct {
	ID           string  `json:"id"`
	Plan         string  `json:"plan"`
	PriceCents   int64   `json:"priceCents"`
	Currency     string  `json:"currency"`
	BillingCycle string  `json:"billingCycle"`
	Note         *string `json:"note,omitempty"`
	SortOrder    int     `json:"sortOrder"`
}

type ProductUseCase struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	SortOrder   int     `json:"sortOrder"`
}

type ProductFilter struct {
	CategoryID string
	Tags       []string
	Region     string
	Search     string
	Status     ProductStatus
	Featured   *bool
	Page       Page
}
