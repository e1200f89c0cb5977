package models

import "time"

type NewsStatus string

const (
	NewsDraft     NewsStatus = "DRAFT"
	NewsPublished NewsStatus = "PUBLISHED"
	NewsArchived  NewsStatus = "ARCHIVED"
)

func (s NewsStatus) Valid() bool {
	switch s {
	case NewsDraft, NewsPublished, NewsArchived:
		return true
	}
	return false
}

type NewsArticle struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     *string    `json:"summary,omitempty"`
	Body        string     `json:"body"`
	BodyHTML    string     `json:"bodyHtml"`
	CoverImage  *string    `json:"coverImage,omitempty"`
	Tags        []string   `json:"tags"`
	Status      NewsStatus `json:"status"`
	AuthorID    *string    `json:"authorId,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type NewsFilter struct {
	Status NewsStatus
	Tag    string
	Search string
	Page   Page
}

type Solution struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Industry    *string           `json:"industry,omitempty"`
	Summary     *string           `json:"summary,omitempty"`
	Body        string            `json:"body"`
	BodyHTML    string            `json:"bodyHtml"`
	ImageURL    *string           `json:"imageUrl,omitempty"`
	IsActive    bool              `json:"isActive"`
	SortOrder   int               `json:"sortOrder"`
	Benefits    []SolutionBenefit `json:"benefits"`
	ProductIDs  []string          `json:"productIds"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type SolutionBenefit struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	SortOrder   int     `json:"sortOrder"`
}

type NavigationItem struct {
	ID        string            `json:"id"`
	ParentID  *string           `json:"parentId,omitempty"`
	Label     string            `json:"label"`
	Href      string            `json:"href"`
	SortOrder int               `json:"sortOrder"`
	IsVisible bool              `json:"isVisible"`
	Children  []*NavigationItem `json:"children,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
