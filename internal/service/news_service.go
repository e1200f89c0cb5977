package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/content"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
)

type NewsStore interface {
	Create(ctx context.Context, n models.NewsArticle) (models.NewsArticle, error)
	Update(ctx context.Context, n models.NewsArticle) (models.NewsArticle, error)
	GetByID(ctx context.Context, id string) (models.NewsArticle, error)
	GetBySlug(ctx context.Context, slug string) (models.NewsArticle, error)
	SlugExists(ctx context.Context, slug string, exceptID string) (bool, error)
	List(ctx context.Context, f models.NewsFilter) ([]models.NewsArticle, int64, error)
	Delete(ctx context.Context, id string) error
}

type NewsService struct {
	news     NewsStore
	renderer *content.Renderer
	activity *ActivityRecorder
	now      func() time.Time
}

func NewNewsService(news NewsStore, renderer *content.Renderer, activity *ActivityRecorder) *NewsService {
	return &NewsService{news: news, renderer: renderer, activity: activity, now: time.Now}
}

type NewsInput struct {
	Title      string
	Slug       string
	Summary    *string
	Body       string
	CoverImage *string
	Tags       []string
	Status     models.NewsStatus
}

// List shows only published articles unless the caller may see drafts.
func (s *NewsService) List(ctx context.Context, f models.NewsFilter, canSeeDrafts bool) (models.PageResult[models.NewsArticle], error) {
	if !canSeeDrafts {
		f.Status = models.NewsPublished
	} else if f.Status != "" && !f.Status.Valid() {
		return models.PageResult[models.NewsArticle]{}, apperr.Validation("Invalid filter", map[string]string{"status": "unknown news status"})
	}

	items, total, err := s.news.List(ctx, f)
	if err != nil {
		return models.PageResult[models.NewsArticle]{}, apperr.Internal(err)
	}
	return models.NewPageResult(items, total, f.Page), nil
}

func (s *NewsService) GetBySlug(ctx context.Context, slug string, canSeeDrafts bool) (models.NewsArticle, error) {
	n, err := s.news.GetBySlug(ctx, slug)
	if err != nil {
		return models.NewsArticle{}, storeError(err, "Article")
	}
	if n.Status != models.NewsPublished && !canSeeDrafts {
		return models.NewsArticle{}, apperr.NotFound("Article not found")
	}
	return n, nil
}

func (s *NewsService) Create(ctx context.Context, actorID string, input NewsInput) (models.NewsArticle, error) {
	article := models.NewsArticle{ID: ids.New(), AuthorID: &actorID}
	if err := s.apply(ctx, &article, input); err != nil {
		return models.NewsArticle{}, err
	}

	created, err := s.news.Create(ctx, article)
	if err != nil {
		return models.NewsArticle{}, storeError(err, "Article")
	}
	s.activity.Record(ctx, &actorID, "news.created", "news", created.ID, map[string]string{"slug": created.Slug})
	return created, nil
}

func (s *NewsService) Update(ctx context.Context, actorID, id string, input NewsInput) (models.NewsArticle, error) {
	article, err := s.news.GetByID(ctx, id)
	if err != nil {
		return models.NewsArticle{}, storeError(err, "Article")
	}
	if err := s.apply(ctx, &article, input); err != nil {
		return models.NewsArticle{}, err
	}

	updated, err := s.news.Update(ctx, article)
	if err != nil {
		return models.NewsArticle{}, storeError(err, "Article")
	}
	s.activity.Record(ctx, &actorID, "news.updated", "news", id, nil)
	return updated, nil
}

func (s *NewsService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.news.Delete(ctx, id); err != nil {
		return storeError(err, "Article")
	}
	s.activity.Record(ctx, &actorID, "news.deleted", "news", id, nil)
	return nil
}

func (s *NewsService) apply(ctx context.Context, article *models.NewsArticle, input NewsInput) error {
	status := input.Status
	if status == "" {
		status = models.NewsDraft
	}
	if !status.Valid() {
		return apperr.Validation("Invalid article", map[string]string{"status": "must be one of DRAFT, PUBLISHED, ARCHIVED"})
	}

	html, err := s.renderer.Render(input.Body)
	if err != nil {
		return apperr.Validation("Invalid article", map[string]string{"body": "could not be rendered"})
	}

	base := content.Slugify(input.Slug)
	if base == "" {
		base = content.Slugify(input.Title)
	}
	if base == "" {
		return apperr.Validation("Invalid article", map[string]string{"title": "must contain letters or digits"})
	}
	slug, err := s.uniqueSlug(ctx, base, article.ID)
	if err != nil {
		return err
	}

	article.Title = strings.TrimSpace(input.Title)
	article.Slug = slug
	article.Summary = input.Summary
	article.Body = input.Body
	article.BodyHTML = html
	article.CoverImage = input.CoverImage
	article.Tags = input.Tags
	if status == models.NewsPublished && article.PublishedAt == nil {
		now := s.now().UTC()
		article.PublishedAt = &now
	}
	article.Status = status
	return nil
}

// uniqueSlug appends -2, -3, ... until no other article holds the slug.
func (s *NewsService) uniqueSlug(ctx context.Context, base, exceptID string) (string, error) {
	candidate := base
	for i := 2; i < 100; i++ {
		taken, err := s.news.SlugExists(ctx, candidate, exceptID)
		if err != nil {
			return "", apperr.Internal(err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperr.Conflict("Could not allocate a unique slug")
}
