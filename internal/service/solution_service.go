package service

import (
	"context"
	"strings"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/content"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
)

type SolutionStore interface {
	Create(ctx context.Context, s models.Solution) (models.Solution, error)
	Update(ctx context.Context, s models.Solution) (models.Solution, error)
	GetByID(ctx context.Context, id string) (models.Solution, error)
	List(ctx context.Context, activeOnly bool) ([]models.Solution, error)
	Delete(ctx context.Context, id string) error
}

type SolutionService struct {
	solutions SolutionStore
	renderer  *content.Renderer
	activity  *ActivityRecorder
}

func NewSolutionService(solutions SolutionStore, renderer *content.Renderer, activity *ActivityRecorder) *SolutionService {
	return &SolutionService{solutions: solutions, renderer: renderer, activity: activity}
}

func (s *SolutionService) List(ctx context.Context, includeInactive bool) ([]models.Solution, error) {
	items, err := s.solutions.List(ctx, !includeInactive)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// Get accepts either the id or the slug.
func (s *SolutionService) Get(ctx context.Context, idOrSlug string) (models.Solution, error) {
	sol, err := s.solutions.GetByID(ctx, idOrSlug)
	if err != nil {
		return models.Solution{}, storeError(err, "Solution")
	}
	return sol, nil
}

func (s *SolutionService) Create(ctx context.Context, actorID string, sol models.Solution) (models.Solution, error) {
	sol.ID = ids.New()
	if err := s.prepare(&sol); err != nil {
		return models.Solution{}, err
	}
	created, err := s.solutions.Create(ctx, sol)
	if err != nil {
		return models.Solution{}, storeError(err, "Solution")
	}
	s.activity.Record(ctx, &actorID, "solution.created", "solution", created.ID, nil)
	return created, nil
}

// Update replaces the solution, including its benefits list.
func (s *SolutionService) Update(ctx context.Context, actorID, id string, sol models.Solution) (models.Solution, error) {
	sol.ID = id
	if err := s.prepare(&sol); err != nil {
		return models.Solution{}, err
	}
	updated, err := s.solutions.Update(ctx, sol)
	if err != nil {
		return models.Solution{}, storeError(err, "Solution")
	}
	s.activity.Record(ctx, &actorID, "solution.updated", "solution", id, nil)
	return updated, nil
}

func (s *SolutionService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.solutions.Delete(ctx, id); err != nil {
		return storeError(err, "Solution")
	}
	s.activity.Record(ctx, &actorID, "solution.deleted", "solution", id, nil)
	return nil
}

func (s *SolutionService) prepare(sol *models.Solution) error {
	sol.Title = strings.TrimSpace(sol.Title)
	slug := content.Slugify(sol.Slug)
	if slug == "" {
		slug = content.Slugify(sol.Title)
	}
	if slug == "" {
		return apperr.Validation("Invalid solution", map[string]string{"title": "must contain letters or digits"})
	}
	sol.Slug = slug

	html, err := s.renderer.Render(sol.Body)
	if err != nil {
		return apperr.Validation("Invalid solution", map[string]string{"body": "could not be rendered"})
	}
	sol.BodyHTML = html
	return nil
}
