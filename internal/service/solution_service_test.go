package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/content"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type memorySolutions map[string]models.Solution

func (m memorySolutions) Create(_ context.Context, s models.Solution) (models.Solution, error) {
	m[s.ID] = s
	return s, nil
}

func (m memorySolutions) Update(_ context.Context, s models.Solution) (models.Solution, error) {
	if _, ok := m[s.ID]; !ok {
		return models.Solution{}, repository.ErrNotFound
	}
	m[s.ID] = s
	return s, nil
}

func (m memorySolutions) GetByID(_ context.Context, id string) (models.Solution, error) {
	for _, s := range m {
		if s.ID == id || s.Slug == id {
			return s, nil
		}
	}
	return models.Solution{}, repository.ErrNotFound
}

func (m memorySolutions) List(_ context.Context, activeOnly bool) ([]models.Solution, error) {
	var out []models.Solution
	for _, s := range m {
		if !activeOnly || s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m memorySolutions) Delete(_ context.Context, id string) error {
	if _, ok := m[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m, id)
	return nil
}

func newSolutionFixture() (*SolutionService, memorySolutions) {
	store := memorySolutions{}
	return NewSolutionService(store, content.NewRenderer(), NewActivityRecorder(&memoryActivity{}, zerolog.Nop())), store
}

func TestSolutionUpdateReplacesBenefits(t *testing.T) {
	svc, _ := newSolutionFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin-1", models.Solution{
		Title:    " AI Training ",
		Body:     "# Train faster",
		IsActive: true,
		Benefits: []models.SolutionBenefit{{Title: "Throughput"}, {Title: "Cost"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "AI Training", created.Title)
	assert.Equal(t, "ai-training", created.Slug)
	assert.Contains(t, created.BodyHTML, "Train faster</h1>")

	_, err = svc.Update(ctx, "admin-1", created.ID, models.Solution{
		Title:    "AI Training",
		Body:     "Train faster",
		Benefits: []models.SolutionBenefit{{Title: "Support"}},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "ai-training")
	require.NoError(t, err)
	require.Len(t, got.Benefits, 1)
	assert.Equal(t, "Support", got.Benefits[0].Title)
	assert.False(t, got.IsActive)

	visible, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSolutionValidationAndMissing(t *testing.T) {
	svc, store := newSolutionFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin-1", models.Solution{Title: "???"})
	assert.Contains(t, validationFields(t, err), "title")
	assert.Empty(t, store)

	_, err = svc.Update(ctx, "admin-1", "missing", models.Solution{Title: "Edge"})
	assertKind(t, err, apperr.KindNotFound)

	err = svc.Delete(ctx, "admin-1", "missing")
	assertKind(t, err, apperr.KindNotFound)
}
