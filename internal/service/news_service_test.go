package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/content"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type memoryNews struct {
	byID    map[string]models.NewsArticle
	filters []models.NewsFilter
}

func (m *memoryNews) Create(_ context.Context, n models.NewsArticle) (models.NewsArticle, error) {
	m.byID[n.ID] = n
	return n, nil
}

func (m *memoryNews) Update(_ context.Context, n models.NewsArticle) (models.NewsArticle, error) {
	m.byID[n.ID] = n
	return n, nil
}

func (m *memoryNews) GetByID(_ context.Context, id string) (models.NewsArticle, error) {
	n, ok := m.byID[id]
	if !ok {
		return models.NewsArticle{}, repository.ErrNotFound
	}
	return n, nil
}

func (m *memoryNews) GetBySlug(_ context.Context, slug string) (models.NewsArticle, error) {
	for _, n := range m.byID {
		if n.Slug == slug {
			return n, nil
		}
	}
	return models.NewsArticle{}, repository.ErrNotFound
}

func (m *memoryNews) SlugExists(_ context.Context, slug string, exceptID string) (bool, error) {
	for _, n := range m.byID {
		if n.Slug == slug && n.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryNews) List(_ context.Context, f models.NewsFilter) ([]models.NewsArticle, int64, error) {
	m.filters = append(m.filters, f)
	var out []models.NewsArticle
	for _, n := range m.byID {
		if f.Status == "" || n.Status == f.Status {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryNews) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newNewsFixture() (*NewsService, *memoryNews) {
	store := &memoryNews{byID: map[string]models.NewsArticle{}}
	svc := NewNewsService(store, content.NewRenderer(), NewActivityRecorder(&memoryActivity{}, zerolog.Nop()))
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestNewsDraftsHiddenFromPublic(t *testing.T) {
	svc, store := newNewsFixture()
	ctx := context.Background()

	draft, err := svc.Create(ctx, "admin-1", NewsInput{Title: "Roadmap", Body: "soon"})
	require.NoError(t, err)
	assert.Equal(t, models.NewsDraft, draft.Status)
	assert.Nil(t, draft.PublishedAt)

	published, err := svc.Create(ctx, "admin-1", NewsInput{Title: "H200 available", Body: "now", Status: models.NewsPublished})
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)

	page, err := svc.List(ctx, models.NewsFilter{Status: models.NewsDraft}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, published.ID, page.Items[0].ID)
	assert.Equal(t, models.NewsPublished, store.filters[0].Status)

	_, err = svc.GetBySlug(ctx, "roadmap", false)
	assertKind(t, err, apperr.KindNotFound)

	got, err := svc.GetBySlug(ctx, "roadmap", true)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	page, err = svc.List(ctx, models.NewsFilter{}, true)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	_, err = svc.List(ctx, models.NewsFilter{Status: "HIDDEN"}, true)
	assert.Contains(t, validationFields(t, err), "status")
}

func TestNewsSlugsAreUnique(t *testing.T) {
	svc, _ := newNewsFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, "admin-1", NewsInput{Title: "Price update", Body: "a"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "admin-1", NewsInput{Title: "Price Update!", Body: "b"})
	require.NoError(t, err)

	assert.Equal(t, "price-update", first.Slug)
	assert.Equal(t, "price-update-2", second.Slug)

	// Re-saving keeps the article's own slug.
	updated, err := svc.Update(ctx, "admin-1", first.ID, NewsInput{Title: "Price update", Body: "a2"})
	require.NoError(t, err)
	assert.Equal(t, "price-update", updated.Slug)
}

func TestNewsRendersSanitizedHTML(t *testing.T) {
	svc, _ := newNewsFixture()

	n, err := svc.Create(context.Background(), "admin-1", NewsInput{
		Title: "Launch",
		Body:  "**bold** <script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Contains(t, n.BodyHTML, "<strong>bold</strong>")
	assert.NotContains(t, n.BodyHTML, "<script>")
}

func TestNewsValidation(t *testing.T) {
	svc, _ := newNewsFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin-1", NewsInput{Title: "!!!", Body: "x"})
	assert.Contains(t, validationFields(t, err), "title")

	_, err = svc.Create(ctx, "admin-1", NewsInput{Title: "Ok", Body: "x", Status: "LIVE"})
	assert.Contains(t, validationFields(t, err), "status")

	_, err = svc.Update(ctx, "admin-1", "missing", NewsInput{Title: "Ok", Body: "x"})
	assertKind(t, err, apperr.KindNotFound)
}
