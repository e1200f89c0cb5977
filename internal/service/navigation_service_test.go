package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type memoryNavigation struct {
	items map[string]models.NavigationItem
}

func (m *memoryNavigation) Create(_ context.Context, item models.NavigationItem) (models.NavigationItem, error) {
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryNavigation) Update(_ context.Context, item models.NavigationItem) (models.NavigationItem, error) {
	if _, ok := m.items[item.ID]; !ok {
		return models.NavigationItem{}, repository.ErrNotFound
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryNavigation) GetByID(_ context.Context, id string) (models.NavigationItem, error) {
	item, ok := m.items[id]
	if !ok {
		return models.NavigationItem{}, repository.ErrNotFound
	}
	return item, nil
}

func (m *memoryNavigation) ListAll(_ context.Context, visibleOnly bool) ([]models.NavigationItem, error) {
	out := []models.NavigationItem{}
	for _, item := range m.items {
		if visibleOnly && !item.IsVisible {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *memoryNavigation) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestBuildNavigationTree(t *testing.T) {
	flat := []models.NavigationItem{
		{ID: "support", Label: "Support", SortOrder: 3},
		{ID: "gpu", ParentID: strPtr("products"), Label: "GPU", SortOrder: 1},
		{ID: "products", Label: "Products", SortOrder: 1},
		{ID: "cpu", ParentID: strPtr("products"), Label: "CPU", SortOrder: 1},
		{ID: "storage", ParentID: strPtr("products"), Label: "Storage", SortOrder: 0},
		{ID: "orphan", ParentID: strPtr("gone"), Label: "Orphan"},
		{ID: "a100", ParentID: strPtr("gpu"), Label: "A100"},
	}

	tree := BuildNavigationTree(flat)
	require.Len(t, tree, 2)
	assert.Equal(t, "products", tree[0].ID)
	assert.Equal(t, "support", tree[1].ID)

	children := tree[0].Children
	require.Len(t, children, 3)
	assert.Equal(t, []string{"storage", "cpu", "gpu"}, []string{children[0].ID, children[1].ID, children[2].ID})
	require.Len(t, children[2].Children, 1)
	assert.Equal(t, "a100", children[2].Children[0].ID)
	assert.Empty(t, tree[1].Children)
}

func TestNavigationTreeHidesHiddenSubtrees(t *testing.T) {
	store := &memoryNavigation{items: map[string]models.NavigationItem{
		"root":  {ID: "root", Label: "Root", IsVisible: true},
		"sec":   {ID: "sec", ParentID: strPtr("root"), Label: "Hidden", IsVisible: false},
		"leaf":  {ID: "leaf", ParentID: strPtr("sec"), Label: "Leaf", IsVisible: true},
		"other": {ID: "other", ParentID: strPtr("root"), Label: "Shown", IsVisible: true},
	}}
	svc := NewNavigationService(store, nil)

	public, err := svc.Tree(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Len(t, public[0].Children, 1)
	assert.Equal(t, "other", public[0].Children[0].ID)

	admin, err := svc.Tree(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, admin[0].Children, 2)
}

func TestNavigationRejectsCycles(t *testing.T) {
	store := &memoryNavigation{items: map[string]models.NavigationItem{
		"a": {ID: "a", Label: "A"},
		"b": {ID: "b", ParentID: strPtr("a"), Label: "B"},
	}}
	svc := NewNavigationService(store, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "admin", "a", models.NavigationItem{ParentID: strPtr("b"), Label: "A"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Update(ctx, "admin", "a", models.NavigationItem{ParentID: strPtr("a"), Label: "A"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Create(ctx, "admin", models.NavigationItem{ParentID: strPtr("missing"), Label: "C"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	created, err := svc.Create(ctx, "admin", models.NavigationItem{ParentID: strPtr("b"), Label: "C"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	err = svc.Delete(ctx, "admin", "nope")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
