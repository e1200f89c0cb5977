package service

import (
	"context"
	"errors"
	"sort"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type NavigationStore interface {
	Create(ctx context.Context, item models.NavigationItem) (models.NavigationItem, error)
	Update(ctx context.Context, item models.NavigationItem) (models.NavigationItem, error)
	GetByID(ctx context.Context, id string) (models.NavigationItem, error)
	ListAll(ctx context.Context, visibleOnly bool) ([]models.NavigationItem, error)
	Delete(ctx context.Context, id string) error
}

type NavigationService struct {
	items    NavigationStore
	activity *ActivityRecorder
}

func NewNavigationService(items NavigationStore, activity *ActivityRecorder) *NavigationService {
	return &NavigationService{items: items, activity: activity}
}

func (s *NavigationService) Tree(ctx context.Context, includeHidden bool) ([]*models.NavigationItem, error) {
	flat, err := s.items.ListAll(ctx, !includeHidden)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return BuildNavigationTree(flat), nil
}

// BuildNavigationTree nests items under their parents, ordered by sortOrder then label.
// Items whose parent is absent (hidden or deleted) are dropped with their subtree.
func BuildNavigationTree(flat []models.NavigationItem) []*models.NavigationItem {
	nodes := make(map[string]*models.NavigationItem, len(flat))
	for i := range flat {
		item := flat[i]
		item.Children = nil
		nodes[item.ID] = &item
	}

	roots := []*models.NavigationItem{}
	for i := range flat {
		node := nodes[flat[i].ID]
		if node.ParentID == nil || *node.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	sortNavigation(roots)
	return roots
}

func sortNavigation(items []*models.NavigationItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Label < items[j].Label
	})
	for _, item := range items {
		sortNavigation(item.Children)
	}
}

func (s *NavigationService) Create(ctx context.Context, actorID string, item models.NavigationItem) (models.NavigationItem, error) {
	item.ID = ids.New()
	if err := s.checkParent(ctx, item); err != nil {
		return models.NavigationItem{}, err
	}
	created, err := s.items.Create(ctx, item)
	if err != nil {
		return models.NavigationItem{}, storeError(err, "Navigation item")
	}
	s.activity.Record(ctx, &actorID, "navigation.created", "navigation", created.ID, nil)
	return created, nil
}

func (s *NavigationService) Update(ctx context.Context, actorID, id string, item models.NavigationItem) (models.NavigationItem, error) {
	item.ID = id
	if err := s.checkParent(ctx, item); err != nil {
		return models.NavigationItem{}, err
	}
	updated, err := s.items.Update(ctx, item)
	if err != nil {
		return models.NavigationItem{}, storeError(err, "Navigation item")
	}
	s.activity.Record(ctx, &actorID, "navigation.updated", "navigation", id, nil)
	return updated, nil
}

func (s *NavigationService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return storeError(err, "Navigation item")
	}
	s.activity.Record(ctx, &actorID, "navigation.deleted", "navigation", id, nil)
	return nil
}

// checkParent rejects unknown parents and parent chains that would loop back to item.
func (s *NavigationService) checkParent(ctx context.Context, item models.NavigationItem) error {
	parentID := item.ParentID
	for depth := 0; parentID != nil && *parentID != ""; depth++ {
		if *parentID == item.ID || depth > 16 {
			return apperr.Validation("Invalid navigation item", map[string]string{"parentId": "would create a cycle"})
		}
		parent, err := s.items.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Validation("Invalid navigation item", map[string]string{"parentId": "unknown parent"})
			}
			return apperr.Internal(err)
		}
		parentID = parent.ParentID
	}
	return nil
}
