package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/models"
)

type NavigationRepository struct {
	pool *pgxpool.Pool
}

func NewNavigationRepository(pool *pgxpool.Pool) *NavigationRepository {
	return &NavigationRepository{pool: pool}
}

const navigationColumns = `id, parent_id, label, href, sort_order, is_visible, created_at, updated_at`

func (r *NavigationRepository) Create(ctx context.Context, item models.NavigationItem) (models.NavigationItem, error) {
	const query = `
		INSERT INTO navigation_items (id, parent_id, label, href, sort_order, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + navigationColumns
	return scanNavigation(r.pool.QueryRow(ctx, query,
		item.ID, item.ParentID, item.Label, item.Href, item.SortOrder, item.IsVisible))
}

func (r *NavigationRepository) Update(ctx context.Context, item models.NavigationItem) (models.NavigationItem, error) {
	const query = `
		UPDATE navigation_items
		SET parent_id = $2, label = $3, href = $4, sort_order = $5, is_visible = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + navigationColumns
	return scanNavigation(r.pool.QueryRow(ctx, query,
		item.ID, item.ParentID, item.Label, item.Href, item.SortOrder, item.IsVisible))
}

func (r *NavigationRepository) GetByID(ctx context.Context, id string) (models.NavigationItem, error) {
	return scanNavigation(r.pool.QueryRow(ctx, `SELECT `+navigationColumns+` FROM navigation_items WHERE id = $1`, id))
}

// ListAll returns the flat rows; the service assembles the tree.
func (r *NavigationRepository) ListAll(ctx context.Context, visibleOnly bool) ([]models.NavigationItem, error) {
	query := `SELECT ` + navigationColumns + ` FROM navigation_items`
	if visibleOnly {
		query += ` WHERE is_visible`
	}
	query += ` ORDER BY sort_order, label`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.NavigationItem{}
	for rows.Next() {
		item, err := scanNavigation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Delete removes the item; children cascade.
func (r *NavigationRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM navigation_items WHERE id = $1`, id))
}

func scanNavigation(row rowScanner) (models.NavigationItem, error) {
	var item models.NavigationItem
	if err := row.Scan(
		&item.ID,
		&item.ParentID,
		&item.Label,
		&item.Href,
		&item.SortOrder,
		&item.IsVisible,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return models.NavigationItem{}, mapError(err)
	}
	return item, nil
}
