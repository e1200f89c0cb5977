package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/models"
)

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, name, description, icon, sort_order, is_active, created_at, updated_at`

func (r *CategoryRepository) Create(ctx context.Context, c models.Category) (models.Category, error) {
	const query = `
		INSERT INTO categories (id, name, description, icon, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.Icon, c.SortOrder, c.IsActive))
}

func (r *CategoryRepository) Update(ctx context.Context, c models.Category) (models.Category, error) {
	const query = `
		UPDATE categories
		SET name = $2, description = $3, icon = $4, sort_order = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.Icon, c.SortOrder, c.IsActive))
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (models.Category, error) {
	return scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Delete fails with ErrInvalidReference while products still point at the category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id))
}

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Icon,
		&c.SortOrder,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return models.Category{}, mapError(err)
	}
	return c, nil
}
