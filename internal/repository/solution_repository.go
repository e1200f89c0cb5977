package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
)

type SolutionRepository struct {
	pool *pgxpool.Pool
}

func NewSolutionRepository(pool *pgxpool.Pool) *SolutionRepository {
	return &SolutionRepository{pool: pool}
}

const solutionColumns = `id, slug, title, industry, summary, body, body_html, image_url, is_active,
	sort_order, product_ids, created_at, updated_at`

func (r *SolutionRepository) Create(ctx context.Context, s models.Solution) (models.Solution, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO solutions (
				id, slug, title, industry, summary, body, body_html, image_url, is_active,
				sort_order, product_ids, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
			)
		`
		if _, err := tx.Exec(ctx, query,
			s.ID, s.Slug, s.Title, s.Industry, s.Summary, s.Body, s.BodyHTML, s.ImageURL,
			s.IsActive, s.SortOrder, nonNil(s.ProductIDs),
		); err != nil {
			return mapError(err)
		}
		return insertBenefits(ctx, tx, s)
	})
	if err != nil {
		return models.Solution{}, err
	}
	return r.GetByID(ctx, s.ID)
}

// Update replaces the benefit rows wholesale.
func (r *SolutionRepository) Update(ctx context.Context, s models.Solution) (models.Solution, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			UPDATE solutions
			SET slug = $2, title = $3, industry = $4, summary = $5, body = $6, body_html = $7,
			    image_url = $8, is_active = $9, sort_order = $10, product_ids = $11, updated_at = NOW()
			WHERE id = $1
		`
		if err := requireAffected(tx.Exec(ctx, query,
			s.ID, s.Slug, s.Title, s.Industry, s.Summary, s.Body, s.BodyHTML, s.ImageURL,
			s.IsActive, s.SortOrder, nonNil(s.ProductIDs),
		)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM solution_benefits WHERE solution_id = $1`, s.ID); err != nil {
			return fmt.Errorf("clear benefits: %w", err)
		}
		return insertBenefits(ctx, tx, s)
	})
	if err != nil {
		return models.Solution{}, err
	}
	return r.GetByID(ctx, s.ID)
}

func insertBenefits(ctx context.Context, tx pgx.Tx, s models.Solution) error {
	batch := &pgx.Batch{}
	for i, b := range s.Benefits {
		batch.Queue(`INSERT INTO solution_benefits (id, solution_id, title, description, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			ids.New(), s.ID, b.Title, b.Description, orderOr(b.SortOrder, i))
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert benefits: %w", err)
	}
	return nil
}

func (r *SolutionRepository) GetByID(ctx context.Context, id string) (models.Solution, error) {
	s, err := scanSolution(r.pool.QueryRow(ctx, `SELECT `+solutionColumns+` FROM solutions WHERE id = $1 OR slug = $1`, id))
	if err != nil {
		return models.Solution{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, title, description, sort_order FROM solution_benefits WHERE solution_id = $1 ORDER BY sort_order`, s.ID)
	if err != nil {
		return models.Solution{}, err
	}
	defer rows.Close()

	s.Benefits = []models.SolutionBenefit{}
	for rows.Next() {
		var b models.SolutionBenefit
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.SortOrder); err != nil {
			return models.Solution{}, err
		}
		s.Benefits = append(s.Benefits, b)
	}
	return s, rows.Err()
}

func (r *SolutionRepository) List(ctx context.Context, activeOnly bool) ([]models.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, title`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	solutions := []models.Solution{}
	for rows.Next() {
		s, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, s)
	}
	return solutions, rows.Err()
}

func (r *SolutionRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM solutions WHERE id = $1`, id))
}

func scanSolution(row rowScanner) (models.Solution, error) {
	var s models.Solution
	if err := row.Scan(
		&s.ID,
		&s.Slug,
		&s.Title,
		&s.Industry,
		&s.Summary,
		&s.Body,
		&s.BodyHTML,
		&s.ImageURL,
		&s.IsActive,
		&s.SortOrder,
		&s.ProductIDs,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return models.Solution{}, mapError(err)
	}
	return s, nil
}
