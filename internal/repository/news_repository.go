package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/models"
)

type NewsRepository struct {
	pool *pgxpool.Pool
}

func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{pool: pool}
}

const newsColumns = `id, slug, title, summary, body, body_html, cover_image, tags, status, author_id,
	published_at, created_at, updated_at`

func (r *NewsRepository) Create(ctx context.Context, n models.NewsArticle) (models.NewsArticle, error) {
	const query = `
		INSERT INTO news (
			id, slug, title, summary, body, body_html, cover_image, tags, status, author_id,
			published_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
		RETURNING ` + newsColumns
	return scanNews(r.pool.QueryRow(ctx, query,
		n.ID, n.Slug, n.Title, n.Summary, n.Body, n.BodyHTML, n.CoverImage, nonNil(n.Tags),
		n.Status, n.AuthorID, n.PublishedAt,
	))
}

func (r *NewsRepository) Update(ctx context.Context, n models.NewsArticle) (models.NewsArticle, error) {
	const query = `
		UPDATE news
		SET slug = $2, title = $3, summary = $4, body = $5, body_html = $6, cover_image = $7,
		    tags = $8, status = $9, published_at = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + newsColumns
	return scanNews(r.pool.QueryRow(ctx, query,
		n.ID, n.Slug, n.Title, n.Summary, n.Body, n.BodyHTML, n.CoverImage, nonNil(n.Tags),
		n.Status, n.PublishedAt,
	))
}

func (r *NewsRepository) GetByID(ctx context.Context, id string) (models.NewsArticle, error) {
	return scanNews(r.pool.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
}

func (r *NewsRepository) GetBySlug(ctx context.Context, slug string) (models.NewsArticle, error) {
	return scanNews(r.pool.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE slug = $1`, slug))
}

func (r *NewsRepository) SlugExists(ctx context.Context, slug string, exceptID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM news WHERE slug = $1 AND id <> $2)`, slug, exceptID).Scan(&exists)
	return exists, err
}

func (r *NewsRepository) List(ctx context.Context, f models.NewsFilter) ([]models.NewsArticle, int64, error) {
	var where filter
	if f.Status != "" {
		where.add("status = ?", f.Status)
	}
	if f.Tag != "" {
		where.add("? = ANY(tags)", f.Tag)
	}
	if f.Search != "" {
		where.addSearch(f.Search, "title", "summary", "body")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM news WHERE `+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	suffix, args := where.page(page.Size, page.Offset())
	rows, err := r.pool.Query(ctx,
		`SELECT `+newsColumns+` FROM news WHERE `+where.clause()+` ORDER BY COALESCE(published_at, created_at) DESC`+suffix,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]models.NewsArticle, 0, page.Size)
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, n)
	}
	return articles, total, rows.Err()
}

func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id))
}

func scanNews(row rowScanner) (models.NewsArticle, error) {
	var n models.NewsArticle
	if err := row.Scan(
		&n.ID,
		&n.Slug,
		&n.Title,
		&n.Summary,
		&n.Body,
		&n.BodyHTML,
		&n.CoverImage,
		&n.Tags,
		&n.Status,
		&n.AuthorID,
		&n.PublishedAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return models.NewsArticle{}, mapError(err)
	}
	return n, nil
}
