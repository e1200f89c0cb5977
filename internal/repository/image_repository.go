package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/models"
)

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

const imageColumns = `id, uploaded_by, bucket, object_key, variant_key, format, content_type, size_bytes,
	width, height, checksum, signature, status, created_at, updated_at`

func (r *ImageRepository) Create(ctx context.Context, image models.Image) error {
	const query = `
		INSERT INTO images (
			id, uploaded_by, bucket, object_key, variant_key, format, content_type, size_bytes,
			width, height, checksum, signature, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		image.ID,
		image.UploadedBy,
		image.Bucket,
		image.ObjectKey,
		image.VariantKey,
		image.Format,
		image.ContentType,
		image.SizeBytes,
		image.Width,
		image.Height,
		image.Checksum,
		image.Signature,
		image.Status,
	)
	return mapError(err)
}

// MarkProcessed records the thumbnail outcome from the worker.
func (r *ImageRepository) MarkProcessed(ctx context.Context, id string, status models.ImageStatus, variantKey *string, width, height int) error {
	const query = `
		UPDATE images
		SET status = $2,
		    variant_key = COALESCE($3, variant_key),
		    width = CASE WHEN $4 > 0 THEN $4 ELSE width END,
		    height = CASE WHEN $5 > 0 THEN $5 ELSE height END,
		    updated_at = NOW()
		WHERE id = $1
	`
	return requireAffected(r.pool.Exec(ctx, query, id, status, variantKey, width, height))
}

// ListFailedBefore returns images whose processing failed before cutoff.
func (r *ImageRepository) ListFailedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Image, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+imageColumns+` FROM images WHERE status = 'failed' AND updated_at < $1 ORDER BY updated_at LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.Image{}
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id))
}

func scanImage(row rowScanner) (models.Image, error) {
	var image models.Image
	if err := row.Scan(
		&image.ID,
		&image.UploadedBy,
		&image.Bucket,
		&image.ObjectKey,
		&image.VariantKey,
		&image.Format,
		&image.ContentType,
		&image.SizeBytes,
		&image.Width,
		&image.Height,
		&image.Checksum,
		&image.Signature,
		&image.Status,
		&image.CreatedAt,
		&image.UpdatedAt,
	); err != nil {
		return models.Image{}, mapError(err)
	}
	return image, nil
}
