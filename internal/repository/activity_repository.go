package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/models"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Create(ctx context.Context, a models.ActivityLog) error {
	const query = `
		INSERT INTO activity_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	var details any
	if len(a.Details) > 0 {
		details = []byte(a.Details)
	}
	_, err := r.pool.Exec(ctx, query, a.ID, a.UserID, a.Action, a.EntityType, a.EntityID, details)
	return mapError(err)
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	const query = `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.ActivityLog{}
	for rows.Next() {
		var (
			a       models.ActivityLog
			details []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &details, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Details = details
		logs = append(logs, a)
	}
	return logs, rows.Err()
}

// DeleteBefore purges rows older than cutoff and reports how many were removed.
func (r *ActivityRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
