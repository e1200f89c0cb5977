package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/models"
)

// DashboardRepository serves the read-only aggregates behind the sales dashboard.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

var countableTables = map[string]bool{
	"users":     true,
	"products":  true,
	"inquiries": true,
	"orders":    true,
}

// CountBetween counts rows created in [from, to). A zero from counts everything before to.
func (r *DashboardRepository) CountBetween(ctx context.Context, table string, from, to time.Time) (int64, error) {
	if !countableTables[table] {
		return 0, fmt.Errorf("table %q is not countable", table)
	}
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&n)
	return n, err
}

// RevenueBetween sums totals of non-cancelled orders created in [from, to).
func (r *DashboardRepository) RevenueBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var cents int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_cents), 0)::bigint FROM orders
		WHERE status <> 'CANCELLED' AND created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&cents)
	return cents, err
}

func (r *DashboardRepository) InquiryStatusCounts(ctx context.Context) (map[models.InquiryStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM inquiries GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.InquiryStatus]int64)
	for rows.Next() {
		var (
			status models.InquiryStatus
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// InquiryDailyCounts returns counts keyed by UTC day (YYYY-MM-DD) for inquiries created since.
func (r *DashboardRepository) InquiryDailyCounts(ctx context.Context, since time.Time) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM inquiries
		WHERE created_at >= $1
		GROUP BY day`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			day string
			n   int64
		)
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	return counts, rows.Err()
}
