package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/models"
)

type InquiryRepository struct {
	pool *pgxpool.Pool
}

func NewInquiryRepository(pool *pgxpool.Pool) *InquiryRepository {
	return &InquiryRepository{pool: pool}
}

const inquirySelect = `
	SELECT i.id, i.product_id, p.name, i.full_name, i.email, i.phone, i.company_name, i.region,
	       i.budget, i.message, i.source, i.status, i.priority, i.notes, i.assigned_to,
	       i.created_at, i.updated_at
	FROM inquiries i
	LEFT JOIN products p ON p.id = i.product_id
`

func (r *InquiryRepository) Create(ctx context.Context, in models.Inquiry) (models.Inquiry, error) {
	const query = `
		INSERT INTO inquiries (
			id, product_id, full_name, email, phone, company_name, region, budget, message,
			source, status, priority, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
		)
	`
	if _, err := r.pool.Exec(ctx, query,
		in.ID, in.ProductID, in.FullName, in.Email, in.Phone, in.CompanyName, in.Region,
		in.Budget, in.Message, in.Source, in.Status, in.Priority,
	); err != nil {
		return models.Inquiry{}, mapError(err)
	}
	return r.GetByID(ctx, in.ID)
}

func (r *InquiryRepository) GetByID(ctx context.Context, id string) (models.Inquiry, error) {
	return scanInquiry(r.pool.QueryRow(ctx, inquirySelect+` WHERE i.id = $1`, id))
}

func (r *InquiryRepository) List(ctx context.Context, f models.InquiryFilter) ([]models.Inquiry, int64, error) {
	var where filter
	if f.Status != "" {
		where.add("i.status = ?", f.Status)
	}
	if f.Priority != "" {
		where.add("i.priority = ?", f.Priority)
	}
	if f.Search != "" {
		where.addSearch(f.Search, "i.full_name", "i.email", "i.company_name", "i.message")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inquiries i WHERE `+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	suffix, args := where.page(page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, inquirySelect+` WHERE `+where.clause()+` ORDER BY i.created_at DESC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	inquiries := make([]models.Inquiry, 0, page.Size)
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, 0, err
		}
		inquiries = append(inquiries, in)
	}
	return inquiries, total, rows.Err()
}

// ListByStatus returns the newest inquiries for one status, for the kanban board.
func (r *InquiryRepository) ListByStatus(ctx context.Context, status models.InquiryStatus, limit int) ([]models.Inquiry, error) {
	rows, err := r.pool.Query(ctx, inquirySelect+` WHERE i.status = $1 ORDER BY i.updated_at DESC LIMIT $2`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inquiries := []models.Inquiry{}
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, in)
	}
	return inquiries, rows.Err()
}

// Patch applies only the non-nil fields. Status may be set to any value.
func (r *InquiryRepository) Patch(ctx context.Context, id string, patch models.InquiryPatch) (models.Inquiry, error) {
	const query = `
		UPDATE inquiries
		SET status      = COALESCE($2, status),
		    priority    = COALESCE($3, priority),
		    notes       = COALESCE($4, notes),
		    assigned_to = CASE WHEN $5::text IS NULL THEN assigned_to ELSE NULLIF($5, '') END,
		    updated_at  = NOW()
		WHERE id = $1
	`
	if err := requireAffected(r.pool.Exec(ctx, query, id, patch.Status, patch.Priority, patch.Notes, patch.AssignedTo)); err != nil {
		return models.Inquiry{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *InquiryRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM inquiries WHERE id = $1`, id))
}

func scanInquiry(row rowScanner) (models.Inquiry, error) {
	var in models.Inquiry
	if err := row.Scan(
		&in.ID,
		&in.ProductID,
		&in.ProductName,
		&in.FullName,
		&in.Email,
		&in.Phone,
		&in.CompanyName,
		&in.Region,
		&in.Budget,
		&in.Message,
		&in.Source,
		&in.Status,
		&in.Priority,
		&in.Notes,
		&in.AssignedTo,
		&in.CreatedAt,
		&in.UpdatedAt,
	); err != nil {
		return models.Inquiry{}, mapError(err)
	}
	return in, nil
}
