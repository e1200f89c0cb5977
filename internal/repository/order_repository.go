package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, order_number, user_id, inquiry_id, customer_ref, email, status, currency,
	total_cents, notes, created_at, updated_at`

// Create stores the order with its items. ErrConflict signals an order number collision.
func (r *OrderRepository) Create(ctx context.Context, o models.Order) (models.Order, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO orders (
				id, order_number, user_id, inquiry_id, customer_ref, email, status, currency,
				total_cents, notes, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
			)
		`
		if _, err := tx.Exec(ctx, query,
			o.ID, o.OrderNumber, o.UserID, o.InquiryID, o.CustomerRef, o.Email, o.Status,
			o.Currency, o.TotalCents, o.Notes,
		); err != nil {
			return mapError(err)
		}

		batch := &pgx.Batch{}
		for _, item := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (id, order_id, product_id, description, quantity, unit_price_cents, line_total_cents)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				ids.New(), o.ID, item.ProductID, item.Description, item.Quantity, item.UnitPriceCents, item.LineTotalCents)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order items: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return r.GetByID(ctx, o.ID)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return models.Order{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, description, quantity, unit_price_cents, line_total_cents
		FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return models.Order{}, err
	}
	defer rows.Close()

	o.Items = []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Description, &item.Quantity, &item.UnitPriceCents, &item.LineTotalCents); err != nil {
			return models.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func (r *OrderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	var where filter
	if f.Status != "" {
		where.add("status = ?", f.Status)
	}
	if f.Search != "" {
		where.addSearch(f.Search, "order_number", "customer_ref", "email")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	suffix, args := where.page(page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where.clause()+` ORDER BY created_at DESC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]models.Order, 0, page.Size)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	if err := requireAffected(r.pool.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)); err != nil {
		return models.Order{}, err
	}
	return r.GetByID(ctx, id)
}

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	if err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.InquiryID,
		&o.CustomerRef,
		&o.Email,
		&o.Status,
		&o.Currency,
		&o.TotalCents,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return models.Order{}, mapError(err)
	}
	return o, nil
}
