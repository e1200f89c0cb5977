package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, category_id, name, type, description, short_description, image_url,
	regions, tags, status, is_featured, sort_order, created_at, updated_at`

// Create inserts the product and its child rows in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO products (
				id, category_id, name, type, description, short_description, image_url,
				regions, tags, status, is_featured, sort_order, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
			)
		`
		if _, err := tx.Exec(ctx, query,
			p.ID, p.CategoryID, p.Name, p.Type, p.Description, p.ShortDesc, p.ImageURL,
			nonNil(p.Regions), nonNil(p.Tags), p.Status, p.IsFeatured, p.SortOrder,
		); err != nil {
			return mapError(err)
		}
		return insertProductChildren(ctx, tx, p)
	})
	if err != nil {
		return models.Product{}, err
	}
	return r.GetByID(ctx, p.ID)
}

// Update rewrites the product row and replaces every child collection wholesale.
func (r *ProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			UPDATE products
			SET category_id = $2, name = $3, type = $4, description = $5, short_description = $6,
			    image_url = $7, regions = $8, tags = $9, status = $10, is_featured = $11,
			    sort_order = $12, updated_at = NOW()
			WHERE id = $1
		`
		if err := requireAffected(tx.Exec(ctx, query,
			p.ID, p.CategoryID, p.Name, p.Type, p.Description, p.ShortDesc, p.ImageURL,
			nonNil(p.Regions), nonNil(p.Tags), p.Status, p.IsFeatured, p.SortOrder,
		)); err != nil {
			return err
		}
		for _, table := range []string{"product_features", "product_specifications", "product_pricing", "product_use_cases"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE product_id = $1`, p.ID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return insertProductChildren(ctx, tx, p)
	})
	if err != nil {
		return models.Product{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func insertProductChildren(ctx context.Context, tx pgx.Tx, p models.Product) error {
	batch := &pgx.Batch{}
	for i, f := range p.Features {
		batch.Queue(`INSERT INTO product_features (id, product_id, title, description, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			ids.New(), p.ID, f.Title, f.Description, orderOr(f.SortOrder, i))
	}
	for i, s := range p.Specifications {
		batch.Queue(`INSERT INTO product_specifications (id, product_id, label, value, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			ids.New(), p.ID, s.Label, s.Value, orderOr(s.SortOrder, i))
	}
	for i, pr := range p.Pricing {
		batch.Queue(`INSERT INTO product_pricing (id, product_id, plan, price_cents, currency, billing_cycle, note, sort_order) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			ids.New(), p.ID, pr.Plan, pr.PriceCents, pr.Currency, pr.BillingCycle, pr.Note, orderOr(pr.SortOrder, i))
	}
	for i, u := range p.UseCases {
		batch.Queue(`INSERT INTO product_use_cases (id, product_id, title, description, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			ids.New(), p.ID, u.Title, u.Description, orderOr(u.SortOrder, i))
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert product children: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return models.Product{}, err
	}
	if err := r.loadChildren(ctx, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) loadChildren(ctx context.Context, p *models.Product) error {
	var err error
	p.Features, err = queryChildren(ctx, r.pool, `SELECT id, title, description, sort_order FROM product_features WHERE product_id = $1 ORDER BY sort_order`, p.ID,
		func(rows pgx.Rows, f *models.ProductFeature) error {
			return rows.Scan(&f.ID, &f.Title, &f.Description, &f.SortOrder)
		})
	if err != nil {
		return err
	}

	p.Specifications, err = queryChildren(ctx, r.pool, `SELECT id, label, value, sort_order FROM product_specifications WHERE product_id = $1 ORDER BY sort_order`, p.ID,
		func(rows pgx.Rows, s *models.ProductSpecification) error {
			return rows.Scan(&s.ID, &s.Label, &s.Value, &s.SortOrder)
		})
	if err != nil {
		return err
	}

	p.Pricing, err = queryChildren(ctx, r.pool, `SELECT id, plan, price_cents, currency, billing_cycle, note, sort_order FROM product_pricing WHERE product_id = $1 ORDER BY sort_order`, p.ID,
		func(rows pgx.Rows, pr *models.ProductPricing) error {
			return rows.Scan(&pr.ID, &pr.Plan, &pr.PriceCents, &pr.Currency, &pr.BillingCycle, &pr.Note, &pr.SortOrder)
		})
	if err != nil {
		return err
	}

	p.UseCases, err = queryChildren(ctx, r.pool, `SELECT id, title, description, sort_order FROM product_use_cases WHERE product_id = $1 ORDER BY sort_order`, p.ID,
		func(rows pgx.Rows, u *models.ProductUseCase) error {
			return rows.Scan(&u.ID, &u.Title, &u.Description, &u.SortOrder)
		})
	return err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryChildren[T any](ctx context.Context, q querier, sql, productID string, scan func(pgx.Rows, *T) error) ([]T, error) {
	rows, err := q.Query(ctx, sql, productID)
	if err != nil {
		return nil, err
	}
	return collectChildren(rows, scan)
}

// collectChildren drains rows into a non-nil slice. A failure that ends
// iteration early surfaces through rows.Err.
func collectChildren[T any](rows pgx.Rows, scan func(pgx.Rows, *T) error) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns product rows without child collections.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	var where filter
	if f.CategoryID != "" {
		where.add("category_id = ?", f.CategoryID)
	}
	if len(f.Tags) > 0 {
		where.add("tags && ?", f.Tags)
	}
	if f.Region != "" {
		where.add("? = ANY(regions)", f.Region)
	}
	if f.Status != "" {
		where.add("status = ?", f.Status)
	}
	if f.Featured != nil {
		where.add("is_featured = ?", *f.Featured)
	}
	if f.Search != "" {
		where.addSearch(f.Search, "name", "description", "short_description")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+where.clause(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	suffix, args := where.page(page.Size, page.Offset())
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+where.clause()+` ORDER BY is_featured DESC, sort_order, created_at DESC`+suffix,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]models.Product, 0, page.Size)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id))
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	if err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Type,
		&p.Description,
		&p.ShortDesc,
		&p.ImageURL,
		&p.Regions,
		&p.Tags,
		&p.Status,
		&p.IsFeatured,
		&p.SortOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return models.Product{}, mapError(err)
	}
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orderOr(explicit, index int) int {
	if explicit != 0 {
		return explicit
	}
	return index
}
