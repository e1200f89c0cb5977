package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SeedAdminEmail    = "admin@computing-marketplace.com"
	SeedAdminPassword = "Admin@123"
)

type seedCategory struct {
	id, name, description, icon string
}

var seedCategories = []seedCategory{
	{"gpu-servers", "GPU Servers", "Bare-metal servers with data-center GPUs", "cpu"},
	{"cloud-instances", "Cloud Instances", "On-demand virtual machines", "cloud"},
	{"appliances", "Appliances", "Pre-integrated compute appliances", "server"},
	{"maas", "Model as a Service", "Hosted model inference endpoints", "sparkles"},
}

type SeedResult struct {
	AdminCreated      bool
	CategoriesCreated int
}

// Seed inserts the bootstrap admin and base categories. Existing rows are left
// untouched, so running it twice is harmless.
func Seed(ctx context.Context, pool *pgxpool.Pool, adminID string, adminPasswordHash string) (SeedResult, error) {
	var result SeedResult
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, full_name, role, is_active)
			VALUES ($1, $2, $3, 'Administrator', 'ADMIN', TRUE)
			ON CONFLICT (email) DO NOTHING
		`, adminID, SeedAdminEmail, adminPasswordHash)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		result.AdminCreated = tag.RowsAffected() == 1

		for i, c := range seedCategories {
			tag, err := tx.Exec(ctx, `
				INSERT INTO categories (id, name, description, icon, sort_order)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING
			`, c.id, c.name, c.description, c.icon, i)
			if err != nil {
				return fmt.Errorf("seed category %s: %w", c.id, err)
			}
			result.CategoriesCreated += int(tag.RowsAffected())
		}
		return nil
	})
	return result, err
}
