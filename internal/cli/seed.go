package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"computing-marketplace/api/internal/database"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/security"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin and base categories",
		Long:  "Insert the default admin account and catalog categories. Rows that already exist are left alone.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			hash, err := security.NewPasswordHasher(security.DefaultArgon2Params).Hash(database.SeedAdminPassword)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}

			result, err := database.Seed(cmd.Context(), e.pool, ids.New(), hash)
			if err != nil {
				return err
			}

			if result.AdminCreated {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", database.SeedAdminEmail)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s already present\n", database.SeedAdminEmail)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories created\n", result.CategoriesCreated)
			return nil
		},
	}
}
