package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/brandlens/brandlens/internal/auth"
	"github.com/brandlens/brandlens/internal/platform/db"
	"github.com/brandlens/brandlens/internal/shared"
)

type seedUser struct {
	email  string
	name   string
	role   string
	brands []string
}

type seedBrand struct {
	slug        string
	name        string
	currency    string
	premium     bool
	competitors []string
}

type seedData struct {
	users  []seedUser
	brands []seedBrand
}

func demoData() seedData {
	return seedData{
		brands: []seedBrand{
			{slug: "northwind", name: "Northwind Coffee", currency: "USD", premium: true, competitors: []string{"bluebottle", "alpine"}},
			{slug: "bluebottle", name: "Blue Bottle Roasters", currency: "USD"},
			{slug: "alpine", name: "Alpine Teas", currency: "EUR"},
		},
		users: []seedUser{
			{email: "admin@brandlens.local", name: "Portal Admin", role: shared.RoleAdmin},
			{email: "supplier@northwind.local", name: "Northwind Supplier", role: shared.RoleSupplier, brands: []string{"northwind"}},
			{email: "analyst@alpine.local", name: "Alpine Analyst", role: shared.RoleAnalyst, brands: []string{"alpine"}},
		},
	}
}

func seedCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo brands and users",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), s.PGDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			data := demoData()
			if err := seed(cmd.Context(), pool, data, hash); err != nil {
				return err
			}
			cmd.Printf("seeded %d brands and %d users\n", len(data.brands), len(data.users))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "brandlens123", "password for every demo user")
	return cmd
}

func seed(ctx context.Context, pool *pgxpool.Pool, data seedData, passwordHash string) error {
	return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		ids := make(map[string]int64, len(data.brands))
		for _, b := range data.brands {
			var id int64
			err := tx.QueryRow(ctx, `
INSERT INTO brands (name, slug, currency, is_active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, currency = EXCLUDED.currency
RETURNING id`, b.name, b.slug, b.currency).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed brand %s: %w", b.slug, err)
			}
			ids[b.slug] = id
			if b.premium {
				if _, err := tx.Exec(ctx, `
INSERT INTO brand_subscriptions (brand_id, tier)
SELECT $1, 'premium'
WHERE NOT EXISTS (SELECT 1 FROM brand_subscriptions WHERE brand_id = $1 AND tier = 'premium')`, id); err != nil {
					return fmt.Errorf("seed subscription %s: %w", b.slug, err)
				}
			}
		}
		for _, b := range data.brands {
			for _, c := range b.competitors {
				if _, err := tx.Exec(ctx, `
INSERT INTO brand_competitors (brand_id, competitor_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, ids[b.slug], ids[c]); err != nil {
					return fmt.Errorf("seed competitor %s/%s: %w", b.slug, c, err)
				}
			}
		}
		for _, u := range data.users {
			var userID int64
			err := tx.QueryRow(ctx, `
INSERT INTO users (email, name, password_hash, is_active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
RETURNING id`, u.email, u.name, passwordHash).Scan(&userID)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.email, err)
			}
			if _, err := tx.Exec(ctx, `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, id FROM roles WHERE name = $2
ON CONFLICT DO NOTHING`, userID, u.role); err != nil {
				return fmt.Errorf("seed role %s: %w", u.email, err)
			}
			for _, slug := range u.brands {
				if _, err := tx.Exec(ctx, `
INSERT INTO brand_users (brand_id, user_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, ids[slug], userID); err != nil {
					return fmt.Errorf("seed brand access %s: %w", u.email, err)
				}
			}
		}
		return nil
	})
}
