package brands

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository exposes the brand metadata queries the guard relies on.
type Repository interface {
	UserRoles(ctx context.Context, userID int64) ([]string, error)
	ActiveBrands(ctx context.Context) ([]Brand, error)
	LinkedBrands(ctx context.Context, userID int64) ([]Brand, error)
	IsLinked(ctx context.Context, userID, brandID int64) (bool, error)
	GetBrand(ctx context.Context, brandID int64) (Brand, error)
	PremiumActive(ctx context.Context, brandID int64, at time.Time) (bool, error)
	Competitors(ctx context.Context, brandID int64) ([]Competitor, error)
}

// dbtx is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db dbtx) *PGRepository {
	return &PGRepository{db: db}
}

var _ Repository = (*PGRepository)(nil)

const brandColumns = `b.id, b.name, b.slug, b.currency, b.is_active`

func (r *PGRepository) UserRoles(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
SELECT ro.name
FROM user_roles ur
JOIN roles ro ON ro.id = ur.role_id
WHERE ur.user_id = $1
ORDER BY ro.name`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PGRepository) ActiveBrands(ctx context.Context) ([]Brand, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+brandColumns+`
FROM brands b
WHERE b.is_active
ORDER BY b.name, b.id`)
	if err != nil {
		return nil, err
	}
	return collectBrands(rows)
}

func (r *PGRepository) LinkedBrands(ctx context.Context, userID int64) ([]Brand, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+brandColumns+`
FROM brands b
JOIN brand_users bu ON bu.brand_id = b.id
WHERE bu.user_id = $1 AND b.is_active
ORDER BY b.name, b.id`, userID)
	if err != nil {
		return nil, err
	}
	return collectBrands(rows)
}

func (r *PGRepository) IsLinked(ctx context.Context, userID, brandID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM brand_users bu
    JOIN brands b ON b.id = bu.brand_id
    WHERE bu.user_id = $1 AND bu.brand_id = $2 AND b.is_active
)`, userID, brandID).Scan(&ok)
	return ok, err
}

func (r *PGRepository) GetBrand(ctx context.Context, brandID int64) (Brand, error) {
	var b Brand
	err := r.db.QueryRow(ctx, `
SELECT `+brandColumns+`
FROM brands b
WHERE b.id = $1`, brandID).Scan(&b.ID, &b.Name, &b.Slug, &b.Currency, &b.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Brand{}, ErrNotFound
		}
		return Brand{}, err
	}
	return b, nil
}

func (r *PGRepository) PremiumActive(ctx context.Context, brandID int64, at time.Time) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM brand_subscriptions
    WHERE brand_id = $1
      AND lower(tier) = 'premium'
      AND started_at <= $2
      AND (expires_at IS NULL OR expires_at > $2)
)`, brandID, at.UTC()).Scan(&ok)
	return ok, err
}

func (r *PGRepository) Competitors(ctx context.Context, brandID int64) ([]Competitor, error) {
	rows, err := r.db.Query(ctx, `
SELECT c.id, c.name
FROM brand_competitors bc
JOIN brands c ON c.id = bc.competitor_id
WHERE bc.brand_id = $1
ORDER BY c.name, c.id`, brandID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Competitor, error) {
		var c Competitor
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

func collectBrands(rows pgx.Rows) ([]Brand, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Brand, error) {
		var b Brand
		err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Currency, &b.IsActive)
		return b, err
	})
}
