package brands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brandlens/brandlens/internal/shared"
)

// Guard answers brand access questions for signed-in users.
type Guard struct {
	repo Repository
	now  func() time.Time
}

// NewGuard constructs a Guard backed by repo.
func NewGuard(repo Repository) *Guard {
	return &Guard{repo: repo, now: time.Now}
}

// HasRole reports whether the user holds role, compared case-insensitively.
func (g *Guard) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return false, nil
	}
	roles, err := g.repo.UserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true, nil
		}
	}
	return false, nil
}

func (g *Guard) isAdmin(ctx context.Context, userID int64) (bool, error) {
	return g.HasRole(ctx, userID, shared.RoleAdmin)
}

// ListAccessible returns the active brands the user may view, ordered by name.
// Admins see every active brand.
func (g *Guard) ListAccessible(ctx context.Context, userID int64) ([]Brand, error) {
	admin, err := g.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if admin {
		return g.repo.ActiveBrands(ctx)
	}
	return g.repo.LinkedBrands(ctx, userID)
}

// AccessibleBrandIDs returns the IDs of ListAccessible.
func (g *Guard) AccessibleBrandIDs(ctx context.Context, userID int64) ([]int64, error) {
	list, err := g.ListAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}
	return IDs(list), nil
}

// CanAccessBrand reports whether the user may view brandID.
func (g *Guard) CanAccessBrand(ctx context.Context, userID, brandID int64) (bool, error) {
	if userID <= 0 || brandID <= 0 {
		return false, nil
	}
	admin, err := g.isAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if !admin {
		return g.repo.IsLinked(ctx, userID, brandID)
	}
	brand, err := g.repo.GetBrand(ctx, brandID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return brand.IsActive, nil
}

// HasPremiumAccessForBrand reports whether premium pages are open to the user
// for brandID: admins always, others when they can access the brand and it
// holds an unexpired premium subscription.
func (g *Guard) HasPremiumAccessForBrand(ctx context.Context, userID, brandID int64) (bool, error) {
	admin, err := g.isAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	ok, err := g.CanAccessBrand(ctx, userID, brandID)
	if err != nil || !ok {
		return false, err
	}
	return g.repo.PremiumActive(ctx, brandID, g.now())
}

// Authorize returns ErrBrandForbidden or ErrPremiumRequired when the user may
// not load the page.
func (g *Guard) Authorize(ctx context.Context, userID, brandID int64, premium bool) error {
	ok, err := g.CanAccessBrand(ctx, userID, brandID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBrandForbidden
	}
	if !premium {
		return nil
	}
	ok, err = g.HasPremiumAccessForBrand(ctx, userID, brandID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPremiumRequired
	}
	return nil
}

// Brand loads brandID without an access check; callers authorize first.
func (g *Guard) Brand(ctx context.Context, brandID int64) (Brand, error) {
	return g.repo.GetBrand(ctx, brandID)
}

// ResolveBrand returns the requested brand when accessible. A zero request
// falls back to the first accessible brand.
func (g *Guard) ResolveBrand(ctx context.Context, userID, requested int64) (Brand, error) {
	if requested > 0 {
		if err := g.Authorize(ctx, userID, requested, false); err != nil {
			return Brand{}, err
		}
		return g.repo.GetBrand(ctx, requested)
	}
	list, err := g.ListAccessible(ctx, userID)
	if err != nil {
		return Brand{}, err
	}
	if len(list) == 0 {
		return Brand{}, ErrNoBrands
	}
	return list[0], nil
}

// Competitors lists the benchmark brands configured for brandID.
func (g *Guard) Competitors(ctx context.Context, brandID int64) ([]Competitor, error) {
	list, err := g.repo.Competitors(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Competitor{}
	}
	return list, nil
}

// ActiveBrands lists every active brand regardless of user.
func (g *Guard) ActiveBrands(ctx context.Context) ([]Brand, error) {
	return g.repo.ActiveBrands(ctx)
}
