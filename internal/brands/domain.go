package brands

import (
	"errors"
	"net/http"

	"github.com/brandlens/brandlens/internal/platform/httpx"
)

var (
	// ErrBrandForbidden indicates the user may not see the brand.
	ErrBrandForbidden = httpx.NewError(http.StatusForbidden, "brand_forbidden", "Forbidden", "you do not have access to this brand")
	// ErrPremiumRequired indicates the page needs a premium subscription.
	ErrPremiumRequired = httpx.NewError(http.StatusForbidden, "premium_required", "Forbidden", "this report requires a premium subscription")
	// ErrNoBrands indicates the user is linked to no active brand.
	ErrNoBrands = errors.New("brands: no accessible brands")
	// ErrNotFound indicates the brand does not exist or is inactive.
	ErrNotFound = errors.New("brands: not found")
)

// Brand is a supplier brand tracked by the portal.
type Brand struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Currency string `json:"currency"`
	IsActive bool   `json:"is_active"`
}

// Competitor is a brand benchmarked against another in market-share reports.
type Competitor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IDs returns the IDs of the given brands in order.
func IDs(list []Brand) []int64 {
	ids := make([]int64, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.ID)
	}
	return ids
}
