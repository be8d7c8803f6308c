package brands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brandlens/brandlens/internal/platform/httpx"
	"github.com/brandlens/brandlens/internal/shared"
)

// Middleware wires brand authorization helpers for HTTP handlers.
type Middleware struct {
	Guard  *Guard
	Logger *slog.Logger
}

type brandContextKey struct{}

// WithBrand stores the authorized brand on the context.
func WithBrand(ctx context.Context, brand Brand) context.Context {
	return context.WithValue(ctx, brandContextKey{}, brand)
}

// BrandFromContext returns the brand authorized by RequireBrand.
func BrandFromContext(ctx context.Context) (Brand, bool) {
	b, ok := ctx.Value(brandContextKey{}).(Brand)
	return b, ok && b.ID > 0
}

// BrandIDFromContext returns the id of the brand authorized by RequireBrand.
func BrandIDFromContext(ctx context.Context) (int64, bool) {
	b, ok := BrandFromContext(ctx)
	return b.ID, ok
}

// RequireUser rejects requests without a signed-in user.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := shared.UserIDFromContext(r.Context()); err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the current user holds role.
func (m Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := shared.UserIDFromContext(r.Context())
			if err != nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			ok, err := m.Guard.HasRole(r.Context(), userID, role)
			if err != nil {
				m.logError(r, "brands require role", err)
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !ok {
				httpx.RespondError(w, fmt.Errorf("role %s required: %w", role, httpx.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireBrand authorizes the {brandID} URL parameter before any page work.
// Premium routes additionally require premium access for the brand.
func (m Middleware) RequireBrand(premium bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := shared.UserIDFromContext(r.Context())
			if err != nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			brandID, err := strconv.ParseInt(chi.URLParam(r, "brandID"), 10, 64)
			if err != nil || brandID <= 0 {
				httpx.Problem(w, http.StatusBadRequest, "Invalid Brand", "brand id must be a positive integer")
				return
			}
			if err := m.Guard.Authorize(r.Context(), userID, brandID, premium); err != nil {
				m.respondAuthorizeError(w, r, err)
				return
			}
			brand, err := m.Guard.Brand(r.Context(), brandID)
			if err != nil {
				m.respondAuthorizeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithBrand(r.Context(), brand)))
		})
	}
}

func (m Middleware) respondAuthorizeError(w http.ResponseWriter, r *http.Request, err error) {
	// unknown brands look the same as forbidden ones
	if errors.Is(err, ErrNotFound) {
		err = ErrBrandForbidden
	}
	if !httpx.IsProblem(err) {
		m.logError(r, "brands authorize", err)
	}
	httpx.RespondError(w, err)
}

func (m Middleware) logError(r *http.Request, msg string, err error) {
	if m.Logger != nil {
		m.Logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	}
}
