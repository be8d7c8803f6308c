package brands

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brandlens/brandlens/internal/platform/httpx"
	"github.com/brandlens/brandlens/internal/shared"
)

// Handler serves brand listing and selection endpoints.
type Handler struct {
	logger    *slog.Logger
	guard     *Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, guard *Guard) *Handler {
	return &Handler{logger: logger, guard: guard, validator: validator.New()}
}

// MountRoutes registers brand routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/brands", h.listBrands)
	r.Put("/brands/selection", h.updateSelection)
}

type brandList struct {
	Brands   []Brand `json:"brands"`
	Selected *Brand  `json:"selected"`
	Period   string  `json:"period,omitempty"`
}

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	list, err := h.guard.ListAccessible(ctx, userID)
	if err != nil {
		h.logger.Error("list brands", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Brand{}
	}
	resp := brandList{Brands: list}

	var requested int64
	if sess := shared.SessionFromContext(ctx); sess != nil {
		requested, resp.Period = sess.Selection()
	}
	selected, err := h.guard.ResolveBrand(ctx, userID, requested)
	if err != nil && requested > 0 {
		// remembered brand lost access; fall back to the first one
		selected, err = h.guard.ResolveBrand(ctx, userID, 0)
	}
	switch {
	case err == nil:
		resp.Selected = &selected
	case errors.Is(err, ErrNoBrands):
	default:
		h.logger.Error("resolve brand", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type selectionRequest struct {
	BrandID int64  `json:"brand_id" validate:"required,gt=0"`
	Period  string `json:"period" validate:"omitempty,oneof=7d 30d 90d 12m ytd"`
}

func (h *Handler) updateSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := shared.UserIDFromContext(ctx)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req selectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	brand, err := h.guard.ResolveBrand(ctx, userID, req.BrandID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrBrandForbidden
		}
		if httpx.IsProblem(err) {
			httpx.RespondError(w, err)
			return
		}
		h.logger.Error("select brand", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if sess := shared.SessionFromContext(ctx); sess != nil {
		sess.SetSelection(brand.ID, req.Period)
	}
	httpx.JSON(w, http.StatusOK, brandList{Brands: []Brand{brand}, Selected: &brand, Period: req.Period})
}
