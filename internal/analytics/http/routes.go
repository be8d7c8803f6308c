package analytichttp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/brandlens/brandlens/internal/platform/httpx"
	"github.com/brandlens/brandlens/internal/shared"
)

// MountRoutes registers brand analytics endpoints onto the router. Every route
// authorizes {brandID} before loading data; premium pages also require an
// active subscription.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.exportLimit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export limit reached, try again shortly")
		}),
	)

	r.Group(func(gr chi.Router) {
		gr.Use(h.brands.RequireBrand(false))
		gr.Get("/brands/{brandID}/dashboard", h.handleDashboard)
		gr.Get("/brands/{brandID}/sales-trend", h.handleSalesTrend)
		gr.Get("/brands/{brandID}/top-products", h.handleTopProducts)
		gr.Get("/brands/{brandID}/marketing", h.handleMarketing)
		gr.Get("/brands/{brandID}/subscriptions", h.handleSubscriptions)
		gr.Get("/brands/{brandID}/purchase-orders", h.handlePurchaseOrders)
		gr.Get("/brands/{brandID}/stock-supply", h.handleStockSupply)
		gr.Group(func(er chi.Router) {
			er.Use(limiter)
			er.Get("/brands/{brandID}/export/dashboard.pdf", h.handlePDF)
			er.Get("/brands/{brandID}/export/{file}", h.handleExport)
		})
	})

	r.Group(func(gr chi.Router) {
		gr.Use(h.brands.RequireBrand(true))
		gr.Get("/brands/{brandID}/cohorts", h.handleCohorts)
		gr.Get("/brands/{brandID}/retention", h.handleRetention)
		gr.Get("/brands/{brandID}/rfm", h.handleRFM)
		gr.Get("/brands/{brandID}/forecast", h.handleForecast)
		gr.Get("/brands/{brandID}/market-share", h.handleMarketShare)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return "user:" + user, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
