package analytichttp

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/brandlens/brandlens/internal/analytics/ui"
	"github.com/brandlens/brandlens/internal/platform/httpx"
	"github.com/brandlens/brandlens/internal/warehouse"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	pc, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadDashboard(ctx, pc)
	if err != nil {
		h.respondLoadError(w, r, "dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, pc.format.Dashboard(pc.meta(), data))
}

// loadDashboard fetches the overview blocks in parallel; the first failure
// cancels the others.
func (h *Handler) loadDashboard(ctx context.Context, pc pageContext) (ui.DashboardData, error) {
	var data ui.DashboardData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		kpis, err := h.service.KPIs(ctx, pc.brand.ID, pc.filters.period())
		if err != nil {
			return err
		}
		data.KPIs = kpis
		return nil
	})

	g.Go(func() error {
		points, err := h.service.SalesTrend(ctx, pc.brand.ID, pc.filters.Months)
		if err != nil {
			return err
		}
		data.Trend = points
		return nil
	})

	g.Go(func() error {
		products, err := h.service.TopProducts(ctx, pc.brand.ID, pc.filters.period(), pc.filters.Limit)
		if err != nil {
			return err
		}
		data.TopProducts = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return ui.DashboardData{}, err
	}
	return data, nil
}

// servePage runs a single-load page: authorize, load, build.
func servePage[T any](h *Handler, w http.ResponseWriter, r *http.Request, op string,
	load func(context.Context, pageContext) (T, error),
	build func(pageContext, T) ui.Page,
) {
	pc, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := load(ctx, pc)
	if err != nil {
		h.respondLoadError(w, r, op, err)
		return
	}
	httpx.JSON(w, http.StatusOK, build(pc, data))
}

func (h *Handler) handleSalesTrend(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "sales trend",
		func(ctx context.Context, pc pageContext) ([]warehouse.SalesTrendPoint, error) {
			return h.service.SalesTrend(ctx, pc.brand.ID, pc.filters.Months)
		},
		func(pc pageContext, points []warehouse.SalesTrendPoint) ui.Page {
			return pc.format.SalesTrend(pc.meta(), points)
		})
}

func (h *Handler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "top products",
		func(ctx context.Context, pc pageContext) ([]warehouse.TopProduct, error) {
			return h.service.TopProducts(ctx, pc.brand.ID, pc.filters.period(), pc.filters.Limit)
		},
		func(pc pageContext, products []warehouse.TopProduct) ui.Page {
			return pc.format.TopProducts(pc.meta(), products)
		})
}

func (h *Handler) handleCohorts(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "cohorts",
		func(ctx context.Context, pc pageContext) ([]warehouse.CohortRow, error) {
			return h.service.Cohorts(ctx, pc.brand.ID, pc.filters.MonthsBack)
		},
		func(pc pageContext, rows []warehouse.CohortRow) ui.Page {
			return pc.format.Cohorts(pc.meta(), rows)
		})
}

func (h *Handler) handleRetention(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "retention",
		func(ctx context.Context, pc pageContext) ([]warehouse.RetentionPoint, error) {
			return h.service.Retention(ctx, pc.brand.ID, pc.filters.MonthsBack, pc.filters.granularity())
		},
		func(pc pageContext, points []warehouse.RetentionPoint) ui.Page {
			return pc.format.Retention(pc.meta(), points)
		})
}

func (h *Handler) handleRFM(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "rfm",
		func(ctx context.Context, pc pageContext) (warehouse.RFMAnalysis, error) {
			return h.service.RFM(ctx, pc.brand.ID, pc.filters.MonthsBack)
		},
		func(pc pageContext, analysis warehouse.RFMAnalysis) ui.Page {
			return pc.format.RFM(pc.meta(), analysis)
		})
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "forecast",
		func(ctx context.Context, pc pageContext) (warehouse.Forecast, error) {
			return h.service.Forecast(ctx, pc.brand.ID, pc.filters.HistoryMonths, pc.filters.ForecastMonths)
		},
		func(pc pageContext, forecast warehouse.Forecast) ui.Page {
			return pc.format.Forecast(pc.meta(), forecast)
		})
}

type marketShareData struct {
	rows        []warehouse.MarketShareRow
	competitors int
}

func (h *Handler) loadMarketShare(ctx context.Context, pc pageContext) (marketShareData, error) {
	rivals, err := h.brands.Guard.Competitors(ctx, pc.brand.ID)
	if err != nil {
		return marketShareData{}, err
	}
	ids := make([]int64, 0, len(rivals))
	for _, c := range rivals {
		ids = append(ids, c.ID)
	}
	rows, err := h.service.MarketShare(ctx, pc.brand.ID, ids, pc.filters.period())
	if err != nil {
		return marketShareData{}, err
	}
	return marketShareData{rows: rows, competitors: len(ids)}, nil
}

func (h *Handler) handleMarketShare(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "market share", h.loadMarketShare,
		func(pc pageContext, data marketShareData) ui.Page {
			return pc.format.MarketShare(pc.meta(), data.rows, data.competitors)
		})
}

func (h *Handler) handleMarketing(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "marketing",
		func(ctx context.Context, pc pageContext) (warehouse.MarketingAnalytics, error) {
			return h.service.Marketing(ctx, pc.brand.ID, pc.filters.period())
		},
		func(pc pageContext, data warehouse.MarketingAnalytics) ui.Page {
			return pc.format.Marketing(pc.meta(), data)
		})
}

func (h *Handler) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "subscriptions",
		func(ctx context.Context, pc pageContext) (warehouse.SubscriptionOverview, error) {
			return h.service.Subscriptions(ctx, pc.brand.ID, pc.filters.period())
		},
		func(pc pageContext, overview warehouse.SubscriptionOverview) ui.Page {
			return pc.format.Subscriptions(pc.meta(), overview)
		})
}

func (h *Handler) handlePurchaseOrders(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "purchase orders",
		func(ctx context.Context, pc pageContext) ([]warehouse.PurchaseOrder, error) {
			return h.service.PurchaseOrders(ctx, pc.brand.ID, pc.filters.period())
		},
		func(pc pageContext, orders []warehouse.PurchaseOrder) ui.Page {
			return pc.format.PurchaseOrders(pc.meta(), orders, h.now())
		})
}

func (h *Handler) handleStockSupply(w http.ResponseWriter, r *http.Request) {
	servePage(h, w, r, "stock supply",
		func(ctx context.Context, pc pageContext) ([]warehouse.StockItem, error) {
			return h.service.StockSupply(ctx, pc.brand.ID)
		},
		func(pc pageContext, items []warehouse.StockItem) ui.Page {
			p := pc.format.StockSupply(pc.meta(), items)
			p.Period = ""
			return p
		})
}
