package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brandlens/brandlens/internal/analytics/export"
	"github.com/brandlens/brandlens/internal/platform/httpx"
)

type tableLoader func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error)

type exportReport struct {
	premium bool
	load    tableLoader
}

var exportReports = map[string]exportReport{
	export.ReportSalesTrend: {load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		points, err := h.service.SalesTrend(ctx, pc.brand.ID, pc.filters.Months)
		return export.SalesTrendTable(points), err
	}},
	export.ReportTopProducts: {load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		products, err := h.service.TopProducts(ctx, pc.brand.ID, pc.filters.period(), pc.filters.Limit)
		return export.TopProductsTable(products), err
	}},
	export.ReportCohorts: {premium: true, load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		rows, err := h.service.Cohorts(ctx, pc.brand.ID, pc.filters.MonthsBack)
		return export.CohortTable(rows), err
	}},
	export.ReportRetention: {premium: true, load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		points, err := h.service.Retention(ctx, pc.brand.ID, pc.filters.MonthsBack, pc.filters.granularity())
		return export.RetentionTable(points), err
	}},
	export.ReportRFM: {premium: true, load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		analysis, err := h.service.RFM(ctx, pc.brand.ID, pc.filters.MonthsBack)
		return export.RFMTable(analysis), err
	}},
	export.ReportForecast: {premium: true, load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		forecast, err := h.service.Forecast(ctx, pc.brand.ID, pc.filters.HistoryMonths, pc.filters.ForecastMonths)
		return export.ForecastTable(forecast), err
	}},
	export.ReportMarketShare: {premium: true, load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		data, err := h.loadMarketShare(ctx, pc)
		return export.MarketShareTable(data.rows), err
	}},
	export.ReportMarketing: {load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		data, err := h.service.Marketing(ctx, pc.brand.ID, pc.filters.period())
		return export.MarketingTable(data), err
	}},
	export.ReportSubscriptions: {load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		overview, err := h.service.Subscriptions(ctx, pc.brand.ID, pc.filters.period())
		return export.SubscriptionsTable(overview), err
	}},
	export.ReportPurchaseOrders: {load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		orders, err := h.service.PurchaseOrders(ctx, pc.brand.ID, pc.filters.period())
		return export.PurchaseOrdersTable(orders), err
	}},
	export.ReportStockSupply: {load: func(ctx context.Context, h *Handler, pc pageContext) (export.Table, error) {
		items, err := h.service.StockSupply(ctx, pc.brand.ID)
		return export.StockSupplyTable(items), err
	}},
}

// splitFile separates "<report>.<ext>" from the URL.
func splitFile(file string) (string, string, bool) {
	idx := strings.LastIndexByte(file, '.')
	if idx <= 0 || idx == len(file)-1 {
		return "", "", false
	}
	return file[:idx], strings.ToLower(file[idx+1:]), true
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reportName, ext, ok := splitFile(chi.URLParam(r, "file"))
	if !ok || (ext != "csv" && ext != "xlsx") {
		httpx.RespondError(w, fmt.Errorf("unknown export format: %w", httpx.ErrNotFound))
		return
	}
	report, ok := exportReports[reportName]
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%v: %w", export.ErrUnknownReport, httpx.ErrNotFound))
		return
	}

	pc, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if report.premium {
		if err := h.brands.Guard.Authorize(ctx, pc.userID, pc.brand.ID, true); err != nil {
			if httpx.IsProblem(err) {
				httpx.RespondError(w, err)
				return
			}
			h.handleServerError(w, r, "authorize export", err)
			return
		}
	}

	table, err := report.load(ctx, h, pc)
	if err != nil {
		h.respondLoadError(w, r, "export "+reportName, err)
		return
	}

	filename := export.Filename(reportName, h.now(), ext)
	disposition := fmt.Sprintf("attachment; filename=\"%s\"", filename)

	if ext == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", disposition)
		if err := export.WriteCSV(w, table); err != nil {
			h.logError(r, "stream csv", err)
		}
		return
	}

	// excelize needs the whole workbook before the first byte is known
	buf := h.exportPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.exportPool.Put(buf)
	}()
	if err := export.WriteXLSX(buf, table); err != nil {
		h.handleServerError(w, r, "write xlsx", err)
		return
	}
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", disposition)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError(r, "stream xlsx", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", export.ErrPDFUnavailable.Error())
		return
	}
	pc, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	data, err := h.loadDashboard(ctx, pc)
	if err != nil {
		h.respondLoadError(w, r, "dashboard pdf", err)
		return
	}

	payload := export.DashboardPayload{
		BrandName:   pc.brand.Name,
		Period:      string(pc.filters.period()),
		GeneratedAt: h.now(),
		Cards:       pc.format.KPICards(data.KPIs),
		Trend:       export.SalesTrendTable(data.Trend),
		TopProducts: export.TopProductsTable(data.TopProducts),
	}
	pdfBytes, err := h.pdf.RenderDashboard(ctx, payload)
	if err != nil {
		if errors.Is(err, export.ErrPDFUnavailable) {
			httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", err.Error())
			return
		}
		h.handleServerError(w, r, "render pdf", err)
		return
	}

	filename := export.Filename("dashboard", h.now(), "pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError(r, "stream pdf", err)
	}
}
