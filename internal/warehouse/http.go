package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Options configures the HTTP client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Client  *http.Client
}

// HTTPClient talks to the warehouse query service over JSON.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client. An empty BaseURL yields a client whose calls
// all fail with ErrNotConfigured.
func NewHTTPClient(opts Options) *HTTPClient {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		token:   opts.Token,
		client:  client,
	}
}

type queryRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

type queryResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *HTTPClient) call(ctx context.Context, method string, params map[string]any, dest any) error {
	if c == nil || c.baseURL == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(queryRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("warehouse %s: encode: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/query/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("warehouse %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("warehouse %s: %w", method, ErrTimeout)
		}
		return fmt.Errorf("warehouse %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("warehouse %s: read: %w", method, err)
	}
	var envelope queryResponse
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := &RemoteError{Status: resp.StatusCode}
		if decodeErr == nil && envelope.Error != nil {
			remote.Code = envelope.Error.Code
			remote.Message = envelope.Error.Message
		} else if len(raw) > 0 {
			remote.Message = strings.TrimSpace(string(raw[:min(len(raw), 512)]))
		}
		return fmt.Errorf("warehouse %s: %w", method, remote)
	}
	if decodeErr != nil {
		return fmt.Errorf("warehouse %s: decode: %w", method, decodeErr)
	}
	if envelope.Error != nil {
		return fmt.Errorf("warehouse %s: %w", method, &RemoteError{Status: resp.StatusCode, Code: envelope.Error.Code, Message: envelope.Error.Message})
	}
	if dest == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return fmt.Errorf("warehouse %s: decode data: %w", method, err)
	}
	return nil
}

func (c *HTTPClient) GetBrandKPIs(ctx context.Context, brandID int64, period Period) (BrandKPIs, error) {
	var out BrandKPIs
	err := c.call(ctx, "get_brand_kpis", map[string]any{"brand_id": brandID, "period": period}, &out)
	return out, err
}

func (c *HTTPClient) GetSalesTrend(ctx context.Context, brandID int64, months int) ([]SalesTrendPoint, error) {
	out := []SalesTrendPoint{}
	err := c.call(ctx, "get_sales_trend", map[string]any{"brand_id": brandID, "months": months}, &out)
	return out, err
}

func (c *HTTPClient) GetTopProducts(ctx context.Context, brandID int64, period Period, limit int) ([]TopProduct, error) {
	out := []TopProduct{}
	err := c.call(ctx, "get_top_products", map[string]any{"brand_id": brandID, "period": period, "limit": limit}, &out)
	return out, err
}

func (c *HTTPClient) GetCohortAnalysis(ctx context.Context, brandID int64, monthsBack int) ([]CohortRow, error) {
	out := []CohortRow{}
	err := c.call(ctx, "get_cohort_analysis", map[string]any{"brand_id": brandID, "months_back": monthsBack}, &out)
	return out, err
}

func (c *HTTPClient) GetRFMAnalysis(ctx context.Context, brandID int64, monthsBack int) (RFMAnalysis, error) {
	var out RFMAnalysis
	err := c.call(ctx, "get_rfm_analysis", map[string]any{"brand_id": brandID, "months_back": monthsBack}, &out)
	return out, err
}

func (c *HTTPClient) GetRetentionAnalysis(ctx context.Context, brandID int64, monthsBack int, granularity Granularity) ([]RetentionPoint, error) {
	out := []RetentionPoint{}
	err := c.call(ctx, "get_retention_analysis", map[string]any{"brand_id": brandID, "months_back": monthsBack, "granularity": granularity}, &out)
	return out, err
}

func (c *HTTPClient) GetSalesForecast(ctx context.Context, brandID int64, historyMonths, forecastMonths int) (Forecast, error) {
	var out Forecast
	err := c.call(ctx, "get_sales_forecast", map[string]any{"brand_id": brandID, "history_months": historyMonths, "forecast_months": forecastMonths}, &out)
	return out, err
}

func (c *HTTPClient) GetMarketShareByCategory(ctx context.Context, brandID int64, competitors []int64, period Period) ([]MarketShareRow, error) {
	if competitors == nil {
		competitors = []int64{}
	}
	out := []MarketShareRow{}
	err := c.call(ctx, "get_market_share_by_category", map[string]any{"brand_id": brandID, "competitor_ids": competitors, "period": period}, &out)
	return out, err
}

func (c *HTTPClient) GetMarketingAnalytics(ctx context.Context, brandID int64, period Period) (MarketingAnalytics, error) {
	var out MarketingAnalytics
	err := c.call(ctx, "get_marketing_analytics", map[string]any{"brand_id": brandID, "period": period}, &out)
	return out, err
}

func (c *HTTPClient) GetSubscriptionOverview(ctx context.Context, brandID int64, period Period) (SubscriptionOverview, error) {
	var out SubscriptionOverview
	err := c.call(ctx, "get_subscription_overview", map[string]any{"brand_id": brandID, "period": period}, &out)
	return out, err
}

func (c *HTTPClient) GetPurchaseOrders(ctx context.Context, brandID int64, period Period) ([]PurchaseOrder, error) {
	out := []PurchaseOrder{}
	err := c.call(ctx, "get_purchase_orders", map[string]any{"brand_id": brandID, "period": period}, &out)
	return out, err
}

func (c *HTTPClient) GetStockSupply(ctx context.Context, brandID int64) ([]StockItem, error) {
	out := []StockItem{}
	err := c.call(ctx, "get_stock_supply", map[string]any{"brand_id": brandID}, &out)
	return out, err
}
