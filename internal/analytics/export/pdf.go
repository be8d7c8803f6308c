package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/brandlens/brandlens/internal/analytics/ui"
)

// DashboardPayload aggregates the brand overview destined for PDF rendering.
type DashboardPayload struct {
	BrandName   string
	Period      string
	GeneratedAt time.Time
	Cards       []ui.Card
	Trend       Table
	TopProducts Table
}

// ErrPDFUnavailable is returned when no Gotenberg endpoint is configured.
var ErrPDFUnavailable = errors.New("export: pdf rendering unavailable")

// PDFExporter wraps Gotenberg interactions for dashboard exports.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// RenderDashboard sends HTML content to Gotenberg and returns the PDF bytes.
func (p *PDFExporter) RenderDashboard(ctx context.Context, payload DashboardPayload) ([]byte, error) {
	if p == nil {
		return nil, ErrPDFUnavailable
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, ErrPDFUnavailable
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	html := buildHTML(payload)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "dashboard.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

func buildHTML(payload DashboardPayload) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;color:#0f172a;}h1{font-size:20px;}h2{font-size:16px;color:#475569;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #cbd5f5;padding:6px;text-align:right;}th{text-align:left;background:#f1f5f9;}section{margin-bottom:24px;} .metric-label{text-align:left;} .delta{color:#475569;font-size:12px;}")
	b.WriteString("</style></head><body>")
	b.WriteString(fmt.Sprintf("<h1>%s – %s</h1>", templateEscape(payload.BrandName), templateEscape(payload.Period)))
	if !payload.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("<p class=\"delta\">Generated %s</p>", payload.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))
	}

	if len(payload.Cards) > 0 {
		b.WriteString("<section><h2>Key metrics</h2><table><tbody>")
		for _, card := range payload.Cards {
			b.WriteString("<tr><td class=\"metric-label\">")
			b.WriteString(templateEscape(card.Label))
			b.WriteString("</td><td>")
			b.WriteString(templateEscape(card.Value))
			if card.Delta != "" {
				b.WriteString(" <span class=\"delta\">")
				b.WriteString(templateEscape(card.Delta))
				b.WriteString("</span>")
			}
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	}

	writeTable(&b, payload.Trend)
	writeTable(&b, payload.TopProducts)

	b.WriteString("</body></html>")
	return b.String()
}

func writeTable(b *strings.Builder, table Table) {
	if len(table.Rows) == 0 {
		return
	}
	b.WriteString("<section><h2>")
	b.WriteString(templateEscape(table.Title))
	b.WriteString("</h2><table><thead><tr>")
	for _, h := range table.Headers {
		b.WriteString("<th>")
		b.WriteString(templateEscape(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range table.Rows {
		b.WriteString("<tr>")
		for i, cell := range row {
			if i == 0 {
				b.WriteString("<td class=\"metric-label\">")
			} else {
				b.WriteString("<td>")
			}
			b.WriteString(templateEscape(formatCell(cell)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></section>")
}

func templateEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(v)
}
