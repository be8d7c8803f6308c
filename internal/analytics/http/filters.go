package analytichttp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/brandlens/brandlens/internal/shared"
	"github.com/brandlens/brandlens/internal/warehouse"
)

const (
	defaultTrendMonths    = 12
	defaultTopLimit       = 10
	defaultMonthsBack     = 12
	defaultHistoryMonths  = 12
	defaultForecastMonths = 3
)

// pageFilters holds sanitized query parameters. Fields a page does not read
// keep their defaults and always validate.
type pageFilters struct {
	Period         string `validate:"oneof=7d 30d 90d 12m ytd"`
	Months         int    `validate:"gte=1,lte=36"`
	Limit          int    `validate:"gte=1,lte=100"`
	MonthsBack     int    `validate:"gte=1,lte=36"`
	Granularity    string `validate:"oneof=week month quarter"`
	HistoryMonths  int    `validate:"gte=3,lte=36"`
	ForecastMonths int    `validate:"gte=1,lte=12"`
}

func (f pageFilters) period() warehouse.Period {
	return warehouse.Period(f.Period)
}

func (f pageFilters) granularity() warehouse.Granularity {
	return warehouse.Granularity(f.Granularity)
}

type validationError struct {
	fields map[string]string
}

func (e validationError) Error() string {
	names := make([]string, 0, len(e.fields))
	for name, rule := range e.fields {
		names = append(names, fmt.Sprintf("%s (%s)", name, rule))
	}
	return "invalid filter: " + strings.Join(names, ", ")
}

var queryNames = map[string]string{
	"Period":         "period",
	"Months":         "months",
	"Limit":          "limit",
	"MonthsBack":     "months_back",
	"Granularity":    "granularity",
	"HistoryMonths":  "history_months",
	"ForecastMonths": "forecast_months",
}

// parseFilters reads query parameters. A missing period falls back to the
// one remembered on the session when it is still valid, then the default.
func (h *Handler) parseFilters(r *http.Request) (pageFilters, error) {
	q := r.URL.Query()
	f := pageFilters{
		Period:         strings.ToLower(strings.TrimSpace(q.Get("period"))),
		Granularity:    strings.ToLower(strings.TrimSpace(q.Get("granularity"))),
		Months:         defaultTrendMonths,
		Limit:          defaultTopLimit,
		MonthsBack:     defaultMonthsBack,
		HistoryMonths:  defaultHistoryMonths,
		ForecastMonths: defaultForecastMonths,
	}
	if f.Period == "" {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			_, remembered := sess.Selection()
			if p, err := warehouse.ParsePeriod(remembered); err == nil {
				f.Period = string(p)
			}
		}
	}
	if f.Period == "" {
		f.Period = string(warehouse.DefaultPeriod)
	}
	if f.Granularity == "" {
		f.Granularity = string(warehouse.GranularityMonth)
	}

	bad := map[string]string{}
	for name, dst := range map[string]*int{
		"months":          &f.Months,
		"limit":           &f.Limit,
		"months_back":     &f.MonthsBack,
		"history_months":  &f.HistoryMonths,
		"forecast_months": &f.ForecastMonths,
	} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			bad[name] = "integer"
			continue
		}
		*dst = v
	}
	if len(bad) > 0 {
		return pageFilters{}, validationError{fields: bad}
	}

	if err := h.validator.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return pageFilters{}, err
		}
		for _, fe := range verrs {
			bad[queryNames[fe.Field()]] = fe.Tag()
		}
		return pageFilters{}, validationError{fields: bad}
	}
	return f, nil
}
