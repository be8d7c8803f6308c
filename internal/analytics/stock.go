package analytics

import (
	"sort"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// StockStatus buckets a SKU by days of cover.
type StockStatus string

const (
	StockOut       StockStatus = "out"
	StockLow       StockStatus = "low"
	StockHealthy   StockStatus = "healthy"
	StockOverstock StockStatus = "overstock"
)

const (
	LowCoverDays       = 14.0
	OverstockCoverDays = 90.0
)

// StockPosition is a stock item with its cover and status.
type StockPosition struct {
	warehouse.StockItem
	CoverDays float64     `json:"cover_days"`
	NoSales   bool        `json:"no_sales"`
	Status    StockStatus `json:"status"`
}

// StockSummary lists positions sorted by urgency with status counts.
type StockSummary struct {
	Positions []StockPosition     `json:"positions"`
	Counts    map[StockStatus]int `json:"counts"`
}

// ClassifyStock computes days of cover as on-hand over daily sales. Items
// with stock but no sales are overstock and sort after every finite cover.
func ClassifyStock(items []warehouse.StockItem) StockSummary {
	summary := StockSummary{
		Positions: make([]StockPosition, 0, len(items)),
		Counts: map[StockStatus]int{
			StockOut: 0, StockLow: 0, StockHealthy: 0, StockOverstock: 0,
		},
	}
	for _, item := range items {
		pos := StockPosition{StockItem: item}
		switch {
		case item.OnHand <= 0:
			pos.Status = StockOut
		case item.DailySales <= 0:
			pos.NoSales = true
			pos.Status = StockOverstock
		default:
			pos.CoverDays = item.OnHand / item.DailySales
			switch {
			case pos.CoverDays < LowCoverDays:
				pos.Status = StockLow
			case pos.CoverDays > OverstockCoverDays:
				pos.Status = StockOverstock
			default:
				pos.Status = StockHealthy
			}
		}
		summary.Counts[pos.Status]++
		summary.Positions = append(summary.Positions, pos)
	}
	sort.SliceStable(summary.Positions, func(i, j int) bool {
		a, b := summary.Positions[i], summary.Positions[j]
		if a.NoSales != b.NoSales {
			return !a.NoSales
		}
		if a.CoverDays != b.CoverDays {
			return a.CoverDays < b.CoverDays
		}
		return a.SKU < b.SKU
	})
	return summary
}
