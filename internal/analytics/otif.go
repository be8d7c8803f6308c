package analytics

import (
	"strings"
	"time"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// OTIFSummary measures purchase order delivery performance.
type OTIFSummary struct {
	TotalOrders     int     `json:"total_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	DeliveredOrders int     `json:"delivered_orders"`
	OnTimeOrders    int     `json:"on_time_orders"`
	InFullOrders    int     `json:"in_full_orders"`
	OTIFOrders      int     `json:"otif_orders"`
	OpenOrders      int     `json:"open_orders"`
	LateOpenOrders  int     `json:"late_open_orders"`
	OnTimePct       float64 `json:"on_time_pct"`
	InFullPct       float64 `json:"in_full_pct"`
	OTIFPct         float64 `json:"otif_pct"`
}

// SummarizeOTIF computes on-time in-full rates over delivered orders. An
// order is on time when delivered no later than its expected date and in full
// when the delivered quantity covers the ordered quantity. Cancelled orders
// are counted but excluded from every rate.
func SummarizeOTIF(orders []warehouse.PurchaseOrder, now time.Time) OTIFSummary {
	var s OTIFSummary
	for _, o := range orders {
		s.TotalOrders++
		if strings.EqualFold(strings.TrimSpace(o.Status), "cancelled") {
			s.CancelledOrders++
			continue
		}
		if !o.Delivered() {
			s.OpenOrders++
			if !o.ExpectedAt.IsZero() && now.After(o.ExpectedAt) {
				s.LateOpenOrders++
			}
			continue
		}
		s.DeliveredOrders++
		onTime := !o.DeliveredAt.After(o.ExpectedAt)
		inFull := o.DeliveredQty >= o.OrderedQty
		if onTime {
			s.OnTimeOrders++
		}
		if inFull {
			s.InFullOrders++
		}
		if onTime && inFull {
			s.OTIFOrders++
		}
	}
	delivered := float64(s.DeliveredOrders)
	s.OnTimePct = pct(float64(s.OnTimeOrders), delivered)
	s.InFullPct = pct(float64(s.InFullOrders), delivered)
	s.OTIFPct = pct(float64(s.OTIFOrders), delivered)
	return s
}
