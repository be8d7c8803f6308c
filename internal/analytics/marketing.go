package analytics

import (
	"sort"
	"strings"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// ChannelSummary aggregates campaign performance. CTRPct and CVRPct are
// percentages; ROAS is revenue per unit of spend.
type ChannelSummary struct {
	Channel     string  `json:"channel"`
	Campaigns   int     `json:"campaigns"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	ROAS        float64 `json:"roas"`
	CTRPct      float64 `json:"ctr_pct"`
	CVRPct      float64 `json:"cvr_pct"`
}

// MarketingSummary holds overall totals and the per-channel rollup.
type MarketingSummary struct {
	Totals   ChannelSummary   `json:"totals"`
	Channels []ChannelSummary `json:"channels"`
}

// SummarizeMarketing rolls campaigns up per channel, sorted by revenue.
func SummarizeMarketing(data warehouse.MarketingAnalytics) MarketingSummary {
	summary := MarketingSummary{Totals: ChannelSummary{Channel: "all"}, Channels: []ChannelSummary{}}
	byChannel := make(map[string]*ChannelSummary)
	order := make([]string, 0)
	for _, c := range data.Campaigns {
		name := strings.TrimSpace(c.Channel)
		if name == "" {
			name = "other"
		}
		ch, ok := byChannel[name]
		if !ok {
			ch = &ChannelSummary{Channel: name}
			byChannel[name] = ch
			order = append(order, name)
		}
		addCampaign(ch, c)
		addCampaign(&summary.Totals, c)
	}
	finishRates(&summary.Totals)
	for _, name := range order {
		ch := byChannel[name]
		finishRates(ch)
		summary.Channels = append(summary.Channels, *ch)
	}
	sort.SliceStable(summary.Channels, func(i, j int) bool {
		return summary.Channels[i].Revenue > summary.Channels[j].Revenue
	})
	return summary
}

func addCampaign(dst *ChannelSummary, c warehouse.Campaign) {
	dst.Campaigns++
	dst.Spend += c.Spend
	dst.Revenue += c.Revenue
	dst.Impressions += c.Impressions
	dst.Clicks += c.Clicks
	dst.Conversions += c.Conversions
}

func finishRates(s *ChannelSummary) {
	s.ROAS = ratio(s.Revenue, s.Spend)
	s.CTRPct = pct(float64(s.Clicks), float64(s.Impressions))
	s.CVRPct = pct(float64(s.Conversions), float64(s.Clicks))
}
