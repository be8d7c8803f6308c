package analytics

import (
	"sort"
	"strings"

	"github.com/brandlens/brandlens/internal/warehouse"
)

// SubcategoryShare is a leaf of the market-share tree.
type SubcategoryShare struct {
	Name          string  `json:"name"`
	SharePct      float64 `json:"share_pct"`
	BrandRevenue  float64 `json:"brand_revenue"`
	MarketRevenue float64 `json:"market_revenue"`
}

// CategoryShare groups subcategories under their parent category.
type CategoryShare struct {
	Category       string             `json:"category"`
	SharePct       float64            `json:"share_pct"`
	BrandRevenue   float64            `json:"brand_revenue"`
	MarketRevenue  float64            `json:"market_revenue"`
	RollupProvided bool               `json:"rollup_provided"`
	Children       []SubcategoryShare `json:"children"`
}

const uncategorized = "Uncategorized"

// BuildMarketShareTree nests flat rows by category. When the warehouse sends
// no rollup row for a category, its share is the mean of the children's
// shares and its revenues are their sums. Categories are sorted by share
// descending, ties by name.
func BuildMarketShareTree(rows []warehouse.MarketShareRow) []CategoryShare {
	byName := make(map[string]*CategoryShare)
	order := make([]string, 0)
	for _, row := range rows {
		name := strings.TrimSpace(row.Category)
		if name == "" {
			name = uncategorized
		}
		cat, ok := byName[name]
		if !ok {
			cat = &CategoryShare{Category: name, Children: []SubcategoryShare{}}
			byName[name] = cat
			order = append(order, name)
		}
		if row.IsRollup() {
			if !cat.RollupProvided {
				cat.RollupProvided = true
				cat.SharePct = row.SharePct
				cat.BrandRevenue = row.BrandRevenue
				cat.MarketRevenue = row.MarketRevenue
			}
			continue
		}
		cat.Children = append(cat.Children, SubcategoryShare{
			Name:          strings.TrimSpace(row.Subcategory),
			SharePct:      row.SharePct,
			BrandRevenue:  row.BrandRevenue,
			MarketRevenue: row.MarketRevenue,
		})
	}

	tree := make([]CategoryShare, 0, len(order))
	for _, name := range order {
		cat := byName[name]
		if !cat.RollupProvided && len(cat.Children) > 0 {
			shares := make([]float64, 0, len(cat.Children))
			for _, child := range cat.Children {
				shares = append(shares, child.SharePct)
				cat.BrandRevenue += child.BrandRevenue
				cat.MarketRevenue += child.MarketRevenue
			}
			cat.SharePct = mean(shares)
		}
		sort.SliceStable(cat.Children, func(i, j int) bool {
			a, b := cat.Children[i], cat.Children[j]
			if a.SharePct != b.SharePct {
				return a.SharePct > b.SharePct
			}
			return a.Name < b.Name
		})
		tree = append(tree, *cat)
	}
	sort.SliceStable(tree, func(i, j int) bool {
		if tree[i].SharePct != tree[j].SharePct {
			return tree[i].SharePct > tree[j].SharePct
		}
		return tree[i].Category < tree[j].Category
	})
	return tree
}
