package analytics

import (
	"time"

	"github.com/atelier-pos/atelier/internal/catalog"
)

// SaleItemRow is one completed sale item joined with its transaction date.
// Rows with a NULL status count as completed; reserved rows are excluded.
type SaleItemRow struct {
	TransactionID string
	ProductID     int64
	Color         string
	Size          string
	Channel       catalog.Channel
	Quantity      int
	UnitPrice     float64
	CreatedAt     time.Time
}

// TransactionRow is a transaction header used for cash aggregation.
type TransactionRow struct {
	ID        string
	Type      string
	Status    string
	Total     float64
	CreatedAt time.Time
}

// EnrichedProduct is a product annotated with ledger-derived figures.
type EnrichedProduct struct {
	catalog.Product
	Stock          int     `json:"stock"`
	StockSingle    int     `json:"stock_single"`
	StockWholesale int     `json:"stock_wholesale"`
	Sold           int     `json:"sold"`
	Revenue        float64 `json:"revenue"`
}

// DashboardStats is the headline figure set for the dashboard.
type DashboardStats struct {
	TotalRevenue    float64 `json:"total_revenue"`
	TotalUnits      int     `json:"total_units"`
	TodaySalesTotal float64 `json:"today_sales_total"`
	TodaySalesCount int     `json:"today_sales_count"`
	TodayNetCash    float64 `json:"today_net_cash"`
	ActiveProducts  int     `json:"active_products"`
	LowStockCount   int     `json:"low_stock_count"`
}

// MonthlyPoint is one month of the revenue/units series. Revenue is
// reported in thousands with one decimal.
type MonthlyPoint struct {
	Month    string  `json:"month"`
	RevenueK float64 `json:"revenue_k"`
	Units    int     `json:"units"`
}

// TopSeller annotates a product with its sold/revenue/stock figures.
type TopSeller struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	Reference    string  `json:"reference"`
	Sold         int     `json:"sold"`
	RevenueTotal float64 `json:"revenue_total"`
	Stock        int     `json:"stock"`
}

// CategoryRevenue is revenue per category, in thousands.
type CategoryRevenue struct {
	Category string  `json:"category"`
	RevenueK float64 `json:"revenue_k"`
}

// Ranking orders products by units sold.
type Ranking struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
	Sold      int    `json:"sold"`
	Stock     int    `json:"stock"`
}

// ColorBreakdown joins sold figures against current stock per
// (product, color, channel).
type ColorBreakdown struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Channel   catalog.Channel `json:"channel"`
	Sold      int             `json:"sold"`
	Revenue   float64         `json:"revenue"`
	Stock     int             `json:"stock"`
}

// ProductForecast is the per-product demand projection over the trailing
// eight ISO weeks.
type ProductForecast struct {
	ProductID   int64     `json:"product_id"`
	Name        string    `json:"name"`
	Reference   string    `json:"reference"`
	Weekly      []float64 `json:"weekly"`
	Base        float64   `json:"base"`
	Slope       float64   `json:"slope"`
	Projected4W []int     `json:"projected_4w"`
	Trend       string    `json:"trend"`
	Confidence  string    `json:"confidence"`
}

// ProjectedTotal sums the 4-week projection, the forecast sort key.
func (f ProductForecast) ProjectedTotal() int {
	var total int
	for _, units := range f.Projected4W {
		total += units
	}
	return total
}

// lowStockThreshold is the unit count below which a product counts as
// low stock on the dashboard.
const lowStockThreshold = 20
