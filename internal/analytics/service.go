package analytics

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/atelier-pos/atelier/internal/catalog"
)

// Service derives read-only views from the transaction ledger and the
// variant stock counters. Figures are computed on demand, never cached.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

var titleCaser = cases.Title(language.English)

func channelMatches(c catalog.Channel, filter catalog.Channel) bool {
	return filter == "" || c == filter
}

type ledger struct {
	products []catalog.Product
	variants []catalog.Variant
	items    []SaleItemRow
}

// fetchLedger loads the three row sets in parallel; every aggregation
// needs at least two of them.
func (s *Service) fetchLedger(ctx context.Context) (ledger, error) {
	var l ledger
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l.products, err = s.repo.Products(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		l.variants, err = s.repo.Variants(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		l.items, err = s.repo.CompletedSaleItems(ctx, time.Time{}, time.Time{})
		return err
	})
	return l, g.Wait()
}

type stockFigures struct {
	total     int
	single    int
	wholesale int
}

func stockByProduct(variants []catalog.Variant) map[int64]stockFigures {
	out := make(map[int64]stockFigures)
	for _, v := range variants {
		fig := out[v.ProductID]
		fig.total += v.Stock
		switch v.Channel {
		case catalog.ChannelSingle:
			fig.single += v.Stock
		case catalog.ChannelWholesale:
			fig.wholesale += v.Stock
		}
		out[v.ProductID] = fig
	}
	return out
}

type soldFigures struct {
	units   int
	revenue float64
}

func soldByProduct(items []SaleItemRow, channel catalog.Channel) map[int64]soldFigures {
	out := make(map[int64]soldFigures)
	for _, item := range items {
		if !channelMatches(item.Channel, channel) {
			continue
		}
		fig := out[item.ProductID]
		fig.units += item.Quantity
		fig.revenue += float64(item.Quantity) * item.UnitPrice
		out[item.ProductID] = fig
	}
	return out
}

// EnrichedProducts attaches variants, per-channel stock sums and
// sold/revenue figures to every product.
func (s *Service) EnrichedProducts(ctx context.Context) ([]EnrichedProduct, error) {
	l, err := s.fetchLedger(ctx)
	if err != nil {
		return nil, err
	}

	variantsByProduct := make(map[int64][]catalog.Variant)
	for _, v := range l.variants {
		variantsByProduct[v.ProductID] = append(variantsByProduct[v.ProductID], v)
	}
	stocks := stockByProduct(l.variants)
	sold := soldByProduct(l.items, "")

	out := make([]EnrichedProduct, 0, len(l.products))
	for _, p := range l.products {
		p.Variants = variantsByProduct[p.ID]
		fig := stocks[p.ID]
		sf := sold[p.ID]
		out = append(out, EnrichedProduct{
			Product:        p,
			Stock:          fig.total,
			StockSingle:    fig.single,
			StockWholesale: fig.wholesale,
			Sold:           sf.units,
			Revenue:        sf.revenue,
		})
	}
	return out, nil
}

// Dashboard computes the headline stats, optionally scoped to one channel.
func (s *Service) Dashboard(ctx context.Context, channel catalog.Channel) (DashboardStats, error) {
	l, err := s.fetchLedger(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayTxs, err := s.repo.Transactions(ctx, dayStart, now)
	if err != nil {
		return DashboardStats{}, err
	}

	var stats DashboardStats
	for _, item := range l.items {
		if !channelMatches(item.Channel, channel) {
			continue
		}
		stats.TotalUnits += item.Quantity
		stats.TotalRevenue += float64(item.Quantity) * item.UnitPrice
	}

	for _, t := range todayTxs {
		completed := t.Status == "" || t.Status == "completed"
		switch t.Type {
		case "sale":
			if completed {
				stats.TodaySalesTotal += t.Total
				stats.TodaySalesCount++
				stats.TodayNetCash += t.Total
			}
		case "in":
			if completed {
				stats.TodayNetCash += t.Total
			}
		case "out":
			stats.TodayNetCash -= t.Total
		}
	}

	perProduct := make(map[int64]int)
	for _, v := range l.variants {
		if !channelMatches(v.Channel, channel) {
			continue
		}
		perProduct[v.ProductID] += v.Stock
	}
	for _, p := range l.products {
		stock := perProduct[p.ID]
		if stock > 0 {
			stats.ActiveProducts++
		}
		if stock < lowStockThreshold {
			stats.LowStockCount++
		}
	}
	return stats, nil
}

// MonthlySeries groups revenue and units by calendar month. Zero from/to
// select the default trailing 12-month window; an explicit range is
// inclusive of to's full day (the handler extends it).
func (s *Service) MonthlySeries(ctx context.Context, from, to time.Time, channel catalog.Channel) ([]MonthlyPoint, error) {
	if from.IsZero() && to.IsZero() {
		now := s.now().UTC()
		to = now
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	}
	items, err := s.repo.CompletedSaleItems(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		revenue float64
		units   int
	}
	buckets := make(map[string]bucket)
	for _, item := range items {
		if !channelMatches(item.Channel, channel) {
			continue
		}
		key := item.CreatedAt.UTC().Format("2006-01")
		b := buckets[key]
		b.revenue += float64(item.Quantity) * item.UnitPrice
		b.units += item.Quantity
		buckets[key] = b
	}

	var points []MonthlyPoint
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		key := cursor.Format("2006-01")
		b := buckets[key]
		points = append(points, MonthlyPoint{
			Month:    key,
			RevenueK: roundThousands(b.revenue),
			Units:    b.units,
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return points, nil
}

// TopSellers returns the top 8 products by units sold.
func (s *Service) TopSellers(ctx context.Context, channel catalog.Channel) ([]TopSeller, error) {
	l, err := s.fetchLedger(ctx)
	if err != nil {
		return nil, err
	}

	sold := soldByProduct(l.items, channel)
	stock := make(map[int64]int)
	for _, v := range l.variants {
		if channelMatches(v.Channel, channel) {
			stock[v.ProductID] += v.Stock
		}
	}

	var sellers []TopSeller
	for _, p := range l.products {
		sf, ok := sold[p.ID]
		if !ok {
			continue
		}
		sellers = append(sellers, TopSeller{
			ProductID:    p.ID,
			Name:         p.Name,
			Reference:    p.Reference,
			Sold:         sf.units,
			RevenueTotal: sf.revenue,
			Stock:        stock[p.ID],
		})
	}
	sort.SliceStable(sellers, func(i, j int) bool { return sellers[i].Sold > sellers[j].Sold })
	if len(sellers) > 8 {
		sellers = sellers[:8]
	}
	return sellers, nil
}

// CategoryRevenue sums revenue per category, in thousands, labels
// capitalized.
func (s *Service) CategoryRevenue(ctx context.Context) ([]CategoryRevenue, error) {
	l, err := s.fetchLedger(ctx)
	if err != nil {
		return nil, err
	}

	categoryOf := make(map[int64]string, len(l.products))
	for _, p := range l.products {
		categoryOf[p.ID] = p.Category
	}

	totals := make(map[string]float64)
	for _, item := range l.items {
		category := categoryOf[item.ProductID]
		if category == "" {
			category = "uncategorized"
		}
		totals[category] += float64(item.Quantity) * item.UnitPrice
	}

	out := make([]CategoryRevenue, 0, len(totals))
	for category, revenue := range totals {
		out = append(out, CategoryRevenue{
			Category: titleCaser.String(strings.ToLower(category)),
			RevenueK: roundThousands(revenue),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RevenueK > out[j].RevenueK })
	return out, nil
}

// Rankings orders all products by units sold descending.
func (s *Service) Rankings(ctx context.Context) ([]Ranking, error) {
	l, err := s.fetchLedger(ctx)
	if err != nil {
		return nil, err
	}

	sold := soldByProduct(l.items, "")
	stocks := stockByProduct(l.variants)

	out := make([]Ranking, 0, len(l.products))
	for _, p := range l.products {
		out = append(out, Ranking{
			ProductID: p.ID,
			Name:      p.Name,
			Reference: p.Reference,
			Sold:      sold[p.ID].units,
			Stock:     stocks[p.ID].total,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sold > out[j].Sold })
	return out, nil
}

// ColorBreakdown reports sold units/revenue per (product, color, channel)
// joined against current stock for the same key. Items and variants with
// an empty color are excluded.
func (s *Service) ColorBreakdown(ctx context.Context) ([]ColorBreakdown, error) {
	l, err := s.fetchLedger(ctx)
	if err != nil {
		return nil, err
	}

	nameOf := make(map[int64]string, len(l.products))
	for _, p := range l.products {
		nameOf[p.ID] = p.Name
	}

	type key struct {
		productID int64
		color     string
		channel   catalog.Channel
	}
	type agg struct {
		sold    int
		revenue float64
	}
	sold := make(map[key]agg)
	for _, item := range l.items {
		if item.Color == "" {
			continue
		}
		k := key{item.ProductID, item.Color, item.Channel}
		a := sold[k]
		a.sold += item.Quantity
		a.revenue += float64(item.Quantity) * item.UnitPrice
		sold[k] = a
	}

	stock := make(map[key]int)
	for _, v := range l.variants {
		if v.Color == "" {
			continue
		}
		stock[key{v.ProductID, v.Color, v.Channel}] += v.Stock
	}

	out := make([]ColorBreakdown, 0, len(sold))
	for k, a := range sold {
		out = append(out, ColorBreakdown{
			ProductID: k.productID,
			Name:      nameOf[k.productID],
			Color:     k.color,
			Channel:   k.channel,
			Sold:      a.sold,
			Revenue:   a.revenue,
			Stock:     stock[k],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		if out[i].Color != out[j].Color {
			return out[i].Color < out[j].Color
		}
		return out[i].Channel < out[j].Channel
	})
	return out, nil
}

func roundThousands(revenue float64) float64 {
	return math.Round(revenue/1000*10) / 10
}
