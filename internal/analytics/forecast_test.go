package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atelier-pos/atelier/internal/catalog"
)

func TestWeekStart(t *testing.T) {
	// 2025-06-18 is a Wednesday; its week starts Monday the 16th.
	require.Equal(t,
		time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC),
		weekStart(testNow))
	// A Monday maps to itself, a Sunday to the previous Monday.
	monday := time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC), weekStart(monday))
	sunday := time.Date(2025, time.June, 15, 23, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC), weekStart(sunday))
}

func TestWeightedBase(t *testing.T) {
	require.Zero(t, weightedBase(nil))

	// Constant series averages to itself.
	require.InDelta(t, 5.0, weightedBase([]float64{5, 5, 5, 5}), 0.001)

	// Recency weighting pulls the average towards the newest weeks.
	weekly := []float64{0, 0, 0, 0, 0, 0, 0, 36}
	require.InDelta(t, 8.0, weightedBase(weekly), 0.001)
}

func TestLinearSlope(t *testing.T) {
	require.Zero(t, linearSlope([]float64{3}))
	require.InDelta(t, 0.0, linearSlope([]float64{4, 4, 4, 4}), 0.001)
	require.InDelta(t, 1.0, linearSlope([]float64{0, 1, 2, 3, 4, 5, 6, 7}), 0.001)
	require.InDelta(t, -2.0, linearSlope([]float64{14, 12, 10, 8, 6, 4, 2, 0}), 0.001)
}

func TestTrendLabel(t *testing.T) {
	require.Equal(t, "rising", trendLabel(0.5))
	require.Equal(t, "declining", trendLabel(-0.5))
	require.Equal(t, "stable", trendLabel(0.2))
	require.Equal(t, "stable", trendLabel(-0.3))
	require.Equal(t, "stable", trendLabel(0))
}

func TestConfidenceLabel(t *testing.T) {
	require.Equal(t, "low", confidenceLabel([]float64{0, 0, 0, 0, 0, 0, 0, 0}))
	require.Equal(t, "low", confidenceLabel([]float64{0, 0, 0, 0, 0, 0, 0, 3}))
	require.Equal(t, "medium", confidenceLabel([]float64{0, 0, 0, 0, 0, 0, 2, 3}))
	require.Equal(t, "high", confidenceLabel([]float64{1, 0, 2, 0, 3, 0, 4, 0}))
}

func TestForecastBucketsWeeks(t *testing.T) {
	current := weekStart(testNow)
	repo := &memoryRepo{
		products: []catalog.Product{{ID: 1, Name: "Linen Shirt", Reference: "LS-01"}},
		items: []SaleItemRow{
			// Current week and three weeks back, 5 units each.
			{ProductID: 1, Quantity: 5, UnitPrice: 50, CreatedAt: current.Add(24 * time.Hour)},
			{ProductID: 1, Quantity: 5, UnitPrice: 50, CreatedAt: current.AddDate(0, 0, -7)},
			{ProductID: 1, Quantity: 5, UnitPrice: 50, CreatedAt: current.AddDate(0, 0, -14)},
			{ProductID: 1, Quantity: 5, UnitPrice: 50, CreatedAt: current.AddDate(0, 0, -21)},
		},
	}
	svc := newTestService(repo, testNow)

	out, err := svc.Forecast(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)

	f := out[0]
	require.Equal(t, []float64{0, 0, 0, 0, 5, 5, 5, 5}, f.Weekly)
	require.Equal(t, "high", f.Confidence)
	require.Equal(t, "rising", f.Trend)
	require.Len(t, f.Projected4W, 4)
	for _, units := range f.Projected4W {
		require.GreaterOrEqual(t, units, 0)
	}
}

func TestForecastNoSales(t *testing.T) {
	repo := &memoryRepo{
		products: []catalog.Product{{ID: 1, Name: "Wool Coat", Reference: "WC-02"}},
	}
	svc := newTestService(repo, testNow)

	out, err := svc.Forecast(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)

	f := out[0]
	require.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 0}, f.Weekly)
	require.Zero(t, f.Base)
	require.Zero(t, f.Slope)
	require.Equal(t, []int{0, 0, 0, 0}, f.Projected4W)
	require.Equal(t, "stable", f.Trend)
	require.Equal(t, "low", f.Confidence)
	require.Zero(t, f.ProjectedTotal())
}

func TestForecastSortsByProjectedTotal(t *testing.T) {
	current := weekStart(testNow)
	repo := &memoryRepo{
		products: []catalog.Product{
			{ID: 1, Name: "Slow", Reference: "S-01"},
			{ID: 2, Name: "Fast", Reference: "F-02"},
		},
		items: []SaleItemRow{
			{ProductID: 1, Quantity: 1, UnitPrice: 10, CreatedAt: current.Add(time.Hour)},
			{ProductID: 1, Quantity: 1, UnitPrice: 10, CreatedAt: current.AddDate(0, 0, -7)},
			{ProductID: 2, Quantity: 20, UnitPrice: 10, CreatedAt: current.Add(time.Hour)},
			{ProductID: 2, Quantity: 18, UnitPrice: 10, CreatedAt: current.AddDate(0, 0, -7)},
			{ProductID: 2, Quantity: 16, UnitPrice: 10, CreatedAt: current.AddDate(0, 0, -14)},
		},
	}
	svc := newTestService(repo, testNow)

	out, err := svc.Forecast(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int64(2), out[0].ProductID)
	require.Greater(t, out[0].ProjectedTotal(), out[1].ProjectedTotal())
}

func TestForecastIgnoresOldSales(t *testing.T) {
	current := weekStart(testNow)
	repo := &memoryRepo{
		products: []catalog.Product{{ID: 1, Name: "P", Reference: "R"}},
		items: []SaleItemRow{
			{ProductID: 1, Quantity: 99, UnitPrice: 10, CreatedAt: current.AddDate(0, 0, -7*8)},
		},
	}
	svc := newTestService(repo, testNow)

	out, err := svc.Forecast(context.Background())
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 0}, out[0].Weekly)
}
