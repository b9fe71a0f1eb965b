package analytics

import (
	"context"
	"math"
	"sort"
	"time"
)

const (
	forecastWeeks  = 8
	forecastAhead  = 4
	trendThreshold = 0.3
)

// Forecast projects units sold over the next four weeks for every product,
// based on a weighted moving average over the trailing eight ISO weeks.
func (s *Service) Forecast(ctx context.Context) ([]ProductForecast, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	currentWeek := weekStart(now)
	from := currentWeek.AddDate(0, 0, -7*(forecastWeeks-1))
	items, err := s.repo.CompletedSaleItems(ctx, from, now)
	if err != nil {
		return nil, err
	}

	series := make(map[int64][]float64, len(products))
	for _, p := range products {
		series[p.ID] = make([]float64, forecastWeeks)
	}
	for _, item := range items {
		weekly, ok := series[item.ProductID]
		if !ok {
			continue
		}
		idx := forecastWeeks - 1 - int(currentWeek.Sub(weekStart(item.CreatedAt))/(7*24*time.Hour))
		if idx < 0 || idx >= forecastWeeks {
			continue
		}
		weekly[idx] += float64(item.Quantity)
	}

	out := make([]ProductForecast, 0, len(products))
	for _, p := range products {
		weekly := series[p.ID]
		base := weightedBase(weekly)
		slope := linearSlope(weekly)
		projected := make([]int, forecastAhead)
		for w := 1; w <= forecastAhead; w++ {
			projected[w-1] = int(math.Max(0, math.Round(base+slope*float64(w))))
		}
		out = append(out, ProductForecast{
			ProductID:   p.ID,
			Name:        p.Name,
			Reference:   p.Reference,
			Weekly:      weekly,
			Base:        base,
			Slope:       slope,
			Projected4W: projected,
			Trend:       trendLabel(slope),
			Confidence:  confidenceLabel(weekly),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProjectedTotal() > out[j].ProjectedTotal()
	})
	return out, nil
}

// weekStart truncates t to the Monday of its ISO week, at midnight UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// weightedBase is a moving average weighted 1..n from oldest to newest.
func weightedBase(weekly []float64) float64 {
	if len(weekly) == 0 {
		return 0
	}
	var sum, weights float64
	for i, v := range weekly {
		w := float64(i + 1)
		sum += v * w
		weights += w
	}
	return sum / weights
}

// linearSlope fits a least-squares line over the series indices and
// returns its slope, 0 when the series is too short.
func linearSlope(weekly []float64) float64 {
	n := float64(len(weekly))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range weekly {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func trendLabel(slope float64) string {
	switch {
	case slope > trendThreshold:
		return "rising"
	case slope < -trendThreshold:
		return "declining"
	default:
		return "stable"
	}
}

func confidenceLabel(weekly []float64) string {
	nonZero := 0
	for _, v := range weekly {
		if v > 0 {
			nonZero++
		}
	}
	switch {
	case nonZero >= 4:
		return "high"
	case nonZero >= 2:
		return "medium"
	default:
		return "low"
	}
}
