package report

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	predictionHistoryMonths = 24
	predictionMinPoints     = 3
	seasonalMinPoints       = 12
)

// Prediction fits an ordinary least-squares line over monthly sales and
// extrapolates it forward.
type Prediction struct {
	src     SalesSource
	horizon int
}

func NewPrediction(src SalesSource, horizon int) *Prediction {
	if horizon <= 0 {
		horizon = 3
	}
	return &Prediction{src: src, horizon: horizon}
}

func (g *Prediction) Name() string { return NamePrediction }

// LinearTrend returns slope and intercept of y over x = 0..n-1.
func LinearTrend(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if n == 0 {
		return 0, 0
	}
	var sx, sy, sxy, sxx float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, sy / n
	}
	slope = (n*sxy - sx*sy) / den
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

// historyWindow ends with the last complete month before to.
func historyWindow(to time.Time) (time.Time, time.Time) {
	end := to
	if end.AddDate(0, 0, 1).Month() == end.Month() {
		end = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, 0, -1)
	}
	from := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, 1-predictionHistoryMonths, 0)
	return from, end
}

// fillMonths returns one point per calendar month from the first observed
// month through to's month. Months without sales count as zero.
func fillMonths(points []MonthlyPoint, to time.Time) []MonthlyPoint {
	if len(points) == 0 {
		return nil
	}
	loc := to.Location()
	key := func(t time.Time) int { return t.Year()*12 + int(t.Month()) - 1 }

	byMonth := make(map[int]MonthlyPoint, len(points))
	first := key(points[0].Month)
	for _, pt := range points {
		k := key(pt.Month)
		if k < first {
			first = k
		}
		agg := byMonth[k]
		agg.Revenue += pt.Revenue
		agg.Orders += pt.Orders
		byMonth[k] = agg
	}

	last := key(to)
	out := make([]MonthlyPoint, 0, last-first+1)
	for k := first; k <= last; k++ {
		pt := byMonth[k]
		pt.Month = time.Date(k/12, time.Month(k%12+1), 1, 0, 0, 0, 0, loc)
		out = append(out, pt)
	}
	return out
}

func (g *Prediction) Generate(ctx context.Context, req Request) (*Section, error) {
	from, to := historyWindow(req.Period.To)

	observed, err := g.src.MonthlySales(ctx, req.CompanyID, from, to)
	if err != nil {
		return nil, err
	}
	points := fillMonths(observed, to)

	title := fmt.Sprintf("Sales Prediction (history %s to %s):", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if len(points) < predictionMinPoints {
		return &Section{
			Title: title,
			Body:  fmt.Sprintf("Not enough data for a sales prediction (need at least %d months, have %d).", predictionMinPoints, len(points)),
		}, nil
	}

	revenue := make([]float64, len(points))
	orders := make([]float64, len(points))
	var total float64
	for i, pt := range points {
		revenue[i] = pt.Revenue
		orders[i] = float64(pt.Orders)
		total += pt.Revenue
	}
	mean := total / float64(len(points))

	slope, intercept := LinearTrend(revenue)
	oSlope, oIntercept := LinearTrend(orders)
	growthRate := 0.0
	if mean != 0 {
		growthRate = slope / mean * 100
	}

	trend := "flat"
	switch {
	case growthRate > 1:
		trend = "increasing"
	case growthRate < -1:
		trend = "decreasing"
	}

	var l lines
	l.add("- Months of History: %d", len(points))
	if empty := len(points) - len(observed); empty > 0 {
		l.add("- Months Without Sales: %d", empty)
	}
	l.add("- Average Monthly Revenue: %s", money(mean))
	l.add("- Trend: %s (%s per month)", trend, money(slope))
	l.add("- Monthly Growth Rate: %.2f%%", growthRate)
	l.blank()
	l.add("Forecast:")

	last := points[len(points)-1].Month
	var next float64
	for h := 1; h <= g.horizon; h++ {
		x := float64(len(points) - 1 + h)
		rev := math.Max(0, intercept+slope*x)
		ord := math.Max(0, oIntercept+oSlope*x)
		if h == 1 {
			next = rev
		}
		l.add("- %s: revenue %s, about %.0f orders", last.AddDate(0, h, 0).Format("January 2006"), money(rev), ord)
	}

	if len(points) >= seasonalMinPoints {
		best, worst := seasonality(points)
		l.blank()
		l.add("Seasonality:")
		l.add("- Strongest month: %s", best)
		l.add("- Weakest month: %s", worst)
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricGrowthRate:   growthRate,
			MetricForecastNext: next,
		},
	}, nil
}

// seasonality averages revenue per calendar month and names the extremes.
func seasonality(points []MonthlyPoint) (best, worst string) {
	var sums [13]float64
	var counts [13]int
	for _, pt := range points {
		m := pt.Month.Month()
		sums[m] += pt.Revenue
		counts[m]++
	}
	bestAvg, worstAvg := math.Inf(-1), math.Inf(1)
	var bm, wm time.Month
	for m := time.January; m <= time.December; m++ {
		if counts[m] == 0 {
			continue
		}
		avg := sums[m] / float64(counts[m])
		if avg > bestAvg {
			bestAvg, bm = avg, m
		}
		if avg < worstAvg {
			worstAvg, wm = avg, m
		}
	}
	return fmt.Sprintf("%s (avg %s)", bm, money(bestAvg)), fmt.Sprintf("%s (avg %s)", wm, money(worstAvg))
}
