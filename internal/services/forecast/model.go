package forecast

import (
	"math"
	"time"

	"AgriPulse/internal/domain/models"
)

// Sub-model fitting. All fits use the day offset from the first
// observation as the x axis so predictions extend naturally past the
// training window even when the series has gaps.

func dayOffset(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

func fitLinear(series []models.DatedPrice) models.LinearComponent {
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = dayOffset(series[0].Date, p.Date)
		ys[i] = p.Price
	}
	slope, intercept := olsXY(xs, ys)
	return models.LinearComponent{Slope: slope, Intercept: intercept}
}

// fitSeasonal fits a linear trend plus multiplicative calendar-month
// factors. It returns nil when the series spans fewer than two distinct
// months, since a single month carries no seasonal signal.
func fitSeasonal(series []models.DatedPrice) *models.SeasonalComponent {
	months := make(map[int]bool)
	for _, p := range series {
		months[int(p.Date.Month())] = true
	}
	if len(months) < 2 {
		return nil
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = dayOffset(series[0].Date, p.Date)
		ys[i] = p.Price
	}
	slope, intercept := olsXY(xs, ys)

	ratioSums := make(map[int]float64)
	ratioCounts := make(map[int]int)
	for i, p := range series {
		trend := intercept + slope*xs[i]
		if trend <= 0 {
			continue
		}
		m := int(p.Date.Month())
		ratioSums[m] += p.Price / trend
		ratioCounts[m]++
	}
	if len(ratioCounts) < 2 {
		return nil
	}

	factors := make(map[int]float64, len(ratioCounts))
	for m, sum := range ratioSums {
		factors[m] = sum / float64(ratioCounts[m])
	}

	// Residual spread around the detrended seasonal fit drives the
	// interval bounds at predict time.
	var ss float64
	var n int
	for i, p := range series {
		factor, ok := factors[int(p.Date.Month())]
		if !ok {
			continue
		}
		fitted := (intercept + slope*xs[i]) * factor
		d := p.Price - fitted
		ss += d * d
		n++
	}
	residualStd := 0.0
	if n > 0 {
		residualStd = math.Sqrt(ss / float64(n))
	}

	return &models.SeasonalComponent{
		Factors:     factors,
		Slope:       slope,
		Intercept:   intercept,
		ResidualStd: residualStd,
	}
}

// movingWindow keeps the last min(7, n) prices.
func movingWindow(series []models.DatedPrice) []float64 {
	n := len(series)
	size := 7
	if n < size {
		size = n
	}
	out := make([]float64, size)
	for i := 0; i < size; i++ {
		out[i] = series[n-size+i].Price
	}
	return out
}

func seasonalEstimate(c *models.SeasonalComponent, x float64, month int) (est, lower, upper float64) {
	factor, ok := c.Factors[month]
	if !ok {
		factor = 1.0
	}
	est = (c.Intercept + c.Slope*x) * factor
	spread := 1.96 * c.ResidualStd
	return est, est - spread, est + spread
}

func linearEstimate(c models.LinearComponent, x float64) float64 {
	return c.Intercept + c.Slope*x
}

func olsXY(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, ys[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
