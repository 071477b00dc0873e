package forecast

import (
	"math"

	"AgriPulse/internal/domain/models"
)

// Estimator scores forecast reliability from data volume, historical
// volatility and sub-model participation. The point penalties are a
// hand-tuned design decision; keep them as they are.
type Estimator struct{}

// NewEstimator creates a confidence estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Score returns a confidence value in [0,100] for a forecast produced
// from the given historical series.
func (e *Estimator) Score(series []models.DatedPrice, forecast *models.Forecast) int {
	score := 100

	n := len(series)
	switch {
	case n < 30:
		score -= 40
	case n < 60:
		score -= 20
	case n < 90:
		score -= 10
	}

	cv := coefficientOfVariation(series)
	switch {
	case cv > 15:
		score -= 30
	case cv > 10:
		score -= 20
	case cv > 5:
		score -= 10
	}

	if forecast != nil && seasonalParticipated(forecast.Points) {
		score += 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func seasonalParticipated(points []models.ForecastPoint) bool {
	for _, p := range points {
		if p.Models.Seasonal {
			return true
		}
	}
	return false
}

func coefficientOfVariation(series []models.DatedPrice) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, p := range series {
		sum += p.Price
	}
	m := sum / float64(n)
	if m == 0 {
		return 0
	}

	var ss float64
	for _, p := range series {
		d := p.Price - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	return sd / m * 100
}
