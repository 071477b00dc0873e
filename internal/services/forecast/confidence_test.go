package forecast

import (
	"testing"
	"time"

	"AgriPulse/internal/domain/models"
)

func flatSeries(n int) []models.DatedPrice {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.DatedPrice, n)
	for i := range out {
		out[i] = models.DatedPrice{Date: base.AddDate(0, 0, i), Price: 100}
	}
	return out
}

func noisySeries(n int, delta float64) []models.DatedPrice {
	out := flatSeries(n)
	for i := range out {
		if i%2 == 0 {
			out[i].Price = 100 + delta
		} else {
			out[i].Price = 100 - delta
		}
	}
	return out
}

func forecastWithSeasonal(seasonal bool) *models.Forecast {
	return &models.Forecast{
		Points: []models.ForecastPoint{
			{Models: models.ModelFlags{Seasonal: seasonal, Linear: true, MovingAverage: true}},
		},
	}
}

func TestScoreSampleSizePenalties(t *testing.T) {
	e := NewEstimator()
	cases := []struct {
		n    int
		want int
	}{
		{20, 60},  // -40
		{45, 80},  // -20
		{75, 90},  // -10
		{100, 100},
	}
	for _, tc := range cases {
		got := e.Score(flatSeries(tc.n), forecastWithSeasonal(false))
		if got != tc.want {
			t.Errorf("n=%d: expected %d, got %d", tc.n, tc.want, got)
		}
	}
}

func TestScoreVolatilityPenalties(t *testing.T) {
	e := NewEstimator()
	cases := []struct {
		delta float64
		want  int
	}{
		{0, 100},  // CV 0
		{7, 90},   // CV ~7  -> -10
		{12, 80},  // CV ~12 -> -20
		{20, 70},  // CV ~20 -> -30
	}
	for _, tc := range cases {
		got := e.Score(noisySeries(100, tc.delta), forecastWithSeasonal(false))
		if got != tc.want {
			t.Errorf("delta=%v: expected %d, got %d", tc.delta, tc.want, got)
		}
	}
}

func TestScoreSeasonalBonusAndClamp(t *testing.T) {
	e := NewEstimator()

	// Clean, long series with seasonal participation would exceed 100.
	if got := e.Score(flatSeries(100), forecastWithSeasonal(true)); got != 100 {
		t.Errorf("expected clamp to 100, got %d", got)
	}

	// Same series without the bonus.
	if got := e.Score(flatSeries(100), forecastWithSeasonal(false)); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}

	// Bonus visible when penalties apply: 100-20 (n=45) +10 = 90.
	if got := e.Score(flatSeries(45), forecastWithSeasonal(true)); got != 90 {
		t.Errorf("expected 90, got %d", got)
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	e := NewEstimator()
	inputs := [][]models.DatedPrice{
		nil,
		flatSeries(1),
		flatSeries(500),
		noisySeries(5, 90),
		noisySeries(200, 50),
	}
	for i, series := range inputs {
		got := e.Score(series, nil)
		if got < 0 || got > 100 {
			t.Errorf("input %d: score %d out of [0,100]", i, got)
		}
	}
}
