package analytics

import (
	"math"
	"testing"
	"time"

	"AgriPulse/internal/domain/models"
	"AgriPulse/pkg/logger"
)

type stubSource struct {
	points []models.PricePoint
}

func (s *stubSource) Query(commodity, region, market string, windowDays int) []models.PricePoint {
	return s.points
}

func testAnalyzer(points []models.PricePoint) *Analyzer {
	lgr, _ := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	return NewAnalyzer(&stubSource{points: points}, lgr)
}

func seriesFromPrices(prices []float64) []models.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{
			Commodity:  "wheat",
			Region:     "punjab",
			Market:     "ludhiana",
			Date:       base.AddDate(0, 0, i),
			ModalPrice: p,
		}
	}
	return out
}

// alternating produces n prices oscillating around center by delta,
// giving mean=center and sample std-dev = delta*sqrt(n/(n-1)).
func alternating(center, delta float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = center + delta
		} else {
			out[i] = center - delta
		}
	}
	return out
}

func TestVolatilityClassifications(t *testing.T) {
	cases := []struct {
		name  string
		delta float64
		want  string
	}{
		{"low", 3, models.VolatilityLow},           // CV ~3.2
		{"moderate", 7, models.VolatilityModerate}, // CV ~7.4
		{"high", 12, models.VolatilityHigh},        // CV ~12.6
		{"very_high", 20, models.VolatilityVeryHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := testAnalyzer(seriesFromPrices(alternating(100, tc.delta, 10)))
			got := a.Volatility("wheat", "punjab", 30)
			if got.Classification != tc.want {
				t.Errorf("delta=%v: expected %s, got %s (cv=%.2f)", tc.delta, tc.want, got.Classification, got.CoefficientOfVariation)
			}
			if got.SampleSize != 10 {
				t.Errorf("expected sample size 10, got %d", got.SampleSize)
			}
		})
	}
}

func TestVolatilityInsufficientData(t *testing.T) {
	a := testAnalyzer(seriesFromPrices([]float64{100, 101, 102, 103}))
	got := a.Volatility("wheat", "punjab", 30)
	if got.Classification != models.ClassInsufficientData {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", got.Classification)
	}
}

func TestVolatilityZeroMean(t *testing.T) {
	a := testAnalyzer(seriesFromPrices(alternating(0, 5, 10)))
	got := a.Volatility("wheat", "punjab", 30)
	if got.CoefficientOfVariation != 0 {
		t.Errorf("expected CV 0 for zero mean, got %v", got.CoefficientOfVariation)
	}
}

func rampPrices(first, last float64, n int) []float64 {
	out := make([]float64, n)
	step := (last - first) / float64(n-1)
	for i := range out {
		out[i] = first + step*float64(i)
	}
	return out
}

func TestTrendClassifications(t *testing.T) {
	cases := []struct {
		name string
		last float64
		want string
	}{
		{"stable", 101.5, models.TrendStable},
		{"upward", 106, models.TrendUpward},
		{"downward", 94, models.TrendDownward},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := testAnalyzer(seriesFromPrices(rampPrices(100, tc.last, 10)))
			got := a.Trend("wheat", "punjab", 30)
			if got.Direction != tc.want {
				t.Errorf("expected %s, got %s (change=%.2f%%)", tc.want, got.Direction, got.ChangePercent)
			}
			wantChange := tc.last - 100
			if math.Abs(got.ChangePercent-wantChange) > 1e-9 {
				t.Errorf("expected change %.2f%%, got %.2f%%", wantChange, got.ChangePercent)
			}
			if math.Abs(got.Strength-math.Abs(wantChange)) > 1e-9 {
				t.Errorf("expected strength %.2f, got %.2f", math.Abs(wantChange), got.Strength)
			}
		})
	}
}

func TestTrendSlopeSign(t *testing.T) {
	a := testAnalyzer(seriesFromPrices(rampPrices(100, 110, 10)))
	got := a.Trend("wheat", "punjab", 30)
	if got.Slope <= 0 {
		t.Errorf("expected positive slope, got %v", got.Slope)
	}
}

func TestTrendInsufficientData(t *testing.T) {
	a := testAnalyzer(seriesFromPrices([]float64{100, 101, 102, 103, 104, 105}))
	got := a.Trend("wheat", "punjab", 30)
	if got.Direction != models.ClassInsufficientData {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", got.Direction)
	}
}

func TestSeasonalityPeakAndTrough(t *testing.T) {
	points := make([]models.PricePoint, 0)
	for d := 0; d < 10; d++ {
		points = append(points, models.PricePoint{
			Commodity: "onion", Region: "nashik", Market: "lasalgaon",
			Date:       time.Date(2024, 1, 1+d, 0, 0, 0, 0, time.UTC),
			ModalPrice: 100,
		})
		points = append(points, models.PricePoint{
			Commodity: "onion", Region: "nashik", Market: "lasalgaon",
			Date:       time.Date(2024, 6, 1+d, 0, 0, 0, 0, time.UTC),
			ModalPrice: 120,
		})
	}

	a := testAnalyzer(points)
	got := a.Seasonality("onion", "nashik")

	if got.PeakMonth != 6 || got.PeakPrice != 120 {
		t.Errorf("expected peak June@120, got month %d @ %v", got.PeakMonth, got.PeakPrice)
	}
	if got.TroughMonth != 1 || got.TroughPrice != 100 {
		t.Errorf("expected trough Jan@100, got month %d @ %v", got.TroughMonth, got.TroughPrice)
	}
	// std([100,120])/mean = 10/110 -> 9.09% -> moderate
	if got.Pattern != "moderate" {
		t.Errorf("expected moderate pattern, got %s (strength=%.2f)", got.Pattern, got.Strength)
	}
	if got.MonthlyAverages[1] != 100 || got.MonthlyAverages[6] != 120 {
		t.Errorf("unexpected monthly averages: %v", got.MonthlyAverages)
	}
}

func TestSeasonalityNoData(t *testing.T) {
	a := testAnalyzer(nil)
	got := a.Seasonality("onion", "nashik")
	if got.Classification != models.ClassInsufficientData {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", got.Classification)
	}
}

func TestAnomalyDetection(t *testing.T) {
	prices := make([]float64, 0, 102)
	for i := 0; i < 50; i++ {
		prices = append(prices, 90, 110)
	}
	prices = append(prices, 135) // strong spike, |z| > 3
	prices = append(prices, 70)  // drop, 2 < |z| < 3

	a := testAnalyzer(seriesFromPrices(prices))
	got := a.Anomalies("wheat", "punjab", 90, 2.0)

	if len(got) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(got))
	}
	if got[0].Price != 135 || got[0].Type != models.AnomalySpike || got[0].Severity != models.SeverityHigh {
		t.Errorf("expected 135 SPIKE/HIGH first, got %+v", got[0])
	}
	if got[1].Price != 70 || got[1].Type != models.AnomalyDrop || got[1].Severity != models.SeverityModerate {
		t.Errorf("expected 70 DROP/MODERATE second, got %+v", got[1])
	}
	if math.Abs(got[0].ZScore) <= math.Abs(got[1].ZScore) {
		t.Errorf("anomalies not sorted by |z| descending")
	}
}

func TestAnomalyFlatSeries(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100
	}
	a := testAnalyzer(seriesFromPrices(prices))
	got := a.Anomalies("wheat", "punjab", 90, 2.0)
	if len(got) != 0 {
		t.Errorf("expected no anomalies for flat series, got %d", len(got))
	}
}

func TestAnomalyInsufficientData(t *testing.T) {
	a := testAnalyzer(seriesFromPrices([]float64{100, 200, 100, 200, 100}))
	got := a.Anomalies("wheat", "punjab", 90, 2.0)
	if len(got) != 0 {
		t.Errorf("expected empty result below minimum points, got %d", len(got))
	}
}
