package analytics

import (
	"math"
	"sort"

	"AgriPulse/internal/domain/models"
	"AgriPulse/pkg/logger"
)

// Minimum sample sizes per operation. Below these the analyzer reports
// an INSUFFICIENT_DATA sentinel instead of failing.
const (
	minVolatilityPoints = 5
	minTrendPoints      = 7
	minAnomalyPoints    = 10

	// DefaultWindowDays applies when a caller passes a non-positive window.
	DefaultWindowDays = 30

	// DefaultSensitivity is the anomaly z-score cutoff in std-devs.
	DefaultSensitivity = 2.0
)

// SeriesSource provides the observations the analyzer works on.
type SeriesSource interface {
	Query(commodity, region, market string, windowDays int) []models.PricePoint
}

// Analyzer computes volatility, trend, seasonality and anomaly profiles
// from a price series.
type Analyzer struct {
	source SeriesSource
	logger *logger.Logger
}

// NewAnalyzer creates a market analytics service.
func NewAnalyzer(source SeriesSource, lgr *logger.Logger) *Analyzer {
	return &Analyzer{
		source: source,
		logger: lgr,
	}
}

// Volatility measures price dispersion over the trailing window.
func (a *Analyzer) Volatility(commodity, region string, windowDays int) models.VolatilityProfile {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	prices := modalPrices(a.source.Query(commodity, region, "", windowDays))
	if len(prices) < minVolatilityPoints {
		return models.VolatilityProfile{
			Classification: models.ClassInsufficientData,
			SampleSize:     len(prices),
		}
	}

	m := mean(prices)
	sd := sampleStdDev(prices)
	cv := 0.0
	if m != 0 {
		cv = sd / m * 100
	}

	return models.VolatilityProfile{
		StdDev:                 sd,
		Mean:                   m,
		CoefficientOfVariation: cv,
		Classification:         classifyVolatility(cv),
		SampleSize:             len(prices),
	}
}

// Trend fits a least-squares line over the trailing window and classifies
// the direction by total percentage change.
func (a *Analyzer) Trend(commodity, region string, windowDays int) models.TrendProfile {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	prices := modalPrices(a.source.Query(commodity, region, "", windowDays))
	if len(prices) < minTrendPoints {
		return models.TrendProfile{Direction: models.ClassInsufficientData}
	}

	slope, _ := olsFit(prices)

	changePercent := 0.0
	if first := prices[0]; first != 0 {
		changePercent = (prices[len(prices)-1] - first) / first * 100
	}

	direction := models.TrendStable
	if math.Abs(changePercent) >= 2 {
		if changePercent > 0 {
			direction = models.TrendUpward
		} else {
			direction = models.TrendDownward
		}
	}

	return models.TrendProfile{
		Direction:     direction,
		Strength:      math.Abs(changePercent),
		ChangePercent: changePercent,
		Slope:         slope,
	}
}

// Seasonality groups a year of observations by calendar month and
// measures how strongly prices follow that monthly structure.
func (a *Analyzer) Seasonality(commodity, region string) models.SeasonalProfile {
	points := a.source.Query(commodity, region, "", 365)
	if len(points) == 0 {
		return models.SeasonalProfile{
			Classification: models.ClassInsufficientData,
		}
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range points {
		m := int(p.Date.Month())
		sums[m] += p.ModalPrice
		counts[m]++
	}

	averages := make(map[int]float64, len(sums))
	monthly := make([]float64, 0, len(sums))
	peakMonth, troughMonth := 0, 0
	peakPrice := math.Inf(-1)
	troughPrice := math.Inf(1)
	for m, sum := range sums {
		avg := sum / float64(counts[m])
		averages[m] = avg
		monthly = append(monthly, avg)
		if avg > peakPrice {
			peakPrice, peakMonth = avg, m
		}
		if avg < troughPrice {
			troughPrice, troughMonth = avg, m
		}
	}

	strength := 0.0
	if m := mean(monthly); m != 0 {
		strength = populationStdDev(monthly) / m * 100
	}
	pattern := classifySeasonality(strength)

	return models.SeasonalProfile{
		MonthlyAverages: averages,
		PeakMonth:       peakMonth,
		PeakPrice:       peakPrice,
		TroughMonth:     troughMonth,
		TroughPrice:     troughPrice,
		Strength:        strength,
		Pattern:         pattern,
		Classification:  pattern,
		SampleSize:      len(points),
	}
}

// Anomalies flags observations whose z-score exceeds the sensitivity
// cutoff, sorted by |z| descending. A flat series yields no anomalies.
func (a *Analyzer) Anomalies(commodity, region string, windowDays int, sensitivity float64) []models.AnomalyEvent {
	if windowDays <= 0 {
		windowDays = 90
	}
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}

	points := a.source.Query(commodity, region, "", windowDays)
	if len(points) < minAnomalyPoints {
		return []models.AnomalyEvent{}
	}

	prices := modalPrices(points)
	m := mean(prices)
	sd := populationStdDev(prices)
	if sd == 0 {
		return []models.AnomalyEvent{}
	}

	events := make([]models.AnomalyEvent, 0)
	for _, p := range points {
		z := (p.ModalPrice - m) / sd
		if math.Abs(z) <= sensitivity {
			continue
		}

		kind := models.AnomalySpike
		if z < 0 {
			kind = models.AnomalyDrop
		}
		severity := models.SeverityModerate
		if math.Abs(z) > 3 {
			severity = models.SeverityHigh
		}
		deviation := 0.0
		if m != 0 {
			deviation = (p.ModalPrice - m) / m * 100
		}

		events = append(events, models.AnomalyEvent{
			Date:             p.Date,
			Market:           p.Market,
			Price:            p.ModalPrice,
			Mean:             m,
			DeviationPercent: deviation,
			ZScore:           z,
			Type:             kind,
			Severity:         severity,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		return math.Abs(events[i].ZScore) > math.Abs(events[j].ZScore)
	})
	return events
}

func classifyVolatility(cv float64) string {
	switch {
	case cv < 5:
		return models.VolatilityLow
	case cv < 10:
		return models.VolatilityModerate
	case cv < 15:
		return models.VolatilityHigh
	default:
		return models.VolatilityVeryHigh
	}
}

func classifySeasonality(strength float64) string {
	switch {
	case strength < 5:
		return "weak"
	case strength < 10:
		return "moderate"
	default:
		return "strong"
	}
}

func modalPrices(points []models.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.ModalPrice
	}
	return out
}
