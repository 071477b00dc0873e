package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AgriPulse/internal/domain/models"
	domrepo "AgriPulse/internal/domain/repository"
	scache "AgriPulse/internal/service/cache"
	"AgriPulse/internal/service/ratelimit"
	"AgriPulse/internal/services/advisor"
	"AgriPulse/internal/services/analytics"
	"AgriPulse/internal/services/forecast"
	"AgriPulse/internal/services/timeseries"
	"AgriPulse/pkg/logger"
)

// DefaultTrainWindowDays is the history window used for training when the
// caller does not specify one. A full year captures seasonal structure.
const DefaultTrainWindowDays = 365

const (
	forecastCacheTTL  = 5 * time.Minute
	trainBurst        = 2.0
	trainRefillPerSec = 1.0 / 60 // one retrain per series per minute after the burst
)

// ErrTrainThrottled indicates a retrain request was dropped by the
// per-series rate limit.
var ErrTrainThrottled = errors.New("train throttled")

// Advice bundles everything a caller needs to act on one series: the
// latest observed price, its volatility, the forecast and the decision.
type Advice struct {
	Key            string                   `json:"key"`
	CurrentPrice   float64                  `json:"current_price"`
	Volatility     models.VolatilityProfile `json:"volatility"`
	Forecast       *models.Forecast         `json:"forecast,omitempty"`
	Recommendation models.Recommendation    `json:"recommendation"`
}

// MarketAdvisor ties the series store, analytics, forecasting and the
// recommendation policy together behind one API surface.
type MarketAdvisor struct {
	series     *timeseries.Store
	analyzer   *analytics.Analyzer
	forecaster *forecast.Forecaster
	estimator  *forecast.Estimator
	policy     *advisor.Policy
	cache      *scache.TTLCache
	limiter    *ratelimit.Limiter
	metrics    domrepo.Metrics
	logger     *logger.Logger
}

// NewMarketAdvisor creates the advisory usecase.
func NewMarketAdvisor(
	series *timeseries.Store,
	analyzer *analytics.Analyzer,
	forecaster *forecast.Forecaster,
	estimator *forecast.Estimator,
	policy *advisor.Policy,
	metrics domrepo.Metrics,
	lgr *logger.Logger,
) *MarketAdvisor {
	return &MarketAdvisor{
		series:     series,
		analyzer:   analyzer,
		forecaster: forecaster,
		estimator:  estimator,
		policy:     policy,
		cache:      scache.NewTTLCache(),
		limiter:    ratelimit.New(),
		metrics:    metrics,
		logger:     lgr,
	}
}

// Prices returns raw observations for a series over the trailing window.
func (a *MarketAdvisor) Prices(commodity, region, market string, windowDays int) []models.PricePoint {
	return a.series.Query(commodity, region, market, windowDays)
}

// Volatility profiles price dispersion for a commodity in a region.
func (a *MarketAdvisor) Volatility(commodity, region string, windowDays int) models.VolatilityProfile {
	return a.analyzer.Volatility(commodity, region, windowDays)
}

// Trend profiles price direction for a commodity in a region.
func (a *MarketAdvisor) Trend(commodity, region string, windowDays int) models.TrendProfile {
	return a.analyzer.Trend(commodity, region, windowDays)
}

// Seasonality profiles calendar-month structure over the past year.
func (a *MarketAdvisor) Seasonality(commodity, region string) models.SeasonalProfile {
	return a.analyzer.Seasonality(commodity, region)
}

// Anomalies lists observations far from the window mean.
func (a *MarketAdvisor) Anomalies(commodity, region string, windowDays int, sensitivity float64) []models.AnomalyEvent {
	return a.analyzer.Anomalies(commodity, region, windowDays, sensitivity)
}

// Train retrains the forecast model for one series from stored history.
// Requests beyond the per-series rate limit return ErrTrainThrottled.
func (a *MarketAdvisor) Train(ctx context.Context, key models.SeriesKey, windowDays int) error {
	if windowDays <= 0 {
		windowDays = DefaultTrainWindowDays
	}
	if !a.limiter.Allow("train:"+key.String(), trainBurst, trainRefillPerSec) {
		a.metrics.RecordTraining("throttled")
		return ErrTrainThrottled
	}

	series := a.series.AggregateForModeling(key.Commodity, key.Region, key.Market, windowDays)

	start := time.Now()
	if err := a.forecaster.Train(ctx, key, series); err != nil {
		a.metrics.RecordTraining("failed")
		return err
	}
	a.metrics.RecordTraining("ok")
	a.metrics.RecordLatency("train", time.Since(start).Seconds())

	a.logger.Info("series trained",
		logger.String("key", key.String()),
		logger.Int("points", len(series)),
		logger.Int("window_days", windowDays))
	return nil
}

// TrainBatch retrains many series and reports a per-series outcome.
// Throttled series are reported, not silently skipped.
func (a *MarketAdvisor) TrainBatch(ctx context.Context, keys []models.SeriesKey, windowDays int) []models.TrainOutcome {
	if windowDays <= 0 {
		windowDays = DefaultTrainWindowDays
	}

	outcomes := make([]models.TrainOutcome, 0, len(keys))
	items := make([]forecast.TrainItem, 0, len(keys))
	for _, key := range keys {
		if !a.limiter.Allow("train:"+key.String(), trainBurst, trainRefillPerSec) {
			a.metrics.RecordTraining("throttled")
			outcomes = append(outcomes, models.TrainOutcome{
				Key:    key.String(),
				OK:     false,
				Reason: ErrTrainThrottled.Error(),
			})
			continue
		}
		items = append(items, forecast.TrainItem{
			Key:    key,
			Series: a.series.AggregateForModeling(key.Commodity, key.Region, key.Market, windowDays),
		})
	}

	for _, outcome := range a.forecaster.TrainBatch(ctx, items) {
		if outcome.OK {
			a.metrics.RecordTraining("ok")
		} else {
			a.metrics.RecordTraining("failed")
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Predict returns a confidence-scored forecast for one series. Results
// are memoized per trained artifact, so a retrain invalidates the entry
// naturally through the cache key.
func (a *MarketAdvisor) Predict(ctx context.Context, key models.SeriesKey, horizonDays int) (*models.Forecast, error) {
	artifact, err := a.forecaster.Artifact(ctx, key)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("forecast:%s:%d:%d", key.String(), horizonDays, artifact.TrainedAt.Unix())
	if v, ok := a.cache.Get(cacheKey); ok {
		return v.(*models.Forecast), nil
	}

	start := time.Now()
	fc, err := a.forecaster.Predict(ctx, key, horizonDays)
	if err != nil {
		return nil, err
	}
	fc.Confidence = a.estimator.Score(artifact.Snapshot, fc)

	a.cache.Set(cacheKey, fc, forecastCacheTTL)
	a.metrics.RecordPrediction(key.Commodity)
	a.metrics.RecordLatency("predict", time.Since(start).Seconds())
	return fc, nil
}

// Recommend applies the decision policy to caller-supplied inputs.
func (a *MarketAdvisor) Recommend(currentPrice float64, points []models.ForecastPoint, volatility string, referencePrice *float64) models.Recommendation {
	return a.policy.Recommend(currentPrice, points, volatility, referencePrice)
}

// Advise produces a full recommendation for one series: latest observed
// price, volatility, forecast and the policy decision. A series with no
// trained model still gets a decision from the insufficient-data path.
// A positive currentPrice overrides the latest stored observation, for
// callers holding a fresher quote than the store.
func (a *MarketAdvisor) Advise(ctx context.Context, key models.SeriesKey, horizonDays int, currentPrice float64, referencePrice *float64) (*Advice, error) {
	if currentPrice <= 0 {
		points := a.series.Query(key.Commodity, key.Region, key.Market, DefaultTrainWindowDays)
		if len(points) == 0 {
			return nil, models.ErrInsufficientData
		}
		currentPrice = points[len(points)-1].ModalPrice
	}

	vol := a.analyzer.Volatility(key.Commodity, key.Region, analytics.DefaultWindowDays)

	fc, err := a.Predict(ctx, key, horizonDays)
	if err != nil && !errors.Is(err, models.ErrModelUnavailable) {
		return nil, err
	}

	var forecastPoints []models.ForecastPoint
	if fc != nil {
		forecastPoints = fc.Points
	}

	return &Advice{
		Key:            key.String(),
		CurrentPrice:   currentPrice,
		Volatility:     vol,
		Forecast:       fc,
		Recommendation: a.policy.Recommend(currentPrice, forecastPoints, vol.Classification, referencePrice),
	}, nil
}
