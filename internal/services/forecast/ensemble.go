package forecast

import (
	"context"
	"errors"
	"sync"
	"time"

	"AgriPulse/internal/domain/models"
	"AgriPulse/internal/domain/repository"
	"AgriPulse/pkg/logger"
)

// Base ensemble weights. When a sub-model is unavailable its weight is
// dropped and the remainder renormalized to sum to 1.
const (
	weightSeasonal      = 0.6
	weightLinear        = 0.3
	weightMovingAverage = 0.1
)

// MinTrainPoints is the minimum series length accepted by Train.
const MinTrainPoints = 30

// TrainItem is one series in a batch training request.
type TrainItem struct {
	Key    models.SeriesKey
	Series []models.DatedPrice
}

// Forecaster trains and serves blended per-key forecasts. Training is
// exclusive per key; predicts see either the prior complete artifact or
// the new one, never a partial state.
type Forecaster struct {
	store  repository.ArtifactStore
	logger *logger.Logger
	now    func() time.Time

	artifacts sync.Map // key string -> *models.TrainedModel

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// ForecasterOption configures Forecaster.
type ForecasterOption func(*Forecaster)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) ForecasterOption {
	return func(f *Forecaster) {
		f.now = now
	}
}

// NewForecaster creates an ensemble forecaster backed by an artifact store.
func NewForecaster(store repository.ArtifactStore, lgr *logger.Logger, opts ...ForecasterOption) *Forecaster {
	f := &Forecaster{
		store:  store,
		logger: lgr,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// keyLock returns the training mutex for a series key, creating it lazily.
func (f *Forecaster) keyLock(key string) *sync.Mutex {
	f.lockMu.Lock()
	defer f.lockMu.Unlock()
	l, ok := f.locks[key]
	if !ok {
		l = &sync.Mutex{}
		f.locks[key] = l
	}
	return l
}

// Train fits all sub-models on the series and persists the artifact,
// replacing any prior one for the key. A failed train leaves the prior
// artifact untouched.
func (f *Forecaster) Train(ctx context.Context, key models.SeriesKey, series []models.DatedPrice) error {
	if len(series) < MinTrainPoints {
		return models.ErrInsufficientData
	}

	keyStr := key.String()
	lock := f.keyLock(keyStr)
	lock.Lock()
	defer lock.Unlock()

	snapshot := make([]models.DatedPrice, len(series))
	copy(snapshot, series)

	artifact := &models.TrainedModel{
		Version:     models.ArtifactVersion,
		Key:         keyStr,
		Seasonal:    fitSeasonal(snapshot),
		Linear:      fitLinear(snapshot),
		Window:      movingWindow(snapshot),
		Snapshot:    snapshot,
		TrainedFrom: snapshot[0].Date,
		TrainedTo:   snapshot[len(snapshot)-1].Date,
		TrainedAt:   f.now(),
	}

	if err := f.store.Save(ctx, keyStr, artifact); err != nil {
		f.logger.Error("artifact save failed",
			logger.String("key", keyStr),
			logger.Error(err))
		return err
	}

	// Swap into the in-memory registry only after the durable save
	// succeeded, so readers never observe an unpersisted model.
	f.artifacts.Store(keyStr, artifact)

	f.logger.Info("model trained",
		logger.String("key", keyStr),
		logger.Int("points", len(snapshot)),
		logger.Bool("seasonal", artifact.Seasonal != nil))
	return nil
}

// TrainBatch trains every item and reports a per-item outcome instead of
// silently dropping failures.
func (f *Forecaster) TrainBatch(ctx context.Context, items []TrainItem) []models.TrainOutcome {
	outcomes := make([]models.TrainOutcome, 0, len(items))
	for _, item := range items {
		outcome := models.TrainOutcome{Key: item.Key.String(), OK: true}
		if err := f.Train(ctx, item.Key, item.Series); err != nil {
			outcome.OK = false
			outcome.Reason = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Artifact returns the trained model for a key, consulting memory first
// and falling back to the backing store.
func (f *Forecaster) Artifact(ctx context.Context, key models.SeriesKey) (*models.TrainedModel, error) {
	keyStr := key.String()
	if v, ok := f.artifacts.Load(keyStr); ok {
		return v.(*models.TrainedModel), nil
	}

	artifact, err := f.store.Load(ctx, keyStr)
	if err != nil {
		if errors.Is(err, models.ErrModelUnavailable) {
			return nil, models.ErrModelUnavailable
		}
		return nil, err
	}
	f.artifacts.Store(keyStr, artifact)
	return artifact, nil
}

// Predict blends the sub-models into one estimate per future calendar day.
func (f *Forecaster) Predict(ctx context.Context, key models.SeriesKey, horizonDays int) (*models.Forecast, error) {
	if horizonDays <= 0 {
		horizonDays = 7
	}

	artifact, err := f.Artifact(ctx, key)
	if err != nil {
		return nil, err
	}

	points := make([]models.ForecastPoint, 0, horizonDays)
	maEstimate := meanOf(artifact.Window)
	hasMA := len(artifact.Window) > 0

	for d := 1; d <= horizonDays; d++ {
		date := artifact.TrainedTo.AddDate(0, 0, d)
		x := dayOffset(artifact.TrainedFrom, date)

		var blended, weightSum float64
		var seasonalLower, seasonalUpper float64
		flags := models.ModelFlags{}

		if artifact.Seasonal != nil {
			est, lo, hi := seasonalEstimate(artifact.Seasonal, x, int(date.Month()))
			blended += weightSeasonal * est
			weightSum += weightSeasonal
			seasonalLower, seasonalUpper = lo, hi
			flags.Seasonal = true
		}

		blended += weightLinear * linearEstimate(artifact.Linear, x)
		weightSum += weightLinear
		flags.Linear = true

		if hasMA {
			blended += weightMovingAverage * maEstimate
			weightSum += weightMovingAverage
			flags.MovingAverage = true
		}

		blended /= weightSum

		lower, upper := blended*0.95, blended*1.05
		if flags.Seasonal {
			lower, upper = seasonalLower, seasonalUpper
		}

		points = append(points, models.ForecastPoint{
			Date:     date,
			Estimate: blended,
			Lower:    lower,
			Upper:    upper,
			Models:   flags,
		})
	}

	return &models.Forecast{
		Key:         artifact.Key,
		GeneratedAt: f.now(),
		Points:      points,
		Trend:       horizonTrend(points),
	}, nil
}

// horizonTrend classifies the direction of the forecast itself.
func horizonTrend(points []models.ForecastPoint) string {
	if len(points) < 2 || points[0].Estimate == 0 {
		return models.ForecastStable
	}
	change := points[len(points)-1].Estimate/points[0].Estimate - 1
	switch {
	case change > 0.01:
		return models.ForecastRising
	case change < -0.01:
		return models.ForecastFalling
	default:
		return models.ForecastStable
	}
}
