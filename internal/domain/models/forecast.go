package models

import "time"

// ArtifactVersion is the schema version persisted with every TrainedModel.
const ArtifactVersion = 1

// Forecast trend labels over the prediction horizon.
const (
	ForecastRising  = "rising"
	ForecastFalling = "falling"
	ForecastStable  = "stable"
)

// ModelFlags records which sub-models contributed to a forecast point.
type ModelFlags struct {
	Seasonal      bool `json:"seasonal"`
	Linear        bool `json:"linear"`
	MovingAverage bool `json:"moving_average"`
}

// ForecastPoint is a single-day blended price estimate.
type ForecastPoint struct {
	Date     time.Time  `json:"date"`
	Estimate float64    `json:"point_estimate"`
	Lower    float64    `json:"lower_bound"`
	Upper    float64    `json:"upper_bound"`
	Models   ModelFlags `json:"contributing_models"`
}

// Forecast is the full prediction output for one series key.
type Forecast struct {
	Key         string          `json:"key"`
	GeneratedAt time.Time       `json:"generated_at"`
	Points      []ForecastPoint `json:"forecast"`
	Confidence  int             `json:"confidence"`
	Trend       string          `json:"trend"`
}

// SeasonalComponent holds the fitted seasonal-trend sub-model: a linear
// trend over the day index plus multiplicative calendar-month factors and
// a residual spread for interval estimates.
type SeasonalComponent struct {
	Factors     map[int]float64 `json:"factors"` // 1..12
	Slope       float64         `json:"slope"`
	Intercept   float64         `json:"intercept"`
	ResidualStd float64         `json:"residual_std"`
}

// LinearComponent holds the ordinary least-squares trend sub-model.
type LinearComponent struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// TrainedModel is the persisted artifact for one series key. It is
// replaced wholesale on retrain, never partially mutated.
type TrainedModel struct {
	Version     int                `json:"version"`
	Key         string             `json:"key"`
	Seasonal    *SeasonalComponent `json:"seasonal,omitempty"` // nil when the component failed to initialize
	Linear      LinearComponent    `json:"linear"`
	Window      []float64          `json:"window"` // moving-average window, last min(7, n) prices
	Snapshot    []DatedPrice       `json:"snapshot"`
	TrainedFrom time.Time          `json:"trained_from"`
	TrainedTo   time.Time          `json:"trained_to"`
	TrainedAt   time.Time          `json:"trained_at"`
}

// TrainOutcome is the per-item result of a batch training run. Failures
// are reported with a reason instead of being silently discarded.
type TrainOutcome struct {
	Key    string `json:"key"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}
