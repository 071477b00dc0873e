package models

import "time"

// Classification labels shared by the analytics profiles.
const (
	ClassInsufficientData = "INSUFFICIENT_DATA"

	VolatilityLow      = "LOW"
	VolatilityModerate = "MODERATE"
	VolatilityHigh     = "HIGH"
	VolatilityVeryHigh = "VERY_HIGH"

	TrendStable   = "STABLE"
	TrendUpward   = "UPWARD"
	TrendDownward = "DOWNWARD"

	AnomalySpike = "SPIKE"
	AnomalyDrop  = "DROP"

	SeverityModerate = "MODERATE"
	SeverityHigh     = "HIGH"
)

// VolatilityProfile summarizes price dispersion over a window.
type VolatilityProfile struct {
	StdDev                 float64 `json:"std_dev"`
	Mean                   float64 `json:"mean"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Classification         string  `json:"classification"`
	SampleSize             int     `json:"sample_size"`
}

// TrendProfile summarizes price direction over a window.
type TrendProfile struct {
	Direction     string  `json:"direction"`
	Strength      float64 `json:"strength"`
	ChangePercent float64 `json:"change_percent"`
	Slope         float64 `json:"slope"`
}

// SeasonalProfile summarizes calendar-month price structure.
type SeasonalProfile struct {
	MonthlyAverages map[int]float64 `json:"monthly_averages"` // 1..12
	PeakMonth       int             `json:"peak_month"`
	PeakPrice       float64         `json:"peak_price"`
	TroughMonth     int             `json:"trough_month"`
	TroughPrice     float64         `json:"trough_price"`
	Strength        float64         `json:"seasonal_strength"`
	Pattern         string          `json:"pattern"` // weak | moderate | strong
	Classification  string          `json:"classification"`
	SampleSize      int             `json:"sample_size"`
}

// AnomalyEvent flags a price observation far from the series mean.
type AnomalyEvent struct {
	Date             time.Time `json:"date"`
	Market           string    `json:"market"`
	Price            float64   `json:"price"`
	Mean             float64   `json:"mean"`
	DeviationPercent float64   `json:"deviation_percent"`
	ZScore           float64   `json:"z_score"`
	Type             string    `json:"type"`     // SPIKE | DROP
	Severity         string    `json:"severity"` // MODERATE | HIGH
}
