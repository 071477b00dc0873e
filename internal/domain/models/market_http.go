package models

// Requests for market HTTP endpoints. Defined in domain for consistency and reuse.

type PricesRequest struct {
	Commodity  string `query:"commodity" json:"commodity" validate:"required"`
	Region     string `query:"region" json:"region"`
	Market     string `query:"market" json:"market"`
	WindowDays int    `query:"window_days" json:"window_days" default:"30" validate:"gte=1,lte=1825"`
}

type VolatilityRequest struct {
	Commodity  string `query:"commodity" json:"commodity" validate:"required"`
	Region     string `query:"region" json:"region" validate:"required"`
	WindowDays int    `query:"window_days" json:"window_days" default:"30" validate:"gte=1,lte=365"`
}

type TrendRequest struct {
	Commodity  string `query:"commodity" json:"commodity" validate:"required"`
	Region     string `query:"region" json:"region" validate:"required"`
	WindowDays int    `query:"window_days" json:"window_days" default:"30" validate:"gte=1,lte=365"`
}

type SeasonalityRequest struct {
	Commodity string `query:"commodity" json:"commodity" validate:"required"`
	Region    string `query:"region" json:"region"`
}

type AnomaliesRequest struct {
	Commodity   string  `query:"commodity" json:"commodity" validate:"required"`
	Region      string  `query:"region" json:"region" validate:"required"`
	WindowDays  int     `query:"window_days" json:"window_days" default:"90" validate:"gte=1,lte=365"`
	Sensitivity float64 `query:"sensitivity" json:"sensitivity" default:"2.0" validate:"gte=0.5,lte=5"`
}

type TrainRequest struct {
	Commodity  string `json:"commodity" validate:"required"`
	Region     string `json:"region" validate:"required"`
	Market     string `json:"market"`
	WindowDays int    `json:"window_days" default:"365" validate:"gte=30,lte=1825"`
}

type TrainBatchRequest struct {
	Series     []TrainRequest `json:"series" validate:"required,min=1,dive"`
	WindowDays int            `json:"window_days" default:"365" validate:"gte=30,lte=1825"`
}

type PredictRequest struct {
	Commodity   string `query:"commodity" json:"commodity" validate:"required"`
	Region      string `query:"region" json:"region" validate:"required"`
	Market      string `query:"market" json:"market"`
	HorizonDays int    `query:"horizon_days" json:"horizon_days" default:"7" validate:"gte=1,lte=90"`
}

type RecommendRequest struct {
	CurrentPrice   float64         `json:"current_price" validate:"required,gt=0"`
	Forecast       []ForecastPoint `json:"forecast"`
	Volatility     string          `json:"volatility" default:"MODERATE" validate:"oneof=LOW MODERATE HIGH VERY_HIGH INSUFFICIENT_DATA"`
	ReferencePrice *float64        `json:"reference_price"`
}

type AdviceRequest struct {
	Commodity      string   `query:"commodity" json:"commodity" validate:"required"`
	Region         string   `query:"region" json:"region" validate:"required"`
	Market         string   `query:"market" json:"market"`
	HorizonDays    int      `query:"horizon_days" json:"horizon_days" default:"7" validate:"gte=1,lte=90"`
	CurrentPrice   float64  `query:"current_price" json:"current_price"`
	ReferencePrice *float64 `query:"reference_price" json:"reference_price"`
}
