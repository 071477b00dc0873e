package models

import "time"

// Recommendation actions.
const (
	ActionSellNow        = "SELL_NOW"
	ActionSellBefore     = "SELL_BEFORE"
	ActionWait           = "WAIT"
	ActionHoldAndMonitor = "HOLD_AND_MONITOR"
)

// Recommendation maps a forecast into an actionable sell/hold/wait decision.
type Recommendation struct {
	Action            string     `json:"action"`
	Reason            string     `json:"reason"`
	Confidence        int        `json:"confidence"`
	BestDate          *time.Time `json:"best_date,omitempty"`
	ExpectedPrice     *float64   `json:"expected_price,omitempty"`
	PotentialGain     float64    `json:"potential_gain_percent"`
	VolatilityWarning bool       `json:"volatility_warning,omitempty"`
}
