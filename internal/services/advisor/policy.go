package advisor

import (
	"fmt"
	"math"

	"AgriPulse/internal/domain/models"
)

// MSPPremium is the margin over the reference (support) price at which
// selling immediately beats holding.
const MSPPremium = 1.05

// Policy converts a forecast, the current price and the volatility
// classification into a sell/hold/wait decision.
type Policy struct{}

// NewPolicy creates a recommendation policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Recommend evaluates the decision table in order. referencePrice is an
// optional floor/support price; pass nil when none applies.
func (p *Policy) Recommend(currentPrice float64, points []models.ForecastPoint, volatility string, referencePrice *float64) models.Recommendation {
	if len(points) == 0 {
		return models.Recommendation{
			Action:     models.ActionHoldAndMonitor,
			Reason:     "insufficient data",
			Confidence: 0,
		}
	}

	peak := points[0]
	for _, pt := range points[1:] {
		// Ties break toward the earliest date.
		if pt.Estimate > peak.Estimate {
			peak = pt
		}
	}

	potentialGain := 0.0
	if currentPrice != 0 {
		potentialGain = (peak.Estimate - currentPrice) / currentPrice * 100
	}

	highVolatility := volatility == models.VolatilityHigh || volatility == models.VolatilityVeryHigh

	switch {
	case highVolatility && math.Abs(potentialGain) < 10:
		return models.Recommendation{
			Action:            models.ActionHoldAndMonitor,
			Reason:            "high volatility",
			Confidence:        50,
			PotentialGain:     potentialGain,
			VolatilityWarning: true,
		}

	case potentialGain > 7:
		best := peak.Date
		expected := peak.Estimate
		return models.Recommendation{
			Action:        models.ActionWait,
			Reason:        fmt.Sprintf("prices expected to rise %.1f%% by %s", potentialGain, best.Format("2006-01-02")),
			Confidence:    capConfidence(60 + int(math.Round(potentialGain))),
			BestDate:      &best,
			ExpectedPrice: &expected,
			PotentialGain: potentialGain,
		}

	case potentialGain > 3:
		best := peak.Date
		expected := peak.Estimate
		return models.Recommendation{
			Action:        models.ActionSellBefore,
			Reason:        fmt.Sprintf("modest gain of %.1f%% expected before %s", potentialGain, best.Format("2006-01-02")),
			Confidence:    70,
			BestDate:      &best,
			ExpectedPrice: &expected,
			PotentialGain: potentialGain,
		}

	case potentialGain < -5:
		return models.Recommendation{
			Action:        models.ActionSellNow,
			Reason:        fmt.Sprintf("prices expected to fall %.1f%%", math.Abs(potentialGain)),
			Confidence:    capConfidence(60 + int(math.Round(math.Abs(potentialGain)))),
			PotentialGain: potentialGain,
		}
	}

	if referencePrice != nil && currentPrice >= *referencePrice*MSPPremium {
		return models.Recommendation{
			Action:        models.ActionSellNow,
			Reason:        "current price is comfortably above the support price",
			Confidence:    80,
			PotentialGain: potentialGain,
		}
	}

	return models.Recommendation{
		Action:        models.ActionHoldAndMonitor,
		Reason:        "no strong price movement expected",
		Confidence:    65,
		PotentialGain: potentialGain,
	}
}

func capConfidence(c int) int {
	if c > 90 {
		return 90
	}
	return c
}
