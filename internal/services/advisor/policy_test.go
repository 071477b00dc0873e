package advisor

import (
	"testing"
	"time"

	"AgriPulse/internal/domain/models"
)

func forecastPoints(estimates ...float64) []models.ForecastPoint {
	base := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.ForecastPoint, len(estimates))
	for i, e := range estimates {
		out[i] = models.ForecastPoint{Date: base.AddDate(0, 0, i), Estimate: e}
	}
	return out
}

func TestEmptyForecastHolds(t *testing.T) {
	p := NewPolicy()
	got := p.Recommend(100, nil, models.VolatilityLow, nil)
	if got.Action != models.ActionHoldAndMonitor {
		t.Errorf("expected HOLD_AND_MONITOR, got %s", got.Action)
	}
	if got.Confidence != 0 {
		t.Errorf("expected confidence 0, got %d", got.Confidence)
	}
	if got.Reason != "insufficient data" {
		t.Errorf("unexpected reason: %s", got.Reason)
	}
}

func TestHighVolatilitySmallGainHolds(t *testing.T) {
	p := NewPolicy()
	got := p.Recommend(100, forecastPoints(101, 100.5), models.VolatilityHigh, nil)
	if got.Action != models.ActionHoldAndMonitor {
		t.Errorf("expected HOLD_AND_MONITOR, got %s", got.Action)
	}
	if !got.VolatilityWarning {
		t.Errorf("expected volatility warning")
	}
	if got.Confidence != 50 {
		t.Errorf("expected confidence 50, got %d", got.Confidence)
	}
}

func TestHighVolatilityLargeGainStillWaits(t *testing.T) {
	// A gain of 12% clears the 10% volatility guard, so rule 2 applies.
	p := NewPolicy()
	got := p.Recommend(100, forecastPoints(105, 112), models.VolatilityVeryHigh, nil)
	if got.Action != models.ActionWait {
		t.Errorf("expected WAIT, got %s", got.Action)
	}
}

func TestLargeGainWaitsUntilPeak(t *testing.T) {
	p := NewPolicy()
	got := p.Recommend(100, forecastPoints(102, 108, 105), models.VolatilityLow, nil)
	if got.Action != models.ActionWait {
		t.Fatalf("expected WAIT, got %s", got.Action)
	}
	// 60 + round(8) = 68
	if got.Confidence != 68 {
		t.Errorf("expected confidence 68, got %d", got.Confidence)
	}
	if got.BestDate == nil || got.BestDate.Day() != 2 {
		t.Errorf("expected peak date on day 2, got %v", got.BestDate)
	}
	if got.ExpectedPrice == nil || *got.ExpectedPrice != 108 {
		t.Errorf("expected price 108, got %v", got.ExpectedPrice)
	}
}

func TestWaitConfidenceCapped(t *testing.T) {
	p := NewPolicy()
	got := p.Recommend(100, forecastPoints(150), models.VolatilityLow, nil)
	if got.Action != models.ActionWait {
		t.Fatalf("expected WAIT, got %s", got.Action)
	}
	if got.Confidence != 90 {
		t.Errorf("expected capped confidence 90, got %d", got.Confidence)
	}
}

func TestModestGainSellsBeforePeak(t *testing.T) {
	p := NewPolicy()
	got := p.Recommend(100, forecastPoints(103, 105), models.VolatilityLow, nil)
	if got.Action != models.ActionSellBefore {
		t.Fatalf("expected SELL_BEFORE, got %s", got.Action)
	}
	if got.Confidence != 70 {
		t.Errorf("expected confidence 70, got %d", got.Confidence)
	}
}

func TestFallingPricesSellNow(t *testing.T) {
	p := NewPolicy()
	got := p.Recommend(100, forecastPoints(94, 92), models.VolatilityLow, nil)
	if got.Action != models.ActionSellNow {
		t.Fatalf("expected SELL_NOW, got %s", got.Action)
	}
	// 60 + round(6) = 66
	if got.Confidence != 66 {
		t.Errorf("expected confidence 66, got %d", got.Confidence)
	}
}

func TestAboveSupportPriceSellsNow(t *testing.T) {
	p := NewPolicy()
	ref := 100.0
	got := p.Recommend(106, forecastPoints(107, 106.5), models.VolatilityLow, &ref)
	if got.Action != models.ActionSellNow {
		t.Fatalf("expected SELL_NOW above support price, got %s", got.Action)
	}
	if got.Confidence != 80 {
		t.Errorf("expected confidence 80, got %d", got.Confidence)
	}
}

func TestBelowSupportPremiumHolds(t *testing.T) {
	p := NewPolicy()
	ref := 100.0
	got := p.Recommend(103, forecastPoints(104), models.VolatilityLow, &ref)
	if got.Action != models.ActionHoldAndMonitor {
		t.Fatalf("expected HOLD_AND_MONITOR, got %s", got.Action)
	}
	if got.Confidence != 65 {
		t.Errorf("expected confidence 65, got %d", got.Confidence)
	}
}

func TestPeakTieBreaksEarlier(t *testing.T) {
	p := NewPolicy()
	got := p.Recommend(100, forecastPoints(108, 108), models.VolatilityLow, nil)
	if got.BestDate == nil || got.BestDate.Day() != 1 {
		t.Errorf("expected tie to break toward the earlier date, got %v", got.BestDate)
	}
}
