package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"AgriPulse/internal/domain/models"
	"AgriPulse/internal/services/advisor"
	"AgriPulse/internal/services/analytics"
	"AgriPulse/internal/services/forecast"
	"AgriPulse/internal/services/timeseries"
	"AgriPulse/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordIngested(source, commodity string)               {}
func (nopMetrics) RecordError(kind string)                               {}
func (nopMetrics) RecordLastPrice(commodity, region string, p float64)   {}
func (nopMetrics) RecordLatency(op string, seconds float64)              {}
func (nopMetrics) RecordTraining(result string)                          {}
func (nopMetrics) RecordPrediction(commodity string)                     {}

type memArtifactStore struct {
	mu        sync.Mutex
	artifacts map[string]*models.TrainedModel
}

func newMemArtifactStore() *memArtifactStore {
	return &memArtifactStore{artifacts: make(map[string]*models.TrainedModel)}
}

func (s *memArtifactStore) Load(_ context.Context, key string) (*models.TrainedModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.artifacts[key]
	if !ok {
		return nil, models.ErrModelUnavailable
	}
	return m, nil
}

func (s *memArtifactStore) Save(_ context.Context, key string, m *models.TrainedModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[key] = m
	return nil
}

var advisorNow = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func testAdvisor(t *testing.T) (*MarketAdvisor, *timeseries.Store) {
	t.Helper()
	lgr, err := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}

	series := timeseries.NewStore(timeseries.WithNowFunc(func() time.Time { return advisorNow }))
	analyzer := analytics.NewAnalyzer(series, lgr)
	forecaster := forecast.NewForecaster(newMemArtifactStore(), lgr,
		forecast.WithClock(func() time.Time { return advisorNow }))

	adv := NewMarketAdvisor(series, analyzer, forecaster, forecast.NewEstimator(), advisor.NewPolicy(), nopMetrics{}, lgr)
	return adv, series
}

func ingestRamp(series *timeseries.Store, commodity, region string, days int) {
	for i := 0; i < days; i++ {
		date := advisorNow.AddDate(0, 0, -days+i)
		price := 100 + 0.5*float64(i)
		series.Ingest(models.PricePoint{
			Commodity:  commodity,
			Region:     region,
			Market:     "Khanna",
			Date:       date,
			MinPrice:   price - 2,
			MaxPrice:   price + 2,
			ModalPrice: price,
		})
	}
}

func TestTrainAndPredictThroughAdvisor(t *testing.T) {
	adv, series := testAdvisor(t)
	ingestRamp(series, "Wheat", "Punjab", 120)

	key := models.NewSeriesKey("Wheat", "Punjab", "")
	if err := adv.Train(context.Background(), key, 0); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	fc, err := adv.Predict(context.Background(), key, 7)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(fc.Points) != 7 {
		t.Fatalf("forecast points = %d, want 7", len(fc.Points))
	}
	if fc.Confidence <= 0 || fc.Confidence > 100 {
		t.Errorf("Confidence = %d, want in (0,100]", fc.Confidence)
	}
	if fc.Trend != models.ForecastRising {
		t.Errorf("Trend = %q, want %q for a rising series", fc.Trend, models.ForecastRising)
	}
}

func TestTrainRejectsShortHistory(t *testing.T) {
	adv, series := testAdvisor(t)
	ingestRamp(series, "Onion", "Nashik", 10)

	key := models.NewSeriesKey("Onion", "Nashik", "")
	err := adv.Train(context.Background(), key, 0)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("Train() error = %v, want ErrInsufficientData", err)
	}
}

func TestTrainThrottledAfterBurst(t *testing.T) {
	adv, series := testAdvisor(t)
	ingestRamp(series, "Wheat", "Punjab", 120)

	key := models.NewSeriesKey("Wheat", "Punjab", "")
	for i := 0; i < 2; i++ {
		if err := adv.Train(context.Background(), key, 0); err != nil {
			t.Fatalf("Train() #%d error = %v", i+1, err)
		}
	}

	err := adv.Train(context.Background(), key, 0)
	if !errors.Is(err, ErrTrainThrottled) {
		t.Fatalf("Train() error = %v, want ErrTrainThrottled", err)
	}
}

func TestPredictMemoizesPerArtifact(t *testing.T) {
	adv, series := testAdvisor(t)
	ingestRamp(series, "Wheat", "Punjab", 120)

	key := models.NewSeriesKey("Wheat", "Punjab", "")
	if err := adv.Train(context.Background(), key, 0); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	first, err := adv.Predict(context.Background(), key, 7)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	second, err := adv.Predict(context.Background(), key, 7)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if first != second {
		t.Error("expected second Predict() to return the memoized forecast")
	}
}

func TestTrainBatchReportsThrottledItems(t *testing.T) {
	adv, series := testAdvisor(t)
	ingestRamp(series, "Wheat", "Punjab", 120)

	key := models.NewSeriesKey("Wheat", "Punjab", "")
	keys := []models.SeriesKey{key, key, key}
	outcomes := adv.TrainBatch(context.Background(), keys, 0)
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}

	throttled := 0
	for _, o := range outcomes {
		if !o.OK && o.Reason == ErrTrainThrottled.Error() {
			throttled++
		}
	}
	if throttled != 1 {
		t.Errorf("throttled outcomes = %d, want 1", throttled)
	}
}

func TestAdviseWithoutTrainedModel(t *testing.T) {
	adv, series := testAdvisor(t)
	ingestRamp(series, "Wheat", "Punjab", 20)

	key := models.NewSeriesKey("Wheat", "Punjab", "")
	advice, err := adv.Advise(context.Background(), key, 7, 0, nil)
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}

	if advice.Recommendation.Action != models.ActionHoldAndMonitor {
		t.Errorf("Action = %q, want %q", advice.Recommendation.Action, models.ActionHoldAndMonitor)
	}
	if advice.Recommendation.Confidence != 0 {
		t.Errorf("Confidence = %d, want 0 without a model", advice.Recommendation.Confidence)
	}
	if advice.CurrentPrice <= 0 {
		t.Errorf("CurrentPrice = %v, want latest observed price", advice.CurrentPrice)
	}
}

func TestAdviseNoObservations(t *testing.T) {
	adv, _ := testAdvisor(t)

	key := models.NewSeriesKey("Maize", "Bihar", "")
	_, err := adv.Advise(context.Background(), key, 7, 0, nil)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("Advise() error = %v, want ErrInsufficientData", err)
	}
}

func TestAdviseWithExplicitCurrentPrice(t *testing.T) {
	adv, series := testAdvisor(t)
	ingestRamp(series, "Wheat", "Punjab", 120)

	key := models.NewSeriesKey("Wheat", "Punjab", "")
	if err := adv.Train(context.Background(), key, 0); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	advice, err := adv.Advise(context.Background(), key, 7, 90, nil)
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if advice.CurrentPrice != 90 {
		t.Errorf("CurrentPrice = %v, want the explicit 90", advice.CurrentPrice)
	}
	// Forecast sits well above 90, so the policy should favor waiting.
	if advice.Recommendation.Action != models.ActionWait {
		t.Errorf("Action = %q, want %q", advice.Recommendation.Action, models.ActionWait)
	}
}
