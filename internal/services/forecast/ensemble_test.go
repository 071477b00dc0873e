package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"AgriPulse/internal/domain/models"
	"AgriPulse/pkg/logger"
)

type fakeArtifactStore struct {
	artifacts map[string]*models.TrainedModel
	failSave  bool
	saves     int
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{artifacts: make(map[string]*models.TrainedModel)}
}

func (s *fakeArtifactStore) Load(_ context.Context, key string) (*models.TrainedModel, error) {
	m, ok := s.artifacts[key]
	if !ok {
		return nil, models.ErrModelUnavailable
	}
	return m, nil
}

func (s *fakeArtifactStore) Save(_ context.Context, key string, m *models.TrainedModel) error {
	if s.failSave {
		return fmt.Errorf("backing store down")
	}
	s.artifacts[key] = m
	s.saves++
	return nil
}

func testForecaster(store *fakeArtifactStore) *Forecaster {
	lgr, _ := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	now := func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }
	return NewForecaster(store, lgr, WithClock(now))
}

// dailySeries generates n consecutive daily prices starting 2024-01-01.
func dailySeries(n int, price func(i int) float64) []models.DatedPrice {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.DatedPrice, n)
	for i := range out {
		out[i] = models.DatedPrice{Date: base.AddDate(0, 0, i), Price: price(i)}
	}
	return out
}

func wheatKey() models.SeriesKey {
	return models.NewSeriesKey("Wheat", "Punjab", "")
}

func TestTrainRejectsShortSeries(t *testing.T) {
	f := testForecaster(newFakeArtifactStore())
	series := dailySeries(29, func(i int) float64 { return 100 })

	err := f.Train(context.Background(), wheatKey(), series)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainAndPredictHorizon(t *testing.T) {
	store := newFakeArtifactStore()
	f := testForecaster(store)
	series := dailySeries(120, func(i int) float64 { return 2000 + float64(i) })

	if err := f.Train(context.Background(), wheatKey(), series); err != nil {
		t.Fatalf("train: %v", err)
	}

	forecast, err := f.Predict(context.Background(), wheatKey(), 7)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(forecast.Points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(forecast.Points))
	}

	lastTrained := series[len(series)-1].Date
	prev := lastTrained
	for i, p := range forecast.Points {
		if !p.Date.After(prev) {
			t.Errorf("point %d date %v not strictly after %v", i, p.Date, prev)
		}
		if p.Date.Sub(prev) != 24*time.Hour {
			t.Errorf("point %d not consecutive: gap %v", i, p.Date.Sub(prev))
		}
		prev = p.Date
		if p.Estimate <= 0 {
			t.Errorf("point %d has non-positive estimate %v", i, p.Estimate)
		}
		if p.Lower > p.Upper {
			t.Errorf("point %d has inverted bounds [%v, %v]", i, p.Lower, p.Upper)
		}
	}

	if forecast.Trend != models.ForecastRising {
		t.Errorf("expected rising trend on increasing series, got %s", forecast.Trend)
	}
}

func TestPredictWithoutModel(t *testing.T) {
	f := testForecaster(newFakeArtifactStore())
	_, err := f.Predict(context.Background(), wheatKey(), 7)
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestPredictHydratesFromBackingStore(t *testing.T) {
	store := newFakeArtifactStore()
	series := dailySeries(90, func(i int) float64 { return 1500 + float64(i%10) })

	trainer := testForecaster(store)
	if err := trainer.Train(context.Background(), wheatKey(), series); err != nil {
		t.Fatalf("train: %v", err)
	}

	// Fresh forecaster with an empty memory registry must fall back
	// to the backing store.
	reader := testForecaster(store)
	forecast, err := reader.Predict(context.Background(), wheatKey(), 5)
	if err != nil {
		t.Fatalf("predict after restart: %v", err)
	}
	if len(forecast.Points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(forecast.Points))
	}
}

func TestFailedTrainKeepsPriorArtifact(t *testing.T) {
	store := newFakeArtifactStore()
	f := testForecaster(store)
	series := dailySeries(60, func(i int) float64 { return 1000 + float64(i) })

	if err := f.Train(context.Background(), wheatKey(), series); err != nil {
		t.Fatalf("first train: %v", err)
	}
	before, err := f.Predict(context.Background(), wheatKey(), 3)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	store.failSave = true
	retrain := dailySeries(60, func(i int) float64 { return 9999 })
	if err := f.Train(context.Background(), wheatKey(), retrain); err == nil {
		t.Fatalf("expected save failure to surface")
	}

	after, err := f.Predict(context.Background(), wheatKey(), 3)
	if err != nil {
		t.Fatalf("predict after failed retrain: %v", err)
	}
	for i := range before.Points {
		if before.Points[i].Estimate != after.Points[i].Estimate {
			t.Errorf("failed retrain mutated the served model at point %d", i)
		}
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	series := dailySeries(100, func(i int) float64 { return 2000 + 50*math.Sin(float64(i)/10) })

	a := testForecaster(newFakeArtifactStore())
	b := testForecaster(newFakeArtifactStore())
	if err := a.Train(context.Background(), wheatKey(), series); err != nil {
		t.Fatalf("train a: %v", err)
	}
	if err := b.Train(context.Background(), wheatKey(), series); err != nil {
		t.Fatalf("train b: %v", err)
	}

	fa, _ := a.Predict(context.Background(), wheatKey(), 7)
	fb, _ := b.Predict(context.Background(), wheatKey(), 7)
	for i := range fa.Points {
		if math.Abs(fa.Points[i].Estimate-fb.Points[i].Estimate) > 1e-9 {
			t.Errorf("point %d differs: %v vs %v", i, fa.Points[i].Estimate, fb.Points[i].Estimate)
		}
	}
}

func TestPredictWithoutSeasonalComponent(t *testing.T) {
	// 30 points inside a single calendar month: no seasonal signal, so
	// the ensemble must renormalize over linear + moving average.
	f := testForecaster(newFakeArtifactStore())
	series := dailySeries(30, func(i int) float64 { return 100 })

	if err := f.Train(context.Background(), wheatKey(), series); err != nil {
		t.Fatalf("train: %v", err)
	}
	forecast, err := f.Predict(context.Background(), wheatKey(), 3)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	for i, p := range forecast.Points {
		if p.Models.Seasonal {
			t.Errorf("point %d claims seasonal participation", i)
		}
		if !p.Models.Linear || !p.Models.MovingAverage {
			t.Errorf("point %d missing always-available sub-models: %+v", i, p.Models)
		}
		// Flat series: both remaining sub-models estimate 100, so the
		// renormalized blend must be exactly 100 with +/-5% bounds.
		if math.Abs(p.Estimate-100) > 1e-9 {
			t.Errorf("point %d expected estimate 100, got %v", i, p.Estimate)
		}
		if math.Abs(p.Lower-95) > 1e-9 || math.Abs(p.Upper-105) > 1e-9 {
			t.Errorf("point %d expected +/-5%% bounds, got [%v, %v]", i, p.Lower, p.Upper)
		}
	}

	if forecast.Trend != models.ForecastStable {
		t.Errorf("expected stable trend on flat series, got %s", forecast.Trend)
	}
}

func TestTrainBatchReportsPerItemOutcomes(t *testing.T) {
	f := testForecaster(newFakeArtifactStore())
	items := []TrainItem{
		{Key: models.NewSeriesKey("wheat", "punjab", ""), Series: dailySeries(60, func(i int) float64 { return 2000 })},
		{Key: models.NewSeriesKey("onion", "nashik", ""), Series: dailySeries(10, func(i int) float64 { return 800 })},
	}

	outcomes := f.TrainBatch(context.Background(), items)
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].OK {
		t.Errorf("expected first item to succeed: %+v", outcomes[0])
	}
	if outcomes[1].OK || outcomes[1].Reason == "" {
		t.Errorf("expected second item to fail with a reason: %+v", outcomes[1])
	}
}

func TestRetrainReplacesArtifact(t *testing.T) {
	store := newFakeArtifactStore()
	f := testForecaster(store)

	first := dailySeries(60, func(i int) float64 { return 1000 })
	second := dailySeries(60, func(i int) float64 { return 3000 })

	if err := f.Train(context.Background(), wheatKey(), first); err != nil {
		t.Fatalf("train: %v", err)
	}
	if err := f.Train(context.Background(), wheatKey(), second); err != nil {
		t.Fatalf("retrain: %v", err)
	}

	forecast, err := f.Predict(context.Background(), wheatKey(), 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if forecast.Points[0].Estimate < 2000 {
		t.Errorf("prediction still reflects the replaced model: %v", forecast.Points[0].Estimate)
	}
	if store.saves != 2 {
		t.Errorf("expected 2 saves, got %d", store.saves)
	}
}
