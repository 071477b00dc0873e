package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"AgriPulse/internal/domain/models"
	"AgriPulse/pkg/cache"
)

func testArtifact(key string) *models.TrainedModel {
	return &models.TrainedModel{
		Version: models.ArtifactVersion,
		Key:     key,
		Linear:  models.LinearComponent{Slope: 0.5, Intercept: 100},
		Window:  []float64{101, 102, 103},
		Snapshot: []models.DatedPrice{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: 100},
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 101},
		},
		TrainedFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TrainedTo:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		TrainedAt:   time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
	}
}

func TestArtifactStoreRoundTrip(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheArtifactStore(mc, 0)

	want := testArtifact("wheat|punjab|all")
	if err := store.Save(context.Background(), want.Key, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(context.Background(), want.Key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Key != want.Key {
		t.Errorf("Key = %q, want %q", got.Key, want.Key)
	}
	if got.Linear.Slope != want.Linear.Slope || got.Linear.Intercept != want.Linear.Intercept {
		t.Errorf("Linear = %+v, want %+v", got.Linear, want.Linear)
	}
	if len(got.Snapshot) != len(want.Snapshot) {
		t.Errorf("Snapshot length = %d, want %d", len(got.Snapshot), len(want.Snapshot))
	}
	if !got.TrainedAt.Equal(want.TrainedAt) {
		t.Errorf("TrainedAt = %v, want %v", got.TrainedAt, want.TrainedAt)
	}
}

func TestArtifactStoreMissingKey(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheArtifactStore(mc, 0)

	_, err := store.Load(context.Background(), "onion|nashik|all")
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("Load() error = %v, want ErrModelUnavailable", err)
	}
}

func TestArtifactStoreRejectsStaleSchema(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheArtifactStore(mc, 0)

	stale := testArtifact("wheat|punjab|all")
	stale.Version = models.ArtifactVersion + 1
	if err := store.Save(context.Background(), stale.Key, stale); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err := store.Load(context.Background(), stale.Key)
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("Load() error = %v, want ErrModelUnavailable for stale schema", err)
	}
}

func TestArtifactStoreOverwrite(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheArtifactStore(mc, time.Hour)

	first := testArtifact("wheat|punjab|all")
	if err := store.Save(context.Background(), first.Key, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := testArtifact("wheat|punjab|all")
	second.Linear.Slope = 1.25
	if err := store.Save(context.Background(), second.Key, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(context.Background(), first.Key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Linear.Slope != 1.25 {
		t.Errorf("Slope after overwrite = %v, want 1.25", got.Linear.Slope)
	}
}
