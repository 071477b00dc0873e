package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AgriPulse/internal/domain/models"
	domrepo "AgriPulse/internal/domain/repository"
	"AgriPulse/pkg/cache"
)

const artifactKeyPrefix = "model:"

// CacheArtifactStore persists trained model artifacts as JSON through the
// layered cache, so artifacts survive process restarts via Redis and are
// served from memory on the hot path.
type CacheArtifactStore struct {
	cache cache.Service
	ttl   time.Duration
}

// NewCacheArtifactStore creates artifact storage on top of a cache service.
// A zero ttl keeps artifacts until overwritten or evicted.
func NewCacheArtifactStore(c cache.Service, ttl time.Duration) domrepo.ArtifactStore {
	return &CacheArtifactStore{cache: c, ttl: ttl}
}

func (s *CacheArtifactStore) Load(ctx context.Context, key string) (*models.TrainedModel, error) {
	var payload string
	if err := s.cache.Get(ctx, artifactKeyPrefix+key, &payload); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, models.ErrModelUnavailable
		}
		return nil, fmt.Errorf("load artifact %s: %w", key, err)
	}

	var m models.TrainedModel
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", key, err)
	}
	if m.Version != models.ArtifactVersion {
		// Stale schema, treat as absent so callers retrain.
		return nil, models.ErrModelUnavailable
	}
	return &m, nil
}

func (s *CacheArtifactStore) Save(ctx context.Context, key string, m *models.TrainedModel) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode artifact %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, artifactKeyPrefix+key, string(b), s.ttl); err != nil {
		return fmt.Errorf("save artifact %s: %w", key, err)
	}
	return nil
}
