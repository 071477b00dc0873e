package repository

import (
	"context"
	"time"

	"AgriPulse/internal/domain/models"
)

// PriceFeed streams live mandi price observations.
type PriceFeed interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PricePoint, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards observations to the streaming backend.
type Publisher interface {
	Publish(ctx context.Context, p *models.PricePoint) error
	PublishBatch(ctx context.Context, points []*models.PricePoint) error
	Close() error
}

// ObservationStore is the durable store of raw price observations.
type ObservationStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, p *models.PricePoint) error
	StoreBatch(ctx context.Context, points []*models.PricePoint) error
	LoadSince(ctx context.Context, since time.Time) ([]models.PricePoint, error)
	Health(ctx context.Context) error
	Close() error
}

// ArtifactStore is the narrow load/save interface behind which trained
// model artifacts are persisted. The forecasting core is agnostic to its
// durability mechanism.
type ArtifactStore interface {
	// Load returns the artifact for key, or models.ErrModelUnavailable
	// when none has been saved.
	Load(ctx context.Context, key string) (*models.TrainedModel, error)
	// Save overwrites the artifact for key atomically.
	Save(ctx context.Context, key string, m *models.TrainedModel) error
}

// Metrics records operational telemetry.
type Metrics interface {
	RecordIngested(source, commodity string)
	RecordError(kind string)
	RecordLastPrice(commodity, region string, price float64)
	RecordLatency(op string, seconds float64)
	RecordTraining(result string)
	RecordPrediction(commodity string)
}
