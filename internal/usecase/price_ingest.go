package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"AgriPulse/internal/domain/models"
	domrepo "AgriPulse/internal/domain/repository"
	"AgriPulse/internal/services/timeseries"
	pkgkafka "AgriPulse/pkg/kafka"
)

// PriceProcessor routes incoming observations to the configured ingest
// backend. With the "kafka" backend the observation is published and
// lands in storage through the consumer; with "clickhouse" it is written
// directly. Either way the in-memory series store is updated so analytics
// stay current.
type PriceProcessor struct {
	pub     domrepo.Publisher
	storage domrepo.ObservationStore
	series  *timeseries.Store
	metrics domrepo.Metrics
	backend string
}

// NewPriceProcessor creates a new PriceProcessor instance.
func NewPriceProcessor(
	pub domrepo.Publisher,
	storage domrepo.ObservationStore,
	series *timeseries.Store,
	metrics domrepo.Metrics,
	backend string,
) *PriceProcessor {
	return &PriceProcessor{
		pub:     pub,
		storage: storage,
		series:  series,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes one observation to the configured backend.
func (p *PriceProcessor) Process(ctx context.Context, pt *models.PricePoint) error {
	if pt == nil {
		return fmt.Errorf("price point is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, pt)
	case "clickhouse":
		err = p.storage.Store(ctx, pt)
		if err == nil {
			p.series.Ingest(*pt)
		}
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process price: %w", err)
	}

	p.metrics.RecordIngested(p.backend, pt.Commodity)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple observations in a batch.
func (p *PriceProcessor) ProcessBatch(ctx context.Context, points []*models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, points)
	case "clickhouse":
		err = p.storage.StoreBatch(ctx, points)
		if err == nil {
			for _, pt := range points {
				p.series.Ingest(*pt)
			}
		}
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, pt := range points {
		p.metrics.RecordIngested(p.backend, pt.Commodity)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close releases the backend resources held by the processor.
func (p *PriceProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.storage != nil {
		_ = p.storage.Close()
	}
}

// KafkaPricesHandler consumes price messages from Kafka and writes them
// to storage and the in-memory series store.
type KafkaPricesHandler struct {
	topic   string
	storage domrepo.ObservationStore
	series  *timeseries.Store
	metrics domrepo.Metrics
}

func NewKafkaPricesHandler(topic string, storage domrepo.ObservationStore, series *timeseries.Store, metrics domrepo.Metrics) *KafkaPricesHandler {
	return &KafkaPricesHandler{topic: topic, storage: storage, series: series, metrics: metrics}
}

func (h *KafkaPricesHandler) Topic() string { return h.topic }

func (h *KafkaPricesHandler) Handle(ctx context.Context, b []byte) error {
	var pt models.PricePoint
	if err := json.Unmarshal(b, &pt); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	if err := h.storage.Store(ctx, &pt); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())

	h.series.Ingest(pt)
	h.metrics.RecordIngested("clickhouse", pt.Commodity)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaPricesHandler)(nil)
