package repository

import (
	"context"

	"AgriPulse/internal/domain/models"
	domrepo "AgriPulse/internal/domain/repository"
	pkgkafka "AgriPulse/pkg/kafka"
)

// KafkaPricePublisher implements Publisher for Kafka. Messages are keyed
// by the series identity so per-series ordering survives partitioning.
type KafkaPricePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPricePublisher creates a Kafka price publisher.
func NewKafkaPricePublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPricePublisher{producer: producer, topic: topic}
}

func (p *KafkaPricePublisher) Publish(ctx context.Context, point *models.PricePoint) error {
	key := models.NewSeriesKey(point.Commodity, point.Region, point.Market)
	return p.producer.Publish(ctx, p.topic, []byte(key.String()), point)
}

func (p *KafkaPricePublisher) PublishBatch(ctx context.Context, points []*models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(points))
	for i, point := range points {
		key := models.NewSeriesKey(point.Commodity, point.Region, point.Market)
		msgs[i] = pkgkafka.Message{
			Key:   []byte(key.String()),
			Value: point,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPricePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
