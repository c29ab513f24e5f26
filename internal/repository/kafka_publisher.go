package repository

import (
	"context"

	"YieldDesk/internal/domain/models"
	"YieldDesk/internal/domain/repository"
	pkgkafka "YieldDesk/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Batches are keyed by
// series id so one series stays on one partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, b *models.ObservationBatch) error {
	if !b.Validate() {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(b.SeriesID), b)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
