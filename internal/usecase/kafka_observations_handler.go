package usecase

import (
	"context"
	"encoding/json"
	"time"

	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	pkgkafka "YieldDesk/pkg/kafka"
)

// KafkaObservationsHandler consumes archived batches and writes them to storage.
type KafkaObservationsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var batch models.ObservationBatch
	if err := json.Unmarshal(b, &batch); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if !batch.Validate() {
		return nil
	}
	if !batch.FetchedAt.IsZero() {
		h.metrics.RecordLatency("archive_e2e", time.Since(batch.FetchedAt).Seconds())
	}

	start := time.Now()
	err := h.storage.StoreBatch(ctx, &batch)
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordArchived(BackendClickHouse, len(batch.Observations))
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
