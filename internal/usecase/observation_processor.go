package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"YieldDesk/internal/domain/models"
	drepo "YieldDesk/internal/domain/repository"
)

// Archive backends.
const (
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
)

// ObservationProcessor routes archive batches to the configured backend.
type ObservationProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
}

func NewObservationProcessor(pub drepo.Publisher, store drepo.Storage, metrics drepo.Metrics, backend string) *ObservationProcessor {
	return &ObservationProcessor{pub: pub, store: store, metrics: metrics, backend: backend}
}

// Process writes one batch to the backend.
func (p *ObservationProcessor) Process(ctx context.Context, b *models.ObservationBatch) error {
	if !b.Validate() {
		return fmt.Errorf("invalid batch")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case BackendKafka:
		if p.pub == nil {
			return fmt.Errorf("backend %s not configured", p.backend)
		}
		err = p.pub.PublishBatch(ctx, b)
	case BackendClickHouse:
		if p.store == nil {
			return fmt.Errorf("backend %s not configured", p.backend)
		}
		err = p.store.StoreBatch(ctx, b)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("archive_process")
		return fmt.Errorf("archive %s: %w", b.SeriesID, err)
	}

	p.metrics.RecordArchived(p.backend, len(b.Observations))
	p.metrics.RecordLatency("archive_process", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *ObservationProcessor) Close() error {
	var errs []error
	if p.pub != nil {
		errs = append(errs, p.pub.Close())
	}
	if p.store != nil {
		errs = append(errs, p.store.Close())
	}
	return errors.Join(errs...)
}
