package repository

import (
	"context"

	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/date"
)

// MacroProvider fetches economic time series. Failures are *models.ProviderError.
type MacroProvider interface {
	GetSeries(ctx context.Context, seriesID string, r date.Range) (models.TimeSeries, error)
}

// NewsProvider searches finance headlines.
type NewsProvider interface {
	Search(ctx context.Context, q models.NewsQuery) ([]models.Article, error)
}

// Publisher ships fetched observation batches to a message bus.
type Publisher interface {
	PublishBatch(ctx context.Context, batch *models.ObservationBatch) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables
	StoreBatch(ctx context.Context, batch *models.ObservationBatch) error
	Query(ctx context.Context, seriesID string, r date.Range) ([]models.Observation, error)
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordFetch(seriesID, outcome string)
	RecordOmitted(reason string)
	RecordMemo(op string, hit bool)
	RecordArchived(backend string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
