package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
)

// Archiver receives every successful fetch. Submit must not block.
type Archiver interface {
	Submit(batch *models.ObservationBatch)
}

type fetchResult struct {
	label    string
	seriesID string
	series   models.TimeSeries
	err      error
}

// SeriesFetcher resolves labels through the catalog and fetches them from
// the provider concurrently, one attempt each.
type SeriesFetcher struct {
	catalog  *catalog.Catalog
	provider domrepo.MacroProvider
	archive  Archiver
	metrics  domrepo.Metrics
	log      *logger.Logger
}

func NewSeriesFetcher(cat *catalog.Catalog, provider domrepo.MacroProvider, archive Archiver, metrics domrepo.Metrics, log *logger.Logger) *SeriesFetcher {
	return &SeriesFetcher{catalog: cat, provider: provider, archive: archive, metrics: metrics, log: log}
}

// fetchAll returns one result per label, in label order.
func (f *SeriesFetcher) fetchAll(ctx context.Context, labels []string, r date.Range) []fetchResult {
	out := make([]fetchResult, len(labels))
	var wg sync.WaitGroup

	for i, label := range labels {
		id, ok := f.catalog.Lookup(label)
		if !ok {
			out[i] = fetchResult{label: label, err: models.ErrUnknownSeries}
			continue
		}
		wg.Add(1)
		go func(i int, label, id string) {
			defer wg.Done()
			out[i] = f.fetchOne(ctx, label, id, r)
		}(i, label, id)
	}

	wg.Wait()
	return out
}

func (f *SeriesFetcher) fetchOne(ctx context.Context, label, id string, r date.Range) fetchResult {
	start := time.Now()
	s, err := f.provider.GetSeries(ctx, id, r)
	f.metrics.RecordLatency("fetch_series", time.Since(start).Seconds())

	if err != nil {
		if !errors.Is(err, models.ErrUnknownSeries) && !errors.Is(err, models.ErrProviderUnavailable) {
			err = models.NewProviderError(id, models.ErrProviderUnavailable, err)
		}
		f.metrics.RecordFetch(id, "error")
		f.log.Warn("series fetch failed",
			logger.String("label", label),
			logger.String("series_id", id),
			logger.String("reason", models.Reason(err)),
			logger.Error(err))
		return fetchResult{label: label, seriesID: id, err: err}
	}

	f.metrics.RecordFetch(id, "ok")
	f.log.Debug("series fetched",
		logger.String("series_id", id),
		logger.Int("observations", s.Len()),
		logger.Duration("took", time.Since(start)))

	if f.archive != nil && s.Len() > 0 {
		f.archive.Submit(&models.ObservationBatch{
			SeriesID:     id,
			FetchedAt:    time.Now().UTC(),
			Observations: s.Observations,
		})
	}
	return fetchResult{label: label, seriesID: id, series: s}
}

// omit records why a label produced nothing.
func (f *SeriesFetcher) omit(label, seriesID string, err error) models.OmittedSeries {
	reason := models.Reason(err)
	f.metrics.RecordOmitted(reason)
	return models.OmittedSeries{Label: label, SeriesID: seriesID, Reason: reason}
}
