package usecase

import (
	"context"
	"sync"

	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
	"YieldDesk/pkg/metrics"
)

// fakeProvider serves canned series and counts calls per id.
type fakeProvider struct {
	mu     sync.Mutex
	series map[string][]models.Observation
	errs   map[string]error
	calls  map[string]int
	ranges map[string]date.Range
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		series: map[string][]models.Observation{},
		errs:   map[string]error{},
		calls:  map[string]int{},
		ranges: map[string]date.Range{},
	}
}

func (p *fakeProvider) with(id string, obs ...models.Observation) *fakeProvider {
	p.series[id] = obs
	return p
}

func (p *fakeProvider) failing(id string, err error) *fakeProvider {
	p.errs[id] = err
	return p
}

func (p *fakeProvider) GetSeries(_ context.Context, id string, r date.Range) (models.TimeSeries, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[id]++
	p.ranges[id] = r
	if err := p.errs[id]; err != nil {
		return models.TimeSeries{}, err
	}
	obs, ok := p.series[id]
	if !ok {
		return models.TimeSeries{}, models.NewProviderError(id, models.ErrUnknownSeries, nil)
	}
	return models.NewTimeSeries(id, obs), nil
}

func (p *fakeProvider) callCount(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[id]
}

type recordingArchive struct {
	mu      sync.Mutex
	batches []*models.ObservationBatch
}

func (a *recordingArchive) Submit(b *models.ObservationBatch) {
	a.mu.Lock()
	a.batches = append(a.batches, b)
	a.mu.Unlock()
}

func obs(d string, v float64) models.Observation {
	return models.Observation{Date: date.MustParse(d), Value: models.Present(v)}
}

func missing(d string) models.Observation {
	return models.Observation{Date: date.MustParse(d), Value: models.Absent()}
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{Label: "A", SeriesID: "A"},
		{Label: "X", SeriesID: "X"},
		{Label: "Y", SeriesID: "Y"},
		{Label: "Z", SeriesID: "Z"},
	})
}

func newFetcher(p *fakeProvider, archive Archiver) *SeriesFetcher {
	return NewSeriesFetcher(testCatalog(), p, archive, metrics.Nop{}, logger.NewNop())
}
