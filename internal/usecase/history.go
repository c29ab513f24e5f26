package usecase

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
)

// HistoricalUseCase joins several series over a date range into one table.
type HistoricalUseCase struct {
	fetcher *SeriesFetcher
	memo    *Memo
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewHistoricalUseCase(fetcher *SeriesFetcher, memo *Memo, metrics domrepo.Metrics, log *logger.Logger) *HistoricalUseCase {
	return &HistoricalUseCase{fetcher: fetcher, memo: memo, metrics: metrics, log: log}
}

// Join fetches every label over r and outer-joins them on date. Columns keep
// request order; labels that fail to fetch are listed in Omitted instead.
// Only an empty selection or a bad range is returned as an error.
func (uc *HistoricalUseCase) Join(ctx context.Context, labels []string, r date.Range) (*models.HistoricalTable, error) {
	labels = uniqueLabels(labels)
	if len(labels) == 0 {
		return nil, models.ErrEmptySelection
	}
	if err := validateRange(r); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { uc.metrics.RecordLatency("join", time.Since(start).Seconds()) }()

	key := memoKey("history", labels, r.From, r.To)
	var cached models.HistoricalTable
	if uc.memo.get(ctx, "history", key, &cached) {
		return &cached, nil
	}

	results := uc.fetcher.fetchAll(ctx, labels, r)
	table := uc.build(r, results)

	if len(table.Omitted) == 0 {
		uc.memo.put(ctx, key, table)
	}
	uc.log.Info("historical join",
		logger.Strings("labels", labels),
		logger.String("range", r.String()),
		logger.Int("rows", len(table.Rows)),
		logger.Int("omitted", len(table.Omitted)),
		logger.Bool("spread", table.HasSpread()))
	return table, nil
}

func (uc *HistoricalUseCase) build(r date.Range, results []fetchResult) *models.HistoricalTable {
	table := &models.HistoricalTable{Range: r, Columns: []string{}, Rows: []models.HistoricalRow{}}

	var (
		byDate    []map[date.Date]models.Value
		populated []int
		seen      = make(map[date.Date]struct{})
	)
	for _, res := range results {
		if res.err != nil {
			table.Omitted = append(table.Omitted, uc.fetcher.omit(res.label, res.seriesID, res.err))
			continue
		}
		window := models.TimeSeries{ID: res.seriesID, Observations: res.series.Within(r)}
		col := make(map[date.Date]models.Value, window.Len())
		for _, o := range window.Observations {
			col[o.Date] = o.Value
			seen[o.Date] = struct{}{}
		}
		if window.Populated() {
			populated = append(populated, len(table.Columns))
		}
		table.Columns = append(table.Columns, res.label)
		byDate = append(byDate, col)
	}

	dates := slices.Collect(maps.Keys(seen))
	slices.SortFunc(dates, date.Date.Compare)

	withSpread := len(populated) == 2
	if withSpread {
		table.Spread = &models.SpreadPair{
			Minuend:    table.Columns[populated[0]],
			Subtrahend: table.Columns[populated[1]],
		}
	}

	table.Rows = make([]models.HistoricalRow, len(dates))
	for i, d := range dates {
		row := models.HistoricalRow{Date: d, Values: make([]models.Value, len(byDate))}
		for j, col := range byDate {
			row.Values[j] = col[d]
		}
		if withSpread {
			s := Spread(row.Values[populated[0]], row.Values[populated[1]])
			row.Spread = &s
		}
		table.Rows[i] = row
	}
	return table
}

// Spread returns a - b, or Absent when either side is absent. The
// subtraction is done in decimal so 1.2 - 0.7 is exactly 0.5.
func Spread(a, b models.Value) models.Value {
	x, okA := a.Get()
	y, okB := b.Get()
	if !okA || !okB {
		return models.Absent()
	}
	d, _ := decimal.NewFromFloat(x).Sub(decimal.NewFromFloat(y)).Float64()
	return models.Present(d)
}

func validateRange(r date.Range) error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: start and end are required", models.ErrInvalidDateRange)
	}
	if !r.From.Before(r.To) {
		return fmt.Errorf("%w: start %s must precede end %s", models.ErrInvalidDateRange, r.From, r.To)
	}
	if r.From.Before(catalog.MinDate) {
		return fmt.Errorf("%w: start %s is before %s", models.ErrInvalidDateRange, r.From, catalog.MinDate)
	}
	return nil
}

// uniqueLabels drops blanks and repeats, keeping first occurrences in order.
func uniqueLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}
