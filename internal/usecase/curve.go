package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
)

// CurveUseCase builds yield-curve cross-sections and two-date comparisons.
type CurveUseCase struct {
	catalog  *catalog.Catalog
	fetcher  *SeriesFetcher
	memo     *Memo
	metrics  domrepo.Metrics
	log      *logger.Logger
	lookback int
	today    func() date.Date
}

type CurveOption func(*CurveUseCase)

// WithClock overrides how the current date is read.
func WithClock(today func() date.Date) CurveOption {
	return func(uc *CurveUseCase) { uc.today = today }
}

// NewCurveUseCase creates the use case. lookbackDays is how far before the
// target date a cross-section looks for the last published value.
func NewCurveUseCase(cat *catalog.Catalog, fetcher *SeriesFetcher, memo *Memo, metrics domrepo.Metrics, log *logger.Logger, lookbackDays int, opts ...CurveOption) *CurveUseCase {
	uc := &CurveUseCase{
		catalog:  cat,
		fetcher:  fetcher,
		memo:     memo,
		metrics:  metrics,
		log:      log,
		lookback: lookbackDays,
		today:    date.Today,
	}
	if uc.lookback <= 0 {
		uc.lookback = 30
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// DefaultDate is today, or the preceding Friday on a weekend.
func (uc *CurveUseCase) DefaultDate() date.Date { return uc.today().LastWeekday() }

// CrossSection aligns every selected maturity to on. A nil selection means
// the whole catalog; a non-nil empty one is ErrEmptySelection. The zero
// date means DefaultDate. Labels come back in catalog order.
//
// Only the lookback window (fred.lookback_days, 30 by default) before on is
// fetched, so alignment looks back at most that far rather than over the
// whole series. A maturity whose last publication is older than the window,
// such as the 30 Year during its 2002-2006 suspension, is Absent and listed
// in Omitted as NoDataAtOrBeforeDate.
func (uc *CurveUseCase) CrossSection(ctx context.Context, on date.Date, labels []string) (*models.AlignedRow, error) {
	on, labels, err := uc.normalize(on, labels)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { uc.metrics.RecordLatency("cross_section", time.Since(start).Seconds()) }()

	key := memoKey("curve", labels, on)
	var cached models.AlignedRow
	if uc.memo.get(ctx, "curve", key, &cached) {
		return &cached, nil
	}

	row := uc.align(ctx, on, labels)
	if len(row.Omitted) == 0 {
		uc.memo.put(ctx, key, row)
	}
	uc.log.Info("yield curve",
		logger.String("date", on.String()),
		logger.Int("maturities", len(labels)),
		logger.Int("omitted", len(row.Omitted)))
	return &row, nil
}

func (uc *CurveUseCase) normalize(on date.Date, labels []string) (date.Date, []string, error) {
	if on.IsZero() {
		on = uc.DefaultDate()
	}
	if on.Before(catalog.MinDate) {
		return on, nil, fmt.Errorf("%w: %s is before %s", models.ErrInvalidDateRange, on, catalog.MinDate)
	}
	if labels == nil {
		return on, uc.catalog.Labels(), nil
	}
	labels = uniqueLabels(labels)
	if len(labels) == 0 {
		return on, nil, models.ErrEmptySelection
	}
	return on, uc.catalog.Sort(labels), nil
}

// align fetches a lookback window ending at on (or today, for future dates)
// and takes the last value at or before on for each label.
func (uc *CurveUseCase) align(ctx context.Context, on date.Date, labels []string) models.AlignedRow {
	end := on
	if today := uc.today(); end.After(today) {
		end = today
	}
	window := date.Range{From: end.Add(-uc.lookback), To: end}

	row := models.NewAlignedRow(on, labels)
	for _, res := range uc.fetcher.fetchAll(ctx, labels, window) {
		if res.err != nil {
			row.Omitted = append(row.Omitted, uc.fetcher.omit(res.label, res.seriesID, res.err))
			continue
		}
		v, err := AlignAt(res.series, on)
		if err != nil {
			row.Omitted = append(row.Omitted, uc.fetcher.omit(res.label, res.seriesID, err))
			continue
		}
		row.Values[res.label] = v
	}
	return row
}

// Compare builds cross-sections for two dates and keeps the maturities
// present on both. A zero second date means one year before the first.
func (uc *CurveUseCase) Compare(ctx context.Context, d1, d2 date.Date, labels []string) (*models.CurveComparison, error) {
	if d1.IsZero() {
		d1 = uc.DefaultDate()
	}
	if d2.IsZero() {
		d2 = date.New(d1.Year()-1, d1.Month(), d1.Day()).LastWeekday()
	}
	if _, _, err := uc.normalize(d1, labels); err != nil {
		return nil, err
	}
	if _, _, err := uc.normalize(d2, labels); err != nil {
		return nil, err
	}

	var (
		rows [2]*models.AlignedRow
		errs [2]error
		wg   sync.WaitGroup
	)
	for i, d := range [2]date.Date{d1, d2} {
		wg.Add(1)
		go func(i int, d date.Date) {
			defer wg.Done()
			rows[i], errs[i] = uc.CrossSection(ctx, d, labels)
		}(i, d)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return MergeCurves(*rows[0], *rows[1]), nil
}

// MergeCurves inner-joins two cross-sections on maturity label, in the
// label order of a. Maturities absent on either side are listed in Dropped.
func MergeCurves(a, b models.AlignedRow) *models.CurveComparison {
	out := &models.CurveComparison{
		Dates:  [2]date.Date{a.Date, b.Date},
		Points: []models.CurvePoint{},
	}
	for _, label := range a.Labels {
		x, okA := a.Get(label).Get()
		y, okB := b.Get(label).Get()
		if !okA || !okB {
			out.Dropped = append(out.Dropped, label)
			continue
		}
		out.Points = append(out.Points, models.CurvePoint{Maturity: label, Rates: [2]float64{x, y}})
	}
	return out
}
