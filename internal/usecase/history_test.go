package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/cache"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
	"YieldDesk/pkg/metrics"
)

var jan = date.Range{From: date.MustParse("2020-01-01"), To: date.MustParse("2020-01-02")}

func xyProvider() *fakeProvider {
	return newFakeProvider().
		with("X", obs("2020-01-01", 1.0), obs("2020-01-02", 1.2)).
		with("Y", obs("2020-01-01", 0.5), obs("2020-01-02", 0.7))
}

func newHistory(p *fakeProvider, memo *Memo) *HistoricalUseCase {
	return NewHistoricalUseCase(newFetcher(p, nil), memo, metrics.Nop{}, logger.NewNop())
}

func TestJoinComputesSpread(t *testing.T) {
	uc := newHistory(xyProvider(), nil)

	table, err := uc.Join(context.Background(), []string{"X", "Y"}, jan)
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y"}, table.Columns)
	require.True(t, table.HasSpread())
	assert.Equal(t, models.SpreadPair{Minuend: "X", Subtrahend: "Y"}, *table.Spread)

	spread, ok := table.SpreadColumn()
	require.True(t, ok)
	assert.Equal(t, []models.Value{models.Present(0.5), models.Present(0.5)}, spread)
	assert.Empty(t, table.Omitted)
}

func TestJoinOmitsUnavailableSeries(t *testing.T) {
	p := xyProvider().failing("Z", errors.New("connection reset"))
	uc := newHistory(p, nil)

	table, err := uc.Join(context.Background(), []string{"X", "Z"}, jan)
	require.NoError(t, err)

	assert.Equal(t, []string{"X"}, table.Columns)
	assert.False(t, table.HasSpread())
	require.Len(t, table.Omitted, 1)
	assert.Equal(t, models.OmittedSeries{Label: "Z", SeriesID: "Z", Reason: "ProviderUnavailable"}, table.Omitted[0])
}

func TestJoinOuterUnionOfDates(t *testing.T) {
	p := newFakeProvider().
		with("X", obs("2020-01-01", 1.0), obs("2020-01-03", 1.1)).
		with("Y", obs("2020-01-02", 0.5)).
		with("Z", obs("2020-01-03", 3.0))
	uc := newHistory(p, nil)

	r := date.Range{From: date.MustParse("2020-01-01"), To: date.MustParse("2020-01-31")}
	table, err := uc.Join(context.Background(), []string{"Z", "X", "Y"}, r)
	require.NoError(t, err)

	assert.Equal(t, []string{"Z", "X", "Y"}, table.Columns)
	assert.Equal(t, []date.Date{
		date.MustParse("2020-01-01"),
		date.MustParse("2020-01-02"),
		date.MustParse("2020-01-03"),
	}, table.Dates())
	assert.False(t, table.HasSpread(), "three populated columns carry no spread")

	x, _ := table.Column("X")
	assert.Equal(t, []models.Value{models.Present(1.0), models.Absent(), models.Present(1.1)}, x)
}

func TestJoinSpreadSkipsEmptyColumn(t *testing.T) {
	p := xyProvider().with("Z", missing("2020-01-01"))
	uc := newHistory(p, nil)

	table, err := uc.Join(context.Background(), []string{"Z", "X", "Y"}, jan)
	require.NoError(t, err)

	require.True(t, table.HasSpread())
	assert.Equal(t, models.SpreadPair{Minuend: "X", Subtrahend: "Y"}, *table.Spread)
}

func TestJoinSpreadAbsentWhenEitherSideAbsent(t *testing.T) {
	p := newFakeProvider().
		with("X", obs("2020-01-01", 1.0), obs("2020-01-02", 1.2)).
		with("Y", obs("2020-01-01", 0.5))
	uc := newHistory(p, nil)

	table, err := uc.Join(context.Background(), []string{"X", "Y"}, jan)
	require.NoError(t, err)

	spread, _ := table.SpreadColumn()
	assert.Equal(t, []models.Value{models.Present(0.5), models.Absent()}, spread)
}

func TestJoinUnknownLabel(t *testing.T) {
	uc := newHistory(xyProvider(), nil)

	table, err := uc.Join(context.Background(), []string{"X", "nope"}, jan)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, table.Columns)
	require.Len(t, table.Omitted, 1)
	assert.Equal(t, "UnknownSeriesIdentifier", table.Omitted[0].Reason)
}

func TestJoinValidation(t *testing.T) {
	uc := newHistory(xyProvider(), nil)
	ctx := context.Background()

	_, err := uc.Join(ctx, nil, jan)
	assert.ErrorIs(t, err, models.ErrEmptySelection)

	_, err = uc.Join(ctx, []string{"", ""}, jan)
	assert.ErrorIs(t, err, models.ErrEmptySelection)

	_, err = uc.Join(ctx, []string{"X"}, date.Range{From: jan.To, To: jan.From})
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)

	_, err = uc.Join(ctx, []string{"X"}, date.Range{From: jan.From, To: jan.From})
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)

	_, err = uc.Join(ctx, []string{"X"}, date.Range{From: date.MustParse("2001-12-31"), To: jan.To})
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)
}

func TestJoinMemoizesCompleteResults(t *testing.T) {
	p := xyProvider().failing("Z", errors.New("boom"))
	store := cache.NewMemoryCache(cache.WithMemoryMaxEntries(16))
	defer store.Close()
	uc := newHistory(p, NewMemo(store, time.Hour, metrics.Nop{}, logger.NewNop()))
	ctx := context.Background()

	first, err := uc.Join(ctx, []string{"X", "Y"}, jan)
	require.NoError(t, err)
	second, err := uc.Join(ctx, []string{"X", "Y"}, jan)
	require.NoError(t, err)

	assert.Equal(t, 1, p.callCount("X"))
	assert.Equal(t, first.Columns, second.Columns)
	spread, _ := second.SpreadColumn()
	assert.Equal(t, []models.Value{models.Present(0.5), models.Present(0.5)}, spread)

	_, err = uc.Join(ctx, []string{"X", "Z"}, jan)
	require.NoError(t, err)
	_, err = uc.Join(ctx, []string{"X", "Z"}, jan)
	require.NoError(t, err)
	assert.Equal(t, 2, p.callCount("Z"), "results with omissions are not memoized")
}

func TestSpread(t *testing.T) {
	assert.Equal(t, models.Present(0.5), Spread(models.Present(1.2), models.Present(0.7)))
	assert.Equal(t, models.Absent(), Spread(models.Present(1.2), models.Absent()))
	assert.Equal(t, models.Absent(), Spread(models.Absent(), models.Present(1.2)))
}

func TestFetcherSubmitsToArchive(t *testing.T) {
	archive := &recordingArchive{}
	f := newFetcher(xyProvider().failing("Z", errors.New("boom")), archive)

	results := f.fetchAll(context.Background(), []string{"X", "Z", "Y"}, jan)
	require.Len(t, results, 3)
	assert.Equal(t, "X", results[0].label)
	assert.Error(t, results[1].err)
	assert.Equal(t, "Y", results[2].label)

	require.Len(t, archive.batches, 2)
	for _, b := range archive.batches {
		assert.True(t, b.Validate())
		assert.False(t, b.FetchedAt.IsZero())
	}
}

func TestJoinMemoHitKeepsRowShape(t *testing.T) {
	p := newFakeProvider().
		with("X", obs("2020-01-01", 1.0), obs("2020-01-02", 1.2)).
		with("Y", obs("2020-01-01", 0.5))
	store := cache.NewMemoryCache(cache.WithMemoryMaxEntries(16))
	defer store.Close()
	uc := newHistory(p, NewMemo(store, time.Hour, metrics.Nop{}, logger.NewNop()))
	ctx := context.Background()

	first, err := uc.Join(ctx, []string{"X", "Y"}, jan)
	require.NoError(t, err)
	hit, err := uc.Join(ctx, []string{"X", "Y"}, jan)
	require.NoError(t, err)
	require.Equal(t, 1, p.callCount("X"))

	want, err := json.Marshal(first)
	require.NoError(t, err)
	got, err := json.Marshal(hit)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.Contains(t, string(got), `{"date":"2020-01-02","values":[1.2,null],"spread":null}`)
}
