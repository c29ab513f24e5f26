package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
	"YieldDesk/pkg/metrics"
)

func newCurve(p *fakeProvider, today string) *CurveUseCase {
	clock := func() date.Date { return date.MustParse(today) }
	return NewCurveUseCase(testCatalog(), newFetcher(p, nil), nil, metrics.Nop{}, logger.NewNop(), 30, WithClock(clock))
}

func TestCrossSectionAlignsEachMaturity(t *testing.T) {
	p := xyProvider().with("A", obs("2020-01-01", 5.0), obs("2020-01-05", 5.5))
	uc := newCurve(p, "2024-06-10")

	row, err := uc.CrossSection(context.Background(), date.MustParse("2020-01-03"), []string{"Y", "A", "X"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "X", "Y"}, row.Labels, "catalog order")
	assert.Equal(t, models.Present(5.0), row.Get("A"))
	assert.Equal(t, models.Present(1.2), row.Get("X"))
	assert.Equal(t, models.Present(0.7), row.Get("Y"))
	assert.Empty(t, row.Omitted)

	want := date.Range{From: date.MustParse("2019-12-04"), To: date.MustParse("2020-01-03")}
	assert.Equal(t, want, p.ranges["A"])
}

func TestCrossSectionBeforeFirstObservation(t *testing.T) {
	p := newFakeProvider().with("A", obs("2020-01-01", 5.0))
	uc := newCurve(p, "2024-06-10")

	row, err := uc.CrossSection(context.Background(), date.MustParse("2019-12-31"), []string{"A"})
	require.NoError(t, err)

	assert.Equal(t, models.Absent(), row.Get("A"))
	require.Len(t, row.Omitted, 1)
	assert.Equal(t, "NoDataAtOrBeforeDate", row.Omitted[0].Reason)
}

func TestCrossSectionDefaults(t *testing.T) {
	p := newFakeProvider().
		with("A", obs("2024-06-07", 5.0)).
		with("X", obs("2024-06-07", 1.0)).
		with("Y", obs("2024-06-07", 2.0))
	uc := newCurve(p, "2024-06-09") // Sunday

	row, err := uc.CrossSection(context.Background(), date.Date{}, nil)
	require.NoError(t, err)

	assert.Equal(t, date.MustParse("2024-06-07"), row.Date)
	assert.Equal(t, []string{"A", "X", "Y", "Z"}, row.Labels)
	assert.Equal(t, models.Absent(), row.Get("Z"))
	require.Len(t, row.Omitted, 1)
	assert.Equal(t, "Z", row.Omitted[0].Label)
}

func TestCrossSectionFutureDateClampsWindow(t *testing.T) {
	p := newFakeProvider().with("X", obs("2024-06-07", 1.0))
	uc := newCurve(p, "2024-06-10")

	row, err := uc.CrossSection(context.Background(), date.MustParse("2030-01-01"), []string{"X"})
	require.NoError(t, err)

	assert.Equal(t, models.Present(1.0), row.Get("X"))
	assert.Equal(t, date.MustParse("2024-06-10"), p.ranges["X"].To)
}

func TestCrossSectionValidation(t *testing.T) {
	uc := newCurve(xyProvider(), "2024-06-10")
	ctx := context.Background()

	_, err := uc.CrossSection(ctx, date.MustParse("2020-01-02"), []string{})
	assert.ErrorIs(t, err, models.ErrEmptySelection)

	_, err = uc.CrossSection(ctx, date.MustParse("2001-06-01"), []string{"X"})
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)
}

func TestCompareInnerJoin(t *testing.T) {
	p := newFakeProvider().
		with("X", obs("2019-01-02", 2.5), obs("2020-01-02", 1.2)).
		with("Y", obs("2020-01-02", 0.7))
	uc := newCurve(p, "2024-06-10")

	cmp, err := uc.Compare(context.Background(), date.MustParse("2020-01-02"), date.Date{}, []string{"X", "Y"})
	require.NoError(t, err)

	assert.Equal(t, [2]date.Date{date.MustParse("2020-01-02"), date.MustParse("2019-01-02")}, cmp.Dates)
	assert.Equal(t, []models.CurvePoint{{Maturity: "X", Rates: [2]float64{1.2, 2.5}}}, cmp.Points)
	assert.Equal(t, []string{"Y"}, cmp.Dropped)
}

func TestCompareValidation(t *testing.T) {
	uc := newCurve(xyProvider(), "2024-06-10")

	_, err := uc.Compare(context.Background(), date.MustParse("2020-01-02"), date.MustParse("1999-01-01"), []string{"X"})
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)
}

func TestMergeCurves(t *testing.T) {
	a := models.NewAlignedRow(date.MustParse("2024-06-07"), []string{"1 Year", "2 Year", "10 Year"})
	a.Values["1 Year"] = models.Present(5.1)
	a.Values["10 Year"] = models.Present(4.4)
	b := models.NewAlignedRow(date.MustParse("2023-06-07"), []string{"1 Year", "2 Year", "10 Year"})
	b.Values["1 Year"] = models.Present(5.2)
	b.Values["2 Year"] = models.Present(4.5)
	b.Values["10 Year"] = models.Present(3.8)

	got := MergeCurves(a, b)
	assert.Equal(t, []models.CurvePoint{
		{Maturity: "1 Year", Rates: [2]float64{5.1, 5.2}},
		{Maturity: "10 Year", Rates: [2]float64{4.4, 3.8}},
	}, got.Points)
	assert.Equal(t, []string{"2 Year"}, got.Dropped)
}
