package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/date"
)

func TestAlign(t *testing.T) {
	s := models.NewTimeSeries("A", []models.Observation{
		obs("2020-01-01", 5.0),
		obs("2020-01-05", 5.5),
	})

	tests := []struct {
		name   string
		target string
		want   models.Value
	}{
		{"between observations", "2020-01-03", models.Present(5.0)},
		{"exact match", "2020-01-05", models.Present(5.5)},
		{"after last", "2020-02-01", models.Present(5.5)},
		{"before first", "2019-12-31", models.Absent()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Align(s, date.MustParse(tt.target)))
		})
	}
}

func TestAlignAtReportsNoData(t *testing.T) {
	s := models.NewTimeSeries("A", []models.Observation{obs("2020-01-01", 5.0)})

	_, err := AlignAt(s, date.MustParse("2019-12-31"))
	require.ErrorIs(t, err, models.ErrNoDataAtOrBefore)

	_, err = AlignAt(models.TimeSeries{ID: "empty"}, date.MustParse("2020-01-01"))
	require.ErrorIs(t, err, models.ErrNoDataAtOrBefore)
}

func TestAlignKeepsAbsentObservation(t *testing.T) {
	s := models.NewTimeSeries("A", []models.Observation{
		obs("2020-01-01", 5.0),
		missing("2020-01-02"),
	})

	v, err := AlignAt(s, date.MustParse("2020-01-03"))
	require.NoError(t, err)
	assert.False(t, v.IsPresent())
}
