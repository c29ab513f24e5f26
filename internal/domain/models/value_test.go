package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/pkg/date"
)

func TestValueZeroIsAbsent(t *testing.T) {
	var v Value
	assert.False(t, v.IsPresent())
	assert.Equal(t, "", v.String())
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Present(4.25), Absent()})
	require.NoError(t, err)
	assert.JSONEq(t, `[4.25,null]`, string(b))

	var back []Value
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 2)
	f, ok := back[0].Get()
	assert.True(t, ok)
	assert.Equal(t, 4.25, f)
	assert.False(t, back[1].IsPresent())
}

func TestNewTimeSeriesSortsAndDedupes(t *testing.T) {
	s := NewTimeSeries("DGS10", []Observation{
		{Date: date.New(2020, 1, 3), Value: Present(3)},
		{Date: date.New(2020, 1, 1), Value: Present(1)},
		{Date: date.New(2020, 1, 3), Value: Present(3.5)},
		{Date: date.New(2020, 1, 2), Value: Absent()},
	})
	require.Equal(t, 3, s.Len())
	assert.Equal(t, date.New(2020, 1, 1), s.Observations[0].Date)
	assert.Equal(t, date.New(2020, 1, 2), s.Observations[1].Date)
	assert.Equal(t, Present(3.5), s.Observations[2].Value)
	assert.True(t, s.Populated())
}

func TestTimeSeriesWithin(t *testing.T) {
	s := NewTimeSeries("X", []Observation{
		{Date: date.New(2020, 1, 1), Value: Present(1)},
		{Date: date.New(2020, 1, 5), Value: Present(2)},
		{Date: date.New(2020, 1, 9), Value: Present(3)},
	})

	got := s.Within(date.Range{From: date.New(2020, 1, 1), To: date.New(2020, 1, 5)})
	assert.Len(t, got, 2)

	got = s.Within(date.Range{From: date.New(2020, 1, 2), To: date.New(2020, 1, 8)})
	require.Len(t, got, 1)
	assert.Equal(t, date.New(2020, 1, 5), got[0].Date)

	assert.Empty(t, s.Within(date.Range{From: date.New(2020, 1, 10), To: date.New(2020, 2, 1)}))
}

func TestPopulatedAllAbsent(t *testing.T) {
	s := NewTimeSeries("X", []Observation{{Date: date.New(2020, 1, 1)}})
	assert.False(t, s.Populated())
	assert.False(t, TimeSeries{}.Populated())
}

func TestReason(t *testing.T) {
	cases := map[string]error{
		"":                        nil,
		"UnknownSeriesIdentifier": NewProviderError("BAD", ErrUnknownSeries, nil),
		"ProviderUnavailable":     NewProviderError("DGS10", ErrProviderUnavailable, assert.AnError),
		"NoDataAtOrBeforeDate":    ErrNoDataAtOrBefore,
		"InvalidDateRange":        ErrInvalidDateRange,
		"EmptySelection":          ErrEmptySelection,
	}
	for want, err := range cases {
		assert.Equal(t, want, Reason(err))
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	err := NewProviderError("DGS10", ErrProviderUnavailable, assert.AnError)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "DGS10")
}

func TestHistoricalRowSpreadJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Value
	}{
		{"absent spread", `{"date":"2020-01-02","values":[1.2,null],"spread":null}`, &Value{}},
		{"present spread", `{"date":"2020-01-01","values":[1,0.5],"spread":0.5}`, func() *Value { v := Present(0.5); return &v }()},
		{"no spread column", `{"date":"2020-01-01","values":[1]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row HistoricalRow
			require.NoError(t, json.Unmarshal([]byte(tt.in), &row))
			assert.Equal(t, tt.want, row.Spread)

			out, err := json.Marshal(row)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
		})
	}
}
