package models

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"YieldDesk/pkg/date"
)

func TestAlignedRowCSV(t *testing.T) {
	row := NewAlignedRow(date.New(2024, 6, 7), []string{"1 Month", "10 Year", "30 Year"})
	row.Values["1 Month"] = Present(5.49)
	row.Values["10 Year"] = Present(4.43)

	var buf bytes.Buffer
	require.NoError(t, row.WriteCSV(&buf))
	goldie.New(t).Assert(t, "aligned_row", buf.Bytes())
}

func TestCurveComparisonCSV(t *testing.T) {
	c := CurveComparison{
		Dates: [2]date.Date{date.New(2023, 6, 7), date.New(2024, 6, 7)},
		Points: []CurvePoint{
			{Maturity: "2 Year", Rates: [2]float64{4.55, 4.73}},
			{Maturity: "10 Year", Rates: [2]float64{3.78, 4.43}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, c.WriteCSV(&buf))
	goldie.New(t).Assert(t, "curve_comparison", buf.Bytes())
}

func TestHistoricalTableCSV(t *testing.T) {
	spread := Present(0.5)
	table := HistoricalTable{
		Range:   date.Range{From: date.New(2020, 1, 1), To: date.New(2020, 1, 3)},
		Columns: []string{"10 Year", "2 Year"},
		Spread:  &SpreadPair{Minuend: "10 Year", Subtrahend: "2 Year"},
		Rows: []HistoricalRow{
			{Date: date.New(2020, 1, 1), Values: []Value{Present(1), Present(0.5)}, Spread: &spread},
			{Date: date.New(2020, 1, 2), Values: []Value{Present(1.2), Absent()}, Spread: &Value{}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	goldie.New(t).Assert(t, "historical_table", buf.Bytes())
}

func TestHistoricalTableCSVWithoutSpread(t *testing.T) {
	table := HistoricalTable{
		Columns: []string{"5 Year"},
		Rows: []HistoricalRow{
			{Date: date.New(2020, 1, 1), Values: []Value{Present(1.66)}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	require.Equal(t, "date,5 Year\n2020-01-01,1.66\n", buf.String())
}
