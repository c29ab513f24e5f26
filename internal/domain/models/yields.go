package models

import (
	"encoding/json"
	"slices"

	"YieldDesk/pkg/date"
)

// SpreadLabel is the column header of the derived spread column.
const SpreadLabel = "Spread"

// OmittedSeries records a requested label that produced no data, and why.
type OmittedSeries struct {
	Label    string `json:"label"`
	SeriesID string `json:"series_id,omitempty"`
	Reason   string `json:"reason"`
}

// AlignedRow is one date's cross-section across several series.
// Every label in Labels is a key of Values, absent or not.
type AlignedRow struct {
	Date    date.Date        `json:"date"`
	Labels  []string         `json:"labels"`
	Values  map[string]Value `json:"values"`
	Omitted []OmittedSeries  `json:"omitted,omitempty"`
}

// NewAlignedRow returns a row with every label set to Absent.
func NewAlignedRow(on date.Date, labels []string) AlignedRow {
	r := AlignedRow{
		Date:   on,
		Labels: slices.Clone(labels),
		Values: make(map[string]Value, len(labels)),
	}
	for _, l := range labels {
		r.Values[l] = Absent()
	}
	return r
}

// Get returns the value for label; unknown labels read as Absent.
func (r AlignedRow) Get(label string) Value { return r.Values[label] }

// SpreadPair names the two columns the spread was derived from.
type SpreadPair struct {
	Minuend    string `json:"minuend"`
	Subtrahend string `json:"subtrahend"`
}

// HistoricalRow is one date of a HistoricalTable. Values is parallel to the
// table's Columns. Spread is nil when the table has no spread column.
type HistoricalRow struct {
	Date   date.Date `json:"date"`
	Values []Value   `json:"values"`
	Spread *Value    `json:"spread,omitempty"`
}

// HistoricalTable is a date-indexed join of several series.
type HistoricalTable struct {
	Range   date.Range      `json:"range"`
	Columns []string        `json:"columns"`
	Rows    []HistoricalRow `json:"rows"`
	Spread  *SpreadPair     `json:"spread,omitempty"`
	Omitted []OmittedSeries `json:"omitted,omitempty"`
}

// UnmarshalJSON keeps an absent spread cell distinct from a missing one:
// a "spread":null key decodes to an absent Value, not a nil pointer.
func (r *HistoricalRow) UnmarshalJSON(b []byte) error {
	type row HistoricalRow
	var aux struct {
		row
		Spread json.RawMessage `json:"spread"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = HistoricalRow(aux.row)
	r.Spread = nil
	if aux.Spread == nil {
		return nil
	}
	var v Value
	if err := v.UnmarshalJSON(aux.Spread); err != nil {
		return err
	}
	r.Spread = &v
	return nil
}

// HasSpread reports whether the derived spread column is present.
func (t HistoricalTable) HasSpread() bool { return t.Spread != nil }

// Column returns the values of label in row order.
func (t HistoricalTable) Column(label string) ([]Value, bool) {
	i := slices.Index(t.Columns, label)
	if i < 0 {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for j, r := range t.Rows {
		out[j] = r.Values[i]
	}
	return out, true
}

// SpreadColumn returns the spread values in row order.
func (t HistoricalTable) SpreadColumn() ([]Value, bool) {
	if !t.HasSpread() {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for j, r := range t.Rows {
		if r.Spread != nil {
			out[j] = *r.Spread
		}
	}
	return out, true
}

// Dates returns the row dates.
func (t HistoricalTable) Dates() []date.Date {
	out := make([]date.Date, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Date
	}
	return out
}

// CurvePoint is one maturity present on both compared dates.
type CurvePoint struct {
	Maturity string     `json:"maturity"`
	Rates    [2]float64 `json:"rates"`
}

// CurveComparison is the inner join of two yield-curve cross-sections.
type CurveComparison struct {
	Dates   [2]date.Date `json:"dates"`
	Points  []CurvePoint `json:"points"`
	Dropped []string     `json:"dropped,omitempty"`
}
