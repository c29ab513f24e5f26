package models

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes the row as "maturity,<date>" lines in label order.
// Absent values are written as empty cells.
func (r AlignedRow) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"maturity", r.Date.String()}); err != nil {
		return err
	}
	for _, l := range r.Labels {
		if err := cw.Write([]string{l, r.Get(l).String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes "maturity,<date1>,<date2>" lines.
func (c CurveComparison) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"maturity", c.Dates[0].String(), c.Dates[1].String()}); err != nil {
		return err
	}
	for _, p := range c.Points {
		rec := []string{p.Maturity, formatRate(p.Rates[0]), formatRate(p.Rates[1])}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes one line per date: the date, one cell per column, and the
// spread cell when the table carries one.
func (t HistoricalTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"date"}, t.Columns...)
	if t.HasSpread() {
		header = append(header, SpreadLabel)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.Date.String())
		for _, v := range row.Values {
			rec = append(rec, v.String())
		}
		if t.HasSpread() {
			var s Value
			if row.Spread != nil {
				s = *row.Spread
			}
			rec = append(rec, s.String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatRate(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
