package models

import (
	"slices"

	"YieldDesk/pkg/date"
)

// Observation is one dated reading of a series.
type Observation struct {
	Date  date.Date `json:"date"`
	Value Value     `json:"value"`
}

// TimeSeries is a sparse, date-indexed series with strictly increasing dates.
type TimeSeries struct {
	ID           string        `json:"id"`
	Observations []Observation `json:"observations"`
}

// NewTimeSeries sorts observations by date. When a date repeats, the
// observation supplied last wins.
func NewTimeSeries(id string, obs []Observation) TimeSeries {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		i, found := slices.BinarySearchFunc(out, o.Date, func(x Observation, d date.Date) int {
			return x.Date.Compare(d)
		})
		if found {
			out[i] = o
			continue
		}
		out = slices.Insert(out, i, o)
	}
	return TimeSeries{ID: id, Observations: out}
}

// Len returns the number of observations.
func (s TimeSeries) Len() int { return len(s.Observations) }

// Within returns the observations whose dates fall inside r.
func (s TimeSeries) Within(r date.Range) []Observation {
	lo, _ := slices.BinarySearchFunc(s.Observations, r.From, cmpObs)
	hi, found := slices.BinarySearchFunc(s.Observations, r.To, cmpObs)
	if found {
		hi++
	}
	if lo >= hi {
		return nil
	}
	return s.Observations[lo:hi]
}

// Populated reports whether at least one observation carries a number.
func (s TimeSeries) Populated() bool {
	for _, o := range s.Observations {
		if o.Value.IsPresent() {
			return true
		}
	}
	return false
}

func cmpObs(o Observation, d date.Date) int { return o.Date.Compare(d) }
