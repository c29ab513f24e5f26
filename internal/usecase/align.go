package usecase

import (
	"slices"

	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/date"
)

// Align returns the value of the latest observation dated on or before
// target, or Absent when the series has nothing that early.
func Align(s models.TimeSeries, target date.Date) models.Value {
	v, _ := AlignAt(s, target)
	return v
}

// AlignAt is Align with the reason for an Absent result. It reports
// ErrNoDataAtOrBefore when no observation is dated on or before target.
// A matching observation that is itself absent is returned as is.
func AlignAt(s models.TimeSeries, target date.Date) (models.Value, error) {
	i, found := slices.BinarySearchFunc(s.Observations, target, func(o models.Observation, d date.Date) int {
		return o.Date.Compare(d)
	})
	if found {
		return s.Observations[i].Value, nil
	}
	if i == 0 {
		return models.Absent(), models.ErrNoDataAtOrBefore
	}
	return s.Observations[i-1].Value, nil
}
