package models

import (
	"errors"
	"fmt"
)

var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrUnknownSeries       = errors.New("unknown series identifier")
	ErrNoDataAtOrBefore    = errors.New("no data at or before date")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrEmptySelection      = errors.New("empty selection")
)

// ProviderError is returned by data providers. Kind is one of the sentinel
// errors above so callers can classify with errors.Is.
type ProviderError struct {
	SeriesID string
	Kind     error
	Err      error
}

// NewProviderError builds a ProviderError of the given kind.
func NewProviderError(seriesID string, kind, err error) *ProviderError {
	return &ProviderError{SeriesID: seriesID, Kind: kind, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.SeriesID, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.SeriesID, e.Kind)
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Reason names the error taxonomy entry err belongs to.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownSeries):
		return "UnknownSeriesIdentifier"
	case errors.Is(err, ErrNoDataAtOrBefore):
		return "NoDataAtOrBeforeDate"
	case errors.Is(err, ErrInvalidDateRange):
		return "InvalidDateRange"
	case errors.Is(err, ErrEmptySelection):
		return "EmptySelection"
	default:
		return "ProviderUnavailable"
	}
}
