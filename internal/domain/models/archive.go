package models

import "time"

// ObservationBatch is one successful provider fetch, as handed to the archive.
type ObservationBatch struct {
	SeriesID     string        `json:"series_id"`
	FetchedAt    time.Time     `json:"fetched_at"`
	Observations []Observation `json:"observations"`
}

// Validate reports whether the batch is worth archiving.
func (b *ObservationBatch) Validate() bool {
	return b != nil && b.SeriesID != "" && len(b.Observations) > 0
}
