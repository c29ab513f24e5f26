package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches  *prometheus.CounterVec
	omitted  *prometheus.CounterVec
	memo     *prometheus.CounterVec
	archived *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New registers the recorder's collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yielddesk_series_fetches_total",
				Help: "Series fetches from the macro data provider by outcome",
			},
			[]string{"series_id", "outcome"},
		),
		omitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yielddesk_series_omitted_total",
				Help: "Requested series left out of a result, by reason",
			},
			[]string{"reason"},
		),
		memo: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yielddesk_memo_lookups_total",
				Help: "Memo lookups by operation and result",
			},
			[]string{"operation", "result"},
		),
		archived: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yielddesk_observations_archived_total",
				Help: "Observations written to the archive backend",
			},
			[]string{"backend"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yielddesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yielddesk_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordFetch(seriesID, outcome string) {
	r.fetches.WithLabelValues(seriesID, outcome).Inc()
}

func (r *Recorder) RecordOmitted(reason string) {
	r.omitted.WithLabelValues(reason).Inc()
}

// RecordMemo counts a memo lookup as a hit or a miss.
func (r *Recorder) RecordMemo(op string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.memo.WithLabelValues(op, result).Inc()
}

func (r *Recorder) RecordArchived(backend string, n int) {
	r.archived.WithLabelValues(backend).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordFetch(string, string)    {}
func (Nop) RecordOmitted(string)          {}
func (Nop) RecordMemo(string, bool)       {}
func (Nop) RecordArchived(string, int)    {}
func (Nop) RecordError(string)            {}
func (Nop) RecordLatency(string, float64) {}
