package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordFetch("DGS10", "ok")
	r.RecordFetch("DGS10", "ok")
	r.RecordOmitted("ProviderUnavailable")
	r.RecordMemo("history", true)
	r.RecordMemo("history", false)
	r.RecordArchived("kafka", 5)

	if got := testutil.ToFloat64(r.fetches.WithLabelValues("DGS10", "ok")); got != 2 {
		t.Fatalf("fetches = %v want 2", got)
	}
	if got := testutil.ToFloat64(r.omitted.WithLabelValues("ProviderUnavailable")); got != 1 {
		t.Fatalf("omitted = %v want 1", got)
	}
	if got := testutil.ToFloat64(r.memo.WithLabelValues("history", "hit")); got != 1 {
		t.Fatalf("memo hits = %v want 1", got)
	}
	if got := testutil.ToFloat64(r.archived.WithLabelValues("kafka")); got != 5 {
		t.Fatalf("archived = %v want 5", got)
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
