package metrics

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRatingsSubmittedByDisposition(t *testing.T) {
	before := testutil.ToFloat64(RatingsSubmitted.WithLabelValues("created"))
	RatingsSubmitted.WithLabelValues("created").Inc()
	if got := testutil.ToFloat64(RatingsSubmitted.WithLabelValues("created")); got != before+1 {
		t.Fatalf("created counter = %v, want %v", got, before+1)
	}
}

func TestObserveStore(t *testing.T) {
	ObserveStore("select", "content", time.Now().Add(-10*time.Millisecond))
	if n := testutil.CollectAndCount(StoreOperationDuration, "content_ratings_store_operation_duration_seconds"); n == 0 {
		t.Fatalf("expected at least one histogram series")
	}
}

func TestRegisterPoolStatsNilStat(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterPoolStats(reg, func() *pgxpool.Stat { return nil }); err != nil {
		t.Fatalf("RegisterPoolStats: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("got %d metric families, want 3", len(families))
	}
	for _, f := range families {
		if v := f.GetMetric()[0].GetGauge().GetValue(); v != 0 {
			t.Fatalf("%s = %v, want 0 without a pool", f.GetName(), v)
		}
	}
}
