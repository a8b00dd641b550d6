package metrics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/reoring/parseas"
	"github.com/reoring/parseas/metrics"
)

func TestCacheCollector(t *testing.T) {
	ctx := context.Background()
	c := parseas.MustNewCache(1)
	with := parseas.WithCache(c)

	// miss, hit, miss + eviction
	if _, err := parseas.ValidateAs[int](ctx, "1", with); err != nil {
		t.Fatal(err)
	}
	if _, err := parseas.ValidateAs[int](ctx, 2, with); err != nil {
		t.Fatal(err)
	}
	if _, err := parseas.ValidateAs[string](ctx, "x", with); err != nil {
		t.Fatal(err)
	}

	col := metrics.NewCacheCollector(c, "parseas")
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(col); err != nil {
		t.Fatal(err)
	}

	want := `
# HELP parseas_schema_cache_capacity Maximum number of cached wrapper schemas.
# TYPE parseas_schema_cache_capacity gauge
parseas_schema_cache_capacity 1
# HELP parseas_schema_cache_entries Wrapper schemas currently cached.
# TYPE parseas_schema_cache_entries gauge
parseas_schema_cache_entries 1
# HELP parseas_schema_cache_evictions_total Wrapper schemas evicted for capacity.
# TYPE parseas_schema_cache_evictions_total counter
parseas_schema_cache_evictions_total 1
# HELP parseas_schema_cache_hits_total Wrapper schema cache hits.
# TYPE parseas_schema_cache_hits_total counter
parseas_schema_cache_hits_total 1
# HELP parseas_schema_cache_misses_total Wrapper schema cache misses (schema synthesized).
# TYPE parseas_schema_cache_misses_total counter
parseas_schema_cache_misses_total 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want)); err != nil {
		t.Fatal(err)
	}
}

func TestCacheCollector_DefaultCache(t *testing.T) {
	col := metrics.NewCacheCollector(nil, "")
	if n := testutil.CollectAndCount(col); n != 5 {
		t.Fatalf("expected 5 metrics, got %d", n)
	}
}
