package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/api/v1/warehouse", "200", 25*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/warehouse", "200", 30*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("get", "/api/v1/warehouse", "200")); got != 2 {
		t.Fatalf("expected 2 requests recorded, got %v", got)
	}
}

func TestHTTPMetricsNilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/", "200", time.Millisecond)

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("GET", "/", "200", time.Millisecond)
}

func TestOutboxMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)

	m.IncPublished()
	m.IncPublished()
	m.IncFailed()
	m.IncTerminal()
	m.ObservePublish(10 * time.Millisecond)

	if got := testutil.ToFloat64(m.published); got != 2 {
		t.Fatalf("expected 2 published, got %v", got)
	}
	if got := testutil.ToFloat64(m.failed); got != 1 {
		t.Fatalf("expected 1 failed, got %v", got)
	}
	if got := testutil.ToFloat64(m.terminal); got != 1 {
		t.Fatalf("expected 1 terminal, got %v", got)
	}
}
