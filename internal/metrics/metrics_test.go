package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMemoryCounter(t *testing.T) {
	m := NewMemory()

	m.CounterInc(ScanFilesTotal.Name, "status", "clean")
	m.CounterInc(ScanFilesTotal.Name, "status", "clean")
	m.CounterAdd(ScanFilesTotal.Name, 3, "status", "threat")

	if got := m.Counter(ScanFilesTotal.Name, "status", "clean"); got != 2 {
		t.Errorf("Counter(clean) = %v, want 2", got)
	}
	if got := m.Counter(ScanFilesTotal.Name, "status", "threat"); got != 3 {
		t.Errorf("Counter(threat) = %v, want 3", got)
	}
	if got := m.Counter(ScanFilesTotal.Name, "status", "error"); got != 0 {
		t.Errorf("Counter(error) = %v, want 0", got)
	}
}

func TestMemoryGauge(t *testing.T) {
	m := NewMemory()

	m.GaugeSet(QuarantineItems.Name, 4)
	m.GaugeSet(QuarantineItems.Name, 2)

	if got := m.Gauge(QuarantineItems.Name); got != 2 {
		t.Errorf("Gauge() = %v, want 2", got)
	}
}

func TestMemoryHistogram(t *testing.T) {
	m := NewMemory()

	m.HistogramObserve(ScanDuration.Name, 0.5)
	m.HistogramObserve(ScanDuration.Name, 1.5)

	obs := m.Observations(ScanDuration.Name)
	if len(obs) != 2 {
		t.Fatalf("Observations() returned %d values, want 2", len(obs))
	}
	if obs[0] != 0.5 || obs[1] != 1.5 {
		t.Errorf("Observations() = %v, want [0.5 1.5]", obs)
	}
}

func TestPrometheusExposition(t *testing.T) {
	p := NewPrometheus()

	p.CounterInc(ScanThreatsTotal.Name, "level", "HIGH", "method", "signature")
	p.GaugeSet(MonitorQueueDepth.Name, 7)
	p.HistogramObserve(ScanDuration.Name, 0.3)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`sentry_scan_threats_total{level="HIGH",method="signature"} 1`,
		`sentry_monitor_queue_depth 7`,
		`sentry_scan_duration_seconds_count 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestPrometheusRegisterTwice(t *testing.T) {
	p := NewPrometheus()

	// Re-registering a default must not panic the registry.
	p.Register(ScanFilesTotal)
	p.CounterInc(ScanFilesTotal.Name, "status", "clean")
}

func TestCollectorUnknownMetric(t *testing.T) {
	p := NewPrometheus()

	// Updates to unregistered names are dropped, not panicked on.
	p.CounterInc("sentry_unknown_total")
	p.GaugeSet("sentry_unknown", 1)
	p.HistogramObserve("sentry_unknown_seconds", 1)
}
