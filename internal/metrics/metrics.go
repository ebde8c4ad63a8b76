// Package metrics collects operational counters for the scanner, the
// quarantine store and the realtime monitor. Everything is local: nothing is
// exported unless the caller serves the Prometheus handler.
package metrics

import (
	"net/http"
	"sync"
)

// Collector receives metric updates from the core components. Labels are
// passed as name/value pairs, e.g. CounterInc(ScanFilesTotal.Name, "status",
// "clean").
type Collector interface {
	CounterInc(name string, labels ...string)
	CounterAdd(name string, value float64, labels ...string)
	GaugeSet(name string, value float64, labels ...string)
	HistogramObserve(name string, value float64, labels ...string)

	// Handler serves the collected metrics over HTTP.
	Handler() http.Handler
}

// Type names a metric kind.
type Type string

const (
	TypeCounter   Type = "counter"
	TypeGauge     Type = "gauge"
	TypeHistogram Type = "histogram"
)

// Definition describes one metric and its labels.
type Definition struct {
	Name    string
	Type    Type
	Help    string
	Labels  []string
	Buckets []float64
}

// Metrics recorded by the core components.
var (
	ScanFilesTotal = Definition{
		Name:   "sentry_scan_files_total",
		Type:   TypeCounter,
		Help:   "Files processed by batch scans",
		Labels: []string{"status"},
	}
	ScanThreatsTotal = Definition{
		Name:   "sentry_scan_threats_total",
		Type:   TypeCounter,
		Help:   "Threats found by batch scans",
		Labels: []string{"level", "method"},
	}
	ScanDuration = Definition{
		Name:    "sentry_scan_duration_seconds",
		Type:    TypeHistogram,
		Help:    "Wall-clock duration of batch scans",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
	}
	QuarantineOpsTotal = Definition{
		Name:   "sentry_quarantine_operations_total",
		Type:   TypeCounter,
		Help:   "Quarantine store operations",
		Labels: []string{"operation", "outcome"},
	}
	QuarantineItems = Definition{
		Name: "sentry_quarantine_items",
		Type: TypeGauge,
		Help: "Items currently held in quarantine",
	}
	MonitorEventsTotal = Definition{
		Name:   "sentry_monitor_events_total",
		Type:   TypeCounter,
		Help:   "File-system events handled by the realtime monitor",
		Labels: []string{"type"},
	}
	MonitorDroppedTotal = Definition{
		Name: "sentry_monitor_dropped_total",
		Type: TypeCounter,
		Help: "Events dropped because the monitor queue was full",
	}
	MonitorQueueDepth = Definition{
		Name: "sentry_monitor_queue_depth",
		Type: TypeGauge,
		Help: "Events waiting in the monitor queue",
	}
)

// Defaults lists every metric the core components record.
func Defaults() []Definition {
	return []Definition{
		ScanFilesTotal,
		ScanThreatsTotal,
		ScanDuration,
		QuarantineOpsTotal,
		QuarantineItems,
		MonitorEventsTotal,
		MonitorDroppedTotal,
		MonitorQueueDepth,
	}
}

// Nop discards all metrics. Components fall back to it when no collector is
// injected.
type Nop struct{}

func (Nop) CounterInc(string, ...string)                {}
func (Nop) CounterAdd(string, float64, ...string)       {}
func (Nop) GaugeSet(string, float64, ...string)         {}
func (Nop) HistogramObserve(string, float64, ...string) {}
func (Nop) Handler() http.Handler                       { return http.NotFoundHandler() }

// Memory keeps metrics in maps. Test helper; not meant for production use.
type Memory struct {
	mu         sync.RWMutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewMemory creates an empty in-memory collector.
func NewMemory() *Memory {
	return &Memory{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func key(name string, labels []string) string {
	for i := 1; i < len(labels); i += 2 {
		name += "," + labels[i-1] + "=" + labels[i]
	}
	return name
}

func (m *Memory) CounterInc(name string, labels ...string) {
	m.CounterAdd(name, 1, labels...)
}

func (m *Memory) CounterAdd(name string, value float64, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key(name, labels)] += value
}

func (m *Memory) GaugeSet(name string, value float64, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[key(name, labels)] = value
}

func (m *Memory) HistogramObserve(name string, value float64, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(name, labels)
	m.histograms[k] = append(m.histograms[k], value)
}

func (m *Memory) Handler() http.Handler { return http.NotFoundHandler() }

// Counter returns the accumulated value of a counter.
func (m *Memory) Counter(name string, labels ...string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[key(name, labels)]
}

// Gauge returns the last value set on a gauge.
func (m *Memory) Gauge(name string, labels ...string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[key(name, labels)]
}

// Observations returns all values recorded on a histogram.
func (m *Memory) Observations(name string, labels ...string) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.histograms[key(name, labels)]
}

var (
	_ Collector = Nop{}
	_ Collector = (*Memory)(nil)
)
