package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus is a Collector backed by a dedicated Prometheus registry.
type Prometheus struct {
	registry *prometheus.Registry

	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheus creates a collector with every metric in Defaults()
// pre-registered.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
	for _, def := range Defaults() {
		p.Register(def)
	}
	return p
}

// Register adds a metric to the registry. Registering the same name twice is
// a no-op.
func (p *Prometheus) Register(def Definition) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch def.Type {
	case TypeCounter:
		if _, ok := p.counters[def.Name]; ok {
			return
		}
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: def.Name,
			Help: def.Help,
		}, def.Labels)
		p.registry.MustRegister(vec)
		p.counters[def.Name] = vec
	case TypeGauge:
		if _, ok := p.gauges[def.Name]; ok {
			return
		}
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: def.Name,
			Help: def.Help,
		}, def.Labels)
		p.registry.MustRegister(vec)
		p.gauges[def.Name] = vec
	case TypeHistogram:
		if _, ok := p.histograms[def.Name]; ok {
			return
		}
		buckets := def.Buckets
		if len(buckets) == 0 {
			buckets = prometheus.DefBuckets
		}
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    def.Name,
			Help:    def.Help,
			Buckets: buckets,
		}, def.Labels)
		p.registry.MustRegister(vec)
		p.histograms[def.Name] = vec
	}
}

func (p *Prometheus) CounterInc(name string, labels ...string) {
	p.CounterAdd(name, 1, labels...)
}

func (p *Prometheus) CounterAdd(name string, value float64, labels ...string) {
	p.mu.RLock()
	vec, ok := p.counters[name]
	p.mu.RUnlock()
	if ok {
		vec.WithLabelValues(labelValues(labels)...).Add(value)
	}
}

func (p *Prometheus) GaugeSet(name string, value float64, labels ...string) {
	p.mu.RLock()
	vec, ok := p.gauges[name]
	p.mu.RUnlock()
	if ok {
		vec.WithLabelValues(labelValues(labels)...).Set(value)
	}
}

func (p *Prometheus) HistogramObserve(name string, value float64, labels ...string) {
	p.mu.RLock()
	vec, ok := p.histograms[name]
	p.mu.RUnlock()
	if ok {
		vec.WithLabelValues(labelValues(labels)...).Observe(value)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// labelValues extracts the values from name/value pairs.
func labelValues(labels []string) []string {
	values := make([]string, 0, len(labels)/2)
	for i := 1; i < len(labels); i += 2 {
		values = append(values, labels[i])
	}
	return values
}

var _ Collector = (*Prometheus)(nil)
