package implementation

import (
	"errors"
	"net/http"
	"time"

	"github.com/jt828/promtext/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// prometheusMeter backs the exporter's self-metrics with client_golang. It is
// kept apart from the rendered exposition so the two never share names.
type prometheusMeter struct {
	namespace string
	registry  *prometheus.Registry
}

func NewPrometheusMeter(namespace string) observability.Meter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &prometheusMeter{
		namespace: namespace,
		registry:  reg,
	}
}

func (m *prometheusMeter) Registry() *prometheus.Registry {
	return m.registry
}

func (m *prometheusMeter) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func PromRegistry(m observability.Meter) *prometheus.Registry {
	if pm, ok := m.(*prometheusMeter); ok {
		return pm.Registry()
	}
	return nil
}

// register returns the collector already registered under the same
// descriptor, so asking twice for one instrument is harmless.
func register[C prometheus.Collector](reg *prometheus.Registry, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

type promCounter struct {
	vec *prometheus.CounterVec
}

func (m *prometheusMeter) Counter(name string, opts ...observability.MetricOpt) observability.Counter {
	opt := firstOpt(opts)

	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Name:        name,
			Help:        opt.Help,
			ConstLabels: toPromLabels(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	return &promCounter{vec: register(m.registry, vec)}
}

func (c *promCounter) Inc(v float64, labels ...observability.Label) {
	c.vec.With(toPromLabels(labels)).Add(v)
}

type promHistogram struct {
	vec *prometheus.HistogramVec
}

func (m *prometheusMeter) Histogram(name string, opts ...observability.MetricOpt) observability.Histogram {
	return &promHistogram{vec: m.histogramVec(name, firstOpt(opts))}
}

func (m *prometheusMeter) histogramVec(name string, opt observability.MetricOpt) *prometheus.HistogramVec {
	buckets := opt.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Name:        name,
			Help:        opt.Help,
			Buckets:     buckets,
			ConstLabels: toPromLabels(opt.ConstLabels),
		},
		opt.LabelKeys,
	)
	return register(m.registry, vec)
}

func (h *promHistogram) Observe(v float64, labels ...observability.Label) {
	h.vec.With(toPromLabels(labels)).Observe(v)
}

type promGauge struct {
	vec *prometheus.GaugeVec
}

func (m *prometheusMeter) Gauge(name string, opts ...observability.MetricOpt) observability.Gauge {
	opt := firstOpt(opts)

	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Name:        name,
			Help:        opt.Help,
			ConstLabels: toPromLabels(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	return &promGauge{vec: register(m.registry, vec)}
}

func (g *promGauge) Set(v float64, labels ...observability.Label) {
	g.vec.With(toPromLabels(labels)).Set(v)
}

func (g *promGauge) Add(v float64, labels ...observability.Label) {
	g.vec.With(toPromLabels(labels)).Add(v)
}

type promTimer struct {
	vec *prometheus.HistogramVec
}

func (m *prometheusMeter) Timer(name string, opts ...observability.MetricOpt) observability.Timer {
	return &promTimer{vec: m.histogramVec(name, firstOpt(opts))}
}

func (t *promTimer) Start(labels ...observability.Label) func() {
	start := time.Now()
	observer := t.vec.With(toPromLabels(labels))
	return func() {
		observer.Observe(time.Since(start).Seconds())
	}
}

func firstOpt(opts []observability.MetricOpt) observability.MetricOpt {
	if len(opts) == 0 {
		return observability.MetricOpt{}
	}
	return opts[0]
}

func toPromLabels(labels []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(labels))
	for _, l := range labels {
		m[l.Key] = l.Value
	}
	return m
}
