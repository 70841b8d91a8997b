package observability

// Meter creates the exporter's own instruments. These describe the exporter
// process itself (scrapes served, render latency), not the metrics it renders.
type Meter interface {
	Counter(name string, opts ...MetricOpt) Counter
	Histogram(name string, opts ...MetricOpt) Histogram
	Gauge(name string, opts ...MetricOpt) Gauge
	Timer(name string, opts ...MetricOpt) Timer
}

type Counter interface {
	Inc(v float64, labels ...Label)
}

type Histogram interface {
	Observe(v float64, labels ...Label)
}

type Gauge interface {
	Set(v float64, labels ...Label)
	Add(v float64, labels ...Label)
}

// Timer observes the elapsed seconds between Start and the returned stop func.
type Timer interface {
	Start(labels ...Label) func()
}
