package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/jt828/promtext/pkg/exposition"
	"github.com/jt828/promtext/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ScrapeHandler serves a rendered exposition. The body is rendered into a
// pooled buffer first so a failed render answers 500 instead of a truncated
// 200.
type ScrapeHandler struct {
	source io.WriterTo
	log    observability.Logger
	tracer observability.Tracer

	scrapes  observability.Counter
	failures observability.Counter
	duration observability.Timer
	size     observability.Histogram
	inFlight observability.Gauge

	buffers sync.Pool
}

func NewScrapeHandler(source io.WriterTo, obs observability.Observability) *ScrapeHandler {
	meter := obs.Meter()
	return &ScrapeHandler{
		source: source,
		log:    obs.Logger().With(observability.String("component", "scrape")),
		tracer: obs.Tracer(),
		scrapes: meter.Counter("scrapes_total", observability.MetricOpt{
			Help:      "Scrape requests served, by HTTP status code",
			LabelKeys: []string{"code"},
		}),
		failures: meter.Counter("render_failures_total", observability.MetricOpt{
			Help: "Renders that failed before the response was written",
		}),
		duration: meter.Timer("render_duration_seconds", observability.MetricOpt{
			Help:    "Time spent rendering the exposition",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		size: meter.Histogram("render_size_bytes", observability.MetricOpt{
			Help:    "Size of the rendered exposition",
			Buckets: exposition.ExponentialBucketBounds(256, 4, 8),
		}),
		inFlight: meter.Gauge("scrapes_in_flight", observability.MetricOpt{
			Help: "Scrapes currently rendering",
		}),
		buffers: sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
}

func (h *ScrapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		h.reply(w, http.StatusMethodNotAllowed, nil)
		return
	}

	h.inFlight.Add(1)
	defer h.inFlight.Add(-1)

	_, span := h.tracer.Start(r.Context(), "exposition.render")
	defer span.End()

	buf := h.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.buffers.Put(buf)

	stop := h.duration.Start()
	n, err := h.source.WriteTo(buf)
	stop()
	if err != nil {
		span.RecordError(err)
		h.failures.Inc(1)
		h.log.Error("render exposition", observability.Err(err))
		h.reply(w, http.StatusInternalServerError, nil)
		return
	}
	span.SetAttributes(observability.Int64("exposition.bytes", n))
	h.size.Observe(float64(n))

	w.Header().Set("Content-Type", exposition.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.Method == http.MethodHead {
		h.reply(w, http.StatusOK, nil)
		return
	}
	h.reply(w, http.StatusOK, buf.Bytes())
}

func (h *ScrapeHandler) reply(w http.ResponseWriter, code int, body []byte) {
	h.scrapes.Inc(1, observability.Label{Key: "code", Value: strconv.Itoa(code)})
	if body == nil {
		if code != http.StatusOK {
			http.Error(w, http.StatusText(code), code)
			return
		}
		w.WriteHeader(code)
		return
	}
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		h.log.Warn("write scrape response", observability.Err(err))
	}
}

// Routes mounts the scrape handler, the exporter's own metrics and a health
// probe. Both metric endpoints are wrapped in otelhttp spans.
func Routes(metricsPath, selfMetricsPath string, scrape http.Handler, self http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, otelhttp.NewHandler(scrape, "scrape"))
	mux.Handle(selfMetricsPath, otelhttp.NewHandler(self, "self-scrape"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}
