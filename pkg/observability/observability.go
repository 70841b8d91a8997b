package observability

import (
	"context"
	"net/http"
)

type Observability interface {
	Logger() Logger
	Meter() Meter
	Tracer() Tracer
	// Handler serves the exporter's own metrics.
	Handler() http.Handler
	Close(ctx context.Context) error
}
