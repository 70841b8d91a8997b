package implementation

import (
	"context"
	"net/http"

	"github.com/jt828/promtext/pkg/observability"
)

type observabilityImplementation struct {
	log    observability.Logger
	meter  observability.Meter
	tracer observability.Tracer

	traceClose func(context.Context) error
}

func (o *observabilityImplementation) Close(ctx context.Context) error {
	var err error
	if o.traceClose != nil {
		err = o.traceClose(ctx)
	}
	if zl, ok := o.log.(*zapLogger); ok {
		// Sync on a terminal stderr reports ENOTTY; nothing is lost.
		_ = zl.sync()
	}
	return err
}

func (o *observabilityImplementation) Handler() http.Handler {
	if pm, ok := o.meter.(*prometheusMeter); ok {
		return pm.Handler()
	}
	return http.NotFoundHandler()
}

func (o *observabilityImplementation) Logger() observability.Logger { return o.log }
func (o *observabilityImplementation) Meter() observability.Meter   { return o.meter }
func (o *observabilityImplementation) Tracer() observability.Tracer { return o.tracer }

