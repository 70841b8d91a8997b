package implementation

import (
	"context"

	"github.com/jt828/promtext/pkg/observability"
)

type Config struct {
	ServiceName  string
	Namespace    string
	OTLPEndpoint string
	LogLevel     string
}

func NewObservability(ctx context.Context, cfg Config) (observability.Observability, error) {
	log, err := NewZapLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	meter := NewPrometheusMeter(cfg.Namespace)

	tracer, shutdown, err := NewOtelTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	return &observabilityImplementation{
		log:        log.With(observability.String("service", cfg.ServiceName)),
		meter:      meter,
		tracer:     tracer,
		traceClose: shutdown,
	}, nil
}
