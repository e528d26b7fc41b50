package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "eventhub/apiclient"

type telemetry struct {
	app     commoncfg.Application
	tracer  trace.Tracer
	counter metric.Int64Counter
	hist    metric.Int64Histogram
}

func newTelemetry(app commoncfg.Application) (*telemetry, error) {
	attrs := otlp.CreateAttributesFrom(app)

	meter := otel.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion(otel.Version()),
		metric.WithInstrumentationAttributes(attrs...),
	)

	counter, err := meter.Int64Counter(
		"http.client.request_count",
		metric.WithDescription("Outgoing request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request_count meter: %w", err)
	}

	hist, err := meter.Int64Histogram(
		"http.client.duration",
		metric.WithDescription("Outgoing end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration meter: %w", err)
	}

	return &telemetry{
		app:     app,
		tracer:  otel.Tracer(instrumentationName, trace.WithInstrumentationAttributes(attrs...)),
		counter: counter,
		hist:    hist,
	}, nil
}

// start opens a span for req and injects its context into the headers.
func (t *telemetry) start(ctx context.Context, req *http.Request, operation string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, operation, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String(commoncfg.AttrOperation, operation),
		),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return ctx, span
}

func (t *telemetry) record(ctx context.Context, operation string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		otlp.CreateAttributesFrom(t.app,
			attribute.String(commoncfg.AttrOperation, operation),
			attribute.Int("http.response.status_code", status),
		)...,
	)

	t.counter.Add(ctx, 1, attrs)
	t.hist.Record(ctx, elapsed.Milliseconds(), attrs)
}
