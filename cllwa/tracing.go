package cllwa

import (
	"context"
	"net/http"
	"os"
	"slices"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

const (
	exporterStdout  = "stdout"
	exporterXrayUDP = "xrayudp"
)

// NewTracerProvider creates the tracer provider for the configured exporter and
// flushes it when the app stops. OTEL_SDK_DISABLED=true yields a no-op provider.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	if os.Getenv("OTEL_SDK_DISABLED") == "true" {
		return noop.NewTracerProvider(), nil
	}

	ctx := context.Background()
	exporter, err := newExporter(ctx, env.otelExporter())
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx, env.otelExporter(), env.serviceName())
	if err != nil {
		return nil, err
	}

	// Lambda may freeze the container between invocations, so spans are exported
	// synchronously instead of batched.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
		sdktrace.WithIDGenerator(xray.NewIDGenerator()),
	)

	lc.Append(fx.Hook{OnStop: tp.Shutdown})

	return tp, nil
}

// NewPropagator returns the X-Ray propagator combined with W3C trace context.
func NewPropagator(env Environment) propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		xray.Propagator{},
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newExporter(ctx context.Context, typ string) (sdktrace.SpanExporter, error) {
	switch typ {
	case exporterStdout, "":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case exporterXrayUDP:
		exp, err := xrayudp.NewSpanExporter(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "create xrayudp exporter")
		}
		return exp, nil
	default:
		return nil, errors.Newf("unsupported CLS_OTEL_EXPORTER: %q (supported: stdout, xrayudp)", typ)
	}
}

func newResource(ctx context.Context, typ, serviceName string) (*resource.Resource, error) {
	base := resource.NewSchemaless(attribute.String("service.name", serviceName))
	if typ != exporterXrayUDP {
		return base, nil
	}

	detected, err := lambda.NewResourceDetector().Detect(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "detect lambda resource")
	}
	res, err := resource.Merge(detected, base)
	if err != nil {
		return nil, errors.Wrap(err, "merge resources")
	}
	return res, nil
}

// withTracing wraps a handler with otelhttp server instrumentation. Requests to
// excludePaths, such as the LWA readiness check, are not traced.
func withTracing(
	tp trace.TracerProvider, prop propagation.TextMapPropagator, serviceName string, excludePaths ...string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(prop),
			otelhttp.WithFilter(func(r *http.Request) bool {
				return !slices.Contains(excludePaths, r.URL.Path)
			}),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
