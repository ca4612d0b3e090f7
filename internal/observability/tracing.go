// -*- tab-width:2 -*-

package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ll "github.com/jayalane/go-lll"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	// TracerName is the instrumentation scope for simulation spans.
	TracerName = "github.com/jayalane/go-netlat"

	defaultOTLPEndpoint = "localhost:4317"
	shutdownTimeout     = 5 * time.Second
)

// TracingConfig says where, if anywhere, phase spans go.
type TracingConfig struct {
	Exporter    string // off | stdout | otlp
	Endpoint    string // used when Exporter == otlp
	ServiceName string
	Writer      io.Writer // used when Exporter == stdout; os.Stdout if nil
}

// InitTracing installs a global tracer provider for cfg and returns a
// function that flushes and stops it.
func InitTracing(ctx context.Context, cfg TracingConfig, log *ll.Lll) (func(context.Context) error, error) {
	exporter := strings.ToLower(cfg.Exporter)
	if exporter == "" || exporter == "off" || exporter == "none" {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.TraceContext{})
		if log != nil {
			log.Ls("tracing disabled")
		}
		return func(context.Context) error { return nil }, nil
	}

	exp, err := exporterFromConfig(ctx, exporter, cfg)
	if err != nil {
		return nil, err
	}

	service := cfg.ServiceName
	if service == "" {
		service = "netlat"
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			attribute.String("service.name", service),
			attribute.String("service.namespace", "netlat"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	if log != nil {
		log.La("tracing enabled, exporter", exporter, "service", service)
	}

	return tp.Shutdown, nil
}

func exporterFromConfig(ctx context.Context, exporter string, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch exporter {
	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithoutTimestamps(),
		)
	case "otlp", "otlpgrpc":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
		return otlptrace.New(ctx, client)
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}
}

// ShutdownWithTimeout runs shutdown with a bounded deadline and only
// logs a failure.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log *ll.Lll) {
	if shutdown == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := shutdown(ctx); err != nil && log != nil {
		log.La("tracing shutdown failed", err)
	}
}
