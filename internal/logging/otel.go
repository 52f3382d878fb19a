package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const DefaultServiceName = "indexschema"

type OTelConfig struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// OTelDisabled reports whether INDEXSCHEMA_OTEL_DISABLED is set to 1.
func OTelDisabled() bool {
	return strings.TrimSpace(os.Getenv("INDEXSCHEMA_OTEL_DISABLED")) == "1"
}

// InitOTel installs a global tracer provider exporting over OTLP/HTTP. The returned func
// flushes and stops it.
func InitOTel(ctx context.Context, cfg OTelConfig) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "127.0.0.1:4318"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	// CLI runs usually have no collector around.
	if OTelDisabled() {
		return func(context.Context) error { return nil }, nil
	}

	if v := strings.TrimSpace(os.Getenv("INDEXSCHEMA_OTEL_ENDPOINT")); v != "" {
		cfg.Endpoint = v
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithTimeout(5 * time.Second),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
	)
	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
