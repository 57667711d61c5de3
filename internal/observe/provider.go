package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig configures the OpenTelemetry metrics SDK.
type ProviderConfig struct {
	// ServiceName is the service name reported in telemetry. Default: "pathql".
	ServiceName string

	// ServiceVersion is the service version reported in telemetry.
	ServiceVersion string

	// Reader is the metric reader exporters pull from or push through. When
	// nil, a ManualReader is used — suitable for tests and for deployments
	// that scrape via a pull-based bridge registered separately.
	Reader sdkmetric.Reader
}

// InitProvider builds a MeterProvider from cfg and registers it as the
// global OTel meter provider. Returns the reader (for tests that want to
// call Collect directly) and a shutdown function to call from main's defer.
func InitProvider(cfg ProviderConfig) (reader sdkmetric.Reader, shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "pathql"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	reader = cfg.Reader
	if reader == nil {
		reader = sdkmetric.NewManualReader()
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	return reader, mp.Shutdown, nil
}
