// Package telemetry wires slog to an OTLP log exporter when one is
// configured, so the bot's logs land wherever the collector points.
package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Setup installs the default slog logger. With OTEL_EXPORTER_OTLP_ENDPOINT
// set it bridges through otelslog to an OTLP HTTP exporter; otherwise logs
// go to stderr. The returned shutdown flushes buffered records.
func Setup(ctx context.Context, service string) (func(context.Context) error, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	slog.SetDefault(otelslog.NewLogger(service, otelslog.WithLoggerProvider(provider)))
	return provider.Shutdown, nil
}
