package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
	"github.com/AntonStoeckl/room-inventory-go/inventory/oteladapters"
	"github.com/AntonStoeckl/room-inventory-go/inventory/promadapters"
	"github.com/AntonStoeckl/room-inventory-go/inventory/zerologadapters"
)

const (
	serviceName            = "booking-simulation"
	metricsPath            = "/metrics"
	goMetricsPrefix        = "go_"
	readHeaderTimeout      = 5 * time.Second
	logMsgMetricsServed    = "serving prometheus metrics"
	logMsgMetricsServeFail = "prometheus metrics server failed"
	logMsgMetricsSummary   = "collected metrics"
)

// Logger is what the simulation needs from a log backend: plain calls for the seed loader
// and contextual calls for the inventory and the coordinator.
type Logger interface {
	inventory.Logger
	inventory.ContextualLogger
}

// Observability holds the adapters handed to the inventory and the coordinator.
// Metrics and Tracing are nil when the backend is "none".
type Observability struct {
	Logger  Logger
	Metrics inventory.MetricsCollector
	Tracing inventory.TracingCollector

	report   func(ctx context.Context)
	shutdown []func(ctx context.Context) error
}

func newLogger(backend string) Logger {
	if backend == "zerolog" {
		return zerologadapters.NewLogger(zerolog.New(os.Stdout).With().Timestamp().Logger())
	}

	return oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(os.Stdout, nil))
}

func newObservability(cfg Config) *Observability {
	obs := &Observability{Logger: newLogger(cfg.LogBackend)}

	switch cfg.Observability {
	case "otel":
		obs.setUpOTel()
	case "prometheus":
		obs.setUpPrometheus(cfg.MetricsAddr)
	}

	return obs
}

func (o *Observability) setUpOTel() {
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res))
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithResource(res))

	o.Metrics = oteladapters.NewMetricsCollector(meterProvider.Meter(serviceName))
	o.Tracing = oteladapters.NewTracingCollector(tracerProvider.Tracer(serviceName))
	o.shutdown = append(o.shutdown, tracerProvider.Shutdown, meterProvider.Shutdown)
	o.report = func(ctx context.Context) {
		var rm metricdata.ResourceMetrics
		if collectErr := reader.Collect(ctx, &rm); collectErr != nil {
			o.Logger.WarnContext(ctx, logMsgMetricsSummary, "error", collectErr.Error())
			return
		}

		for _, scope := range rm.ScopeMetrics {
			for _, m := range scope.Metrics {
				o.Logger.InfoContext(ctx, logMsgMetricsSummary, "backend", "otel", "metric", m.Name)
			}
		}
	}
}

func (o *Observability) setUpPrometheus(addr string) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	o.Metrics = promadapters.NewMetricsCollector(registry)
	o.report = func(ctx context.Context) {
		families, err := registry.Gather()
		if err != nil {
			o.Logger.WarnContext(ctx, logMsgMetricsSummary, "error", err.Error())
			return
		}

		for _, family := range families {
			if strings.HasPrefix(family.GetName(), goMetricsPrefix) {
				continue
			}

			o.Logger.InfoContext(ctx, logMsgMetricsSummary,
				"backend", "prometheus",
				"metric", family.GetName(),
				"type", family.GetType().String(),
				"series", len(family.GetMetric()))
		}
	}

	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		o.Logger.Info(logMsgMetricsServed, "addr", addr, "path", metricsPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.Logger.Error(logMsgMetricsServeFail, "error", err.Error())
		}
	}()

	o.shutdown = append(o.shutdown, server.Shutdown)
}

// Report logs which metrics the backend collected.
func (o *Observability) Report(ctx context.Context) {
	if o.report != nil {
		o.report(ctx)
	}
}

// Shutdown flushes and stops the providers and the metrics server.
func (o *Observability) Shutdown(ctx context.Context) error {
	var err error
	for _, shutdown := range o.shutdown {
		err = errors.Join(err, shutdown(ctx))
	}

	return err
}
