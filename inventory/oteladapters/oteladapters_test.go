package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	lognoop "go.opentelemetry.io/otel/log/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
	"github.com/AntonStoeckl/room-inventory-go/inventory/oteladapters"
)

func newMeter() (*sdkmetric.ManualReader, *oteladapters.MetricsCollector) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return reader, oteladapters.NewMetricsCollector(provider.Meter("test"))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func findMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Aggregation {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return nil
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) && attr.Value.AsString() == expectedValue {
			return
		}
	}

	assert.Failf(t, "missing span attribute", "%s=%s", key, expectedValue)
}

func Test_MetricsCollector_RecordDuration_InSeconds(t *testing.T) {
	// arrange
	reader, collector := newMeter()

	// act
	collector.RecordDuration(inventory.MetricBookDuration, 150*time.Millisecond, map[string]string{"status": "success"})

	// assert
	histogram, ok := findMetric(t, collect(t, reader), inventory.MetricBookDuration).(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expectedAttrs := attribute.NewSet(attribute.String("status", "success"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter_AddsUp(t *testing.T) {
	// arrange
	reader, collector := newMeter()
	labels := map[string]string{"status": "no_units_left"}

	// act
	collector.IncrementCounter(inventory.MetricBookCalls, labels)
	collector.IncrementCounterContext(context.Background(), inventory.MetricBookCalls, labels)

	// assert
	sum, ok := findMetric(t, collect(t, reader), inventory.MetricBookCalls).(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue_KeepsLastValue(t *testing.T) {
	// arrange
	reader, collector := newMeter()
	labels := map[string]string{"room_id": "101"}

	// act
	collector.RecordValue(inventory.MetricAvailableUnits, 5, labels)
	collector.RecordValueContext(context.Background(), inventory.MetricAvailableUnits, 4, labels)

	// assert
	gauge, ok := findMetric(t, collect(t, reader), inventory.MetricAvailableUnits).(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, float64(4), gauge.DataPoints[0].Value)
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

	// act
	_, span := collector.StartSpan(context.Background(), inventory.SpanNameBook, map[string]string{"room.id": "101"})
	span.AddAttribute("booking.guest", "Guest 1")
	collector.FinishSpan(span, inventory.StatusSuccess, map[string]string{"booking.attempts": "1"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, inventory.SpanNameBook, spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "room.id", "101")
	assertSpanHasAttribute(t, spans[0], "booking.guest", "Guest 1")
	assertSpanHasAttribute(t, spans[0], "booking.attempts", "1")
}

func Test_TracingCollector_MapsStatuses(t *testing.T) {
	testCases := []struct {
		status string
		code   codes.Code
	}{
		{status: inventory.StatusError, code: codes.Error},
		{status: inventory.StatusCanceled, code: codes.Error},
		{status: inventory.StatusBusy, code: codes.Error},
		{status: "something_else", code: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			exporter := tracetest.NewInMemoryExporter()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
			collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

			// act
			_, span := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.code, spans[0].Status.Code)
		})
	}
}

func Test_Inventory_WithOTelAdapters_RecordsSpansAndMetrics(t *testing.T) {
	// arrange
	reader, metrics := newMeter()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	inv, err := inventory.NewInventory(
		inventory.WithMetrics(metrics),
		inventory.WithTracing(oteladapters.NewTracingCollector(provider.Tracer("inventory"))),
	)
	require.NoError(t, err)
	require.NoError(t, inv.Initialize(inventory.DefaultSeed()))

	// act
	require.NoError(t, inv.TryBook(context.Background(), 103, "Guest 3"))

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, inventory.SpanNameBook, spans[0].Name)
	assertSpanHasAttribute(t, spans[0], "room.id", "103")

	resourceMetrics := collect(t, reader)
	_, ok := findMetric(t, resourceMetrics, inventory.MetricBookCalls).(metricdata.Sum[int64])
	assert.True(t, ok)
	_, ok = findMetric(t, resourceMetrics, inventory.MetricAvailableUnits).(metricdata.Gauge[float64])
	assert.True(t, ok)
}

func Test_SlogBridgeLogger_WithHandler_LogsAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.Error("error message", "room_id", "101")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, `"room_id":"101"`)
}

func Test_SlogBridgeLogger_WithProvider_DoesNotPanic(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("inventory", lognoop.NewLoggerProvider())

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "room released", "room_id", "101")
		logger.Warn("room not found", "room_id", "999")
	})
}

func Test_OTelLogger_EmitsWithOddArguments(t *testing.T) {
	logger := oteladapters.NewOTelLogger(lognoop.NewLoggerProvider().Logger("inventory"))

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "booking succeeded", "room_id", 101, "dangling")
		logger.ErrorContext(context.Background(), "booking canceled", 42, "not a key")
	})
}
