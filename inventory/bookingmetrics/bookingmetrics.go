// Package bookingmetrics aggregates the booking events of a Coordinator into counters and a processing timer.
package bookingmetrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
	"github.com/AntonStoeckl/room-inventory-go/inventory/booking"
)

// Metric names forwarded to the optional MetricsCollector.
const (
	MetricSuccessfulBookings = "booking_successful_total"
	MetricFailedBookings     = "booking_failed_total"
	MetricConcurrentBookings = "booking_concurrent_total"
	MetricProcessingDuration = "booking_processing_duration_seconds"
)

// BookingMetrics implements booking.MetricsSink. It is safe for concurrent use.
type BookingMetrics struct {
	successful atomic.Int64
	failed     atomic.Int64
	concurrent atomic.Int64

	mu              sync.Mutex
	processingTotal time.Duration
	samples         int64

	collector inventory.MetricsCollector
	now       func() time.Time
}

var _ booking.MetricsSink = (*BookingMetrics)(nil)

// Option defines a functional option for configuring BookingMetrics.
type Option func(*BookingMetrics) error

// WithMetricsCollector forwards every recorded event to collector, e.g. an OpenTelemetry or Prometheus adapter.
//
// MetricsSink calls carry no context, so forwarding always uses the plain MetricsCollector methods,
// even when collector also implements inventory.ContextualMetricsCollector.
func WithMetricsCollector(collector inventory.MetricsCollector) Option {
	return func(m *BookingMetrics) error {
		m.collector = collector
		return nil
	}
}

// WithClock replaces time.Now as the time source of the processing timer.
func WithClock(now func() time.Time) Option {
	return func(m *BookingMetrics) error {
		m.now = now
		return nil
	}
}

// New creates BookingMetrics with all counters at zero.
func New(options ...Option) (*BookingMetrics, error) {
	m := &BookingMetrics{now: time.Now}

	for _, option := range options {
		if err := option(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordSuccessfulBooking counts one successful booking.
func (m *BookingMetrics) RecordSuccessfulBooking() {
	m.successful.Add(1)
	m.forwardCounter(MetricSuccessfulBookings)
}

// RecordFailedBooking counts one failed booking.
func (m *BookingMetrics) RecordFailedBooking() {
	m.failed.Add(1)
	m.forwardCounter(MetricFailedBookings)
}

// RecordConcurrentBooking counts one booking attempt a worker started.
func (m *BookingMetrics) RecordConcurrentBooking() {
	m.concurrent.Add(1)
	m.forwardCounter(MetricConcurrentBookings)
}

// StartBookingTimer starts a processing timer.
func (m *BookingMetrics) StartBookingTimer() booking.TimerSample {
	return booking.NewTimerSample(m.now())
}

// StopBookingTimer records the time elapsed since sample was started.
func (m *BookingMetrics) StopBookingTimer(sample booking.TimerSample) {
	elapsed := max(m.now().Sub(sample.StartedAt()), 0)

	m.mu.Lock()
	m.processingTotal += elapsed
	m.samples++
	m.mu.Unlock()

	if m.collector != nil {
		m.collector.RecordDuration(MetricProcessingDuration, elapsed, nil)
	}
}

// SuccessRate returns successful / (successful + failed) in the range 0..1, or 0 before any outcome was recorded.
func (m *BookingMetrics) SuccessRate() float64 {
	successful := m.successful.Load()
	total := successful + m.failed.Load()

	if total == 0 {
		return 0
	}

	return float64(successful) / float64(total)
}

// AverageProcessingTime returns the mean of all stopped timers, or 0 before the first one.
func (m *BookingMetrics) AverageProcessingTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.samples == 0 {
		return 0
	}

	return m.processingTotal / time.Duration(m.samples)
}

// ConcurrentBookingCount returns the number of started booking attempts.
func (m *BookingMetrics) ConcurrentBookingCount() int64 {
	return m.concurrent.Load()
}

// SuccessfulBookings returns the number of successful bookings.
func (m *BookingMetrics) SuccessfulBookings() int64 {
	return m.successful.Load()
}

// FailedBookings returns the number of failed bookings.
func (m *BookingMetrics) FailedBookings() int64 {
	return m.failed.Load()
}

func (m *BookingMetrics) forwardCounter(metric string) {
	if m.collector != nil {
		m.collector.IncrementCounter(metric, nil)
	}
}
