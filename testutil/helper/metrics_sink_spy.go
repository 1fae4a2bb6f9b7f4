package helper

import (
	"sync"
	"time"

	"github.com/AntonStoeckl/room-inventory-go/inventory/booking"
)

// MetricsSinkSpy is a booking.MetricsSink that counts every call for testing.
type MetricsSinkSpy struct {
	mu          sync.Mutex
	successful  int
	failed      int
	concurrent  int
	timerStarts int
	timerStops  int
	inFlight    int
	maxInFlight int
}

// NewMetricsSinkSpy creates an empty MetricsSinkSpy.
func NewMetricsSinkSpy() *MetricsSinkSpy {
	return &MetricsSinkSpy{}
}

// RecordSuccessfulBooking implements the MetricsSink interface.
func (s *MetricsSinkSpy) RecordSuccessfulBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successful++
}

// RecordFailedBooking implements the MetricsSink interface.
func (s *MetricsSinkSpy) RecordFailedBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

// RecordConcurrentBooking implements the MetricsSink interface.
func (s *MetricsSinkSpy) RecordConcurrentBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concurrent++
}

// StartBookingTimer implements the MetricsSink interface.
func (s *MetricsSinkSpy) StartBookingTimer() booking.TimerSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timerStarts++
	s.inFlight++
	s.maxInFlight = max(s.maxInFlight, s.inFlight)

	return booking.NewTimerSample(time.Now())
}

// StopBookingTimer implements the MetricsSink interface.
func (s *MetricsSinkSpy) StopBookingTimer(_ booking.TimerSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timerStops++
	s.inFlight--
}

// Successful returns the number of recorded successes.
func (s *MetricsSinkSpy) Successful() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successful
}

// Failed returns the number of recorded failures.
func (s *MetricsSinkSpy) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Concurrent returns the number of recorded concurrent attempts.
func (s *MetricsSinkSpy) Concurrent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.concurrent
}

// TimerStarts returns how often a timer was started.
func (s *MetricsSinkSpy) TimerStarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timerStarts
}

// TimerStops returns how often a timer was stopped.
func (s *MetricsSinkSpy) TimerStops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timerStops
}

// MaxInFlight returns the highest number of timers running at the same time.
func (s *MetricsSinkSpy) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInFlight
}
