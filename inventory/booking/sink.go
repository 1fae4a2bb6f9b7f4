package booking

import "time"

// TimerSample is a started processing timer, returned by StartBookingTimer.
type TimerSample struct {
	startedAt time.Time
}

// NewTimerSample starts a timer at the given instant.
func NewTimerSample(startedAt time.Time) TimerSample {
	return TimerSample{startedAt: startedAt}
}

// StartedAt returns the instant the timer was started.
func (s TimerSample) StartedAt() time.Time {
	return s.startedAt
}

// MetricsSink receives the per-request events of a Coordinator. Implementations must be safe for concurrent use.
type MetricsSink interface {
	RecordSuccessfulBooking()
	RecordFailedBooking()
	RecordConcurrentBooking()
	StartBookingTimer() TimerSample
	StopBookingTimer(sample TimerSample)
}
