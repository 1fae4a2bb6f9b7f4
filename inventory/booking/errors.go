package booking

import "errors"

var (
	// ErrNilBooker is returned when a Coordinator is created without a Booker.
	ErrNilBooker = errors.New("booker must not be nil")

	// ErrNilMetricsSink is returned when a Coordinator is created without a MetricsSink.
	ErrNilMetricsSink = errors.New("metrics sink must not be nil")

	// ErrInvalidWorkerCount is returned when the worker count is not positive.
	ErrInvalidWorkerCount = errors.New("worker count must be positive")

	// ErrInvalidShutdownTimeout is returned when the shutdown timeout is not positive.
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")

	// ErrInvalidShutdownGracePeriod is returned when the shutdown grace period is not positive.
	ErrInvalidShutdownGracePeriod = errors.New("shutdown grace period must be positive")

	// ErrInvalidRequest is returned when a Request cannot be built from its input.
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrInvalidStatusTransition is returned when a Request would skip or leave its lifecycle.
	ErrInvalidStatusTransition = errors.New("invalid request status transition")

	// ErrBookingPanicked marks a booking attempt that panicked.
	ErrBookingPanicked = errors.New("booking attempt panicked")
)
