package booking

import (
	"time"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
)

// Option defines a functional option for configuring the Coordinator.
type Option func(*Coordinator) error

// WithWorkers sets the number of concurrent workers.
func WithWorkers(workers int) Option {
	return func(c *Coordinator) error {
		if workers <= 0 {
			return ErrInvalidWorkerCount
		}

		c.workers = workers

		return nil
	}
}

// WithShutdownTimeout sets how long Process waits for submitted requests before it cancels them.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) error {
		if timeout <= 0 {
			return ErrInvalidShutdownTimeout
		}

		c.shutdownTimeout = timeout

		return nil
	}
}

// WithShutdownGracePeriod sets how long Process waits for workers to return after it canceled them.
// Workers still busy afterwards are abandoned and their requests are reported as Abandoned.
func WithShutdownGracePeriod(grace time.Duration) Option {
	return func(c *Coordinator) error {
		if grace <= 0 {
			return ErrInvalidShutdownGracePeriod
		}

		c.shutdownGrace = grace

		return nil
	}
}

// WithLogger sets the logger for the Coordinator.
func WithLogger(logger inventory.Logger) Option {
	return func(c *Coordinator) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which is preferred over the plain Logger.
func WithContextualLogger(logger inventory.ContextualLogger) Option {
	return func(c *Coordinator) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithTracing sets the tracing collector; every processed request gets a span.
func WithTracing(collector inventory.TracingCollector) Option {
	return func(c *Coordinator) error {
		c.tracingCollector = collector
		return nil
	}
}
