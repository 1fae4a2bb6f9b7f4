package inventory

import "time"

// Option defines a functional option for configuring the Inventory.
type Option func(*Inventory) error

// WithMaxAttempts sets how many booking attempts TryBook makes before it gives up. The default is 3.
func WithMaxAttempts(maxAttempts int) Option {
	return func(inv *Inventory) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		inv.maxAttempts = maxAttempts

		return nil
	}
}

// WithRetryDelay sets the fixed delay between two booking attempts. The default is 100ms.
//
// The same delay bounds how long one attempt waits for a room that is guarded by another operation.
func WithRetryDelay(delay time.Duration) Option {
	return func(inv *Inventory) error {
		if delay < 0 {
			return ErrNegativeRetryDelay
		}

		inv.retryDelay = delay

		return nil
	}
}

// WithFailFastOnExhaustion makes TryBook return ErrNoUnitsLeft on the first attempt that finds a room with zero units.
// Without it, an exhausted room is retried like a contended one.
func WithFailFastOnExhaustion() Option {
	return func(inv *Inventory) error {
		inv.failFastOnExhaustion = true
		return nil
	}
}

// WithLogger sets the logger for the Inventory.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Info level: successful bookings, retries, releases (production-safe)
// Warn level: unknown rooms, bookings that failed after all attempts
// Error level: canceled bookings.
func WithLogger(logger Logger) Option {
	return func(inv *Inventory) error {
		inv.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which is preferred over the plain Logger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(inv *Inventory) error {
		inv.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Inventory.
// If the collector also implements ContextualMetricsCollector, the context-aware methods are used.
func WithMetrics(collector MetricsCollector) Option {
	return func(inv *Inventory) error {
		inv.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Inventory.
func WithTracing(collector TracingCollector) Option {
	return func(inv *Inventory) error {
		inv.tracingCollector = collector
		return nil
	}
}
