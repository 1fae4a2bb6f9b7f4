// Package helper provides test doubles for the inventory observability interfaces and the booking MetricsSink.
package helper
