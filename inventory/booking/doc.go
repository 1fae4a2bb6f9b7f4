// Package booking drives booking requests through a room inventory with a bounded worker pool.
//
// A Request moves through Pending, Submitted, Running and ends in Succeeded or Failed. The
// Coordinator reports every request to a MetricsSink: a concurrent attempt when a worker picks it
// up, a processing timer around the attempt, and its success or failure.
package booking
