// Command booking-simulation seeds a room inventory and pushes a batch of concurrent booking requests
// through a booking coordinator, then reports the final room status and the booking metrics.
//
// The default run books 10 requests cycling over rooms 101, 102 and 103 with 5 workers.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
	"github.com/AntonStoeckl/room-inventory-go/inventory/booking"
	"github.com/AntonStoeckl/room-inventory-go/inventory/bookingmetrics"
)

const (
	shutdownGracePeriod = 5 * time.Second
	millisecondsPerUnit = float64(time.Millisecond)
	percent             = 100
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

func run() error {
	cfg, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := newObservability(cfg)
	defer shutdownObservability(obs)

	logger := obs.Logger
	logger.InfoContext(ctx, "starting booking simulation", cfg.logAttrs()...)

	seed, err := loadSeed(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load room seed: %w", err)
	}

	rooms, err := newInventory(cfg, obs)
	if err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}

	if initErr := rooms.Initialize(seed); initErr != nil {
		return fmt.Errorf("failed to initialize inventory: %w", initErr)
	}

	metrics, err := newBookingMetrics(obs)
	if err != nil {
		return fmt.Errorf("failed to create booking metrics: %w", err)
	}

	coordinator, err := booking.NewCoordinator(rooms, metrics,
		booking.WithWorkers(cfg.Workers),
		booking.WithShutdownTimeout(cfg.ShutdownTimeout),
		booking.WithContextualLogger(logger),
		booking.WithTracing(obs.Tracing),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking coordinator: %w", err)
	}

	requests, err := buildRequests(cfg.Requests, seed)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "created booking requests", "count", len(requests))

	result := coordinator.Process(ctx, requests)

	logRoomStatus(ctx, logger, rooms)
	logReport(ctx, logger, result, metrics)
	obs.Report(ctx)

	return nil
}

func newInventory(cfg Config, obs *Observability) (*inventory.Inventory, error) {
	options := []inventory.Option{
		inventory.WithMaxAttempts(cfg.MaxAttempts),
		inventory.WithRetryDelay(cfg.RetryDelay),
		inventory.WithContextualLogger(obs.Logger),
	}

	if cfg.FailFast {
		options = append(options, inventory.WithFailFastOnExhaustion())
	}

	if obs.Metrics != nil {
		options = append(options, inventory.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, inventory.WithTracing(obs.Tracing))
	}

	return inventory.NewInventory(options...)
}

func newBookingMetrics(obs *Observability) (*bookingmetrics.BookingMetrics, error) {
	if obs.Metrics == nil {
		return bookingmetrics.New()
	}

	return bookingmetrics.New(bookingmetrics.WithMetricsCollector(obs.Metrics))
}

// buildRequests creates count requests cycling over the seeded rooms in seed order,
// for guests named "Guest 1", "Guest 2" and so on.
func buildRequests(count int, seed []inventory.SeedEntry) ([]booking.Request, error) {
	if len(seed) == 0 {
		return nil, nil
	}

	requests := make([]booking.Request, 0, count)
	for i := 0; i < count; i++ {
		request, err := booking.NewRequest(seed[i%len(seed)].RoomID, fmt.Sprintf("Guest %d", i+1))
		if err != nil {
			return nil, err
		}

		requests = append(requests, request)
	}

	return requests, nil
}

func logRoomStatus(ctx context.Context, logger Logger, rooms *inventory.Inventory) {
	snapshot := rooms.Snapshot()
	ids := make([]inventory.RoomID, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	logger.InfoContext(ctx, "final room status", "rooms", len(ids))
	for _, id := range ids {
		logger.InfoContext(ctx, "room status", "room", snapshot[id].String())
	}
}

func logReport(ctx context.Context, logger Logger, result booking.BatchResult, metrics *bookingmetrics.BookingMetrics) {
	logger.InfoContext(ctx, "booking metrics report",
		"success_rate_percent", fmt.Sprintf("%.2f", metrics.SuccessRate()*percent),
		"average_processing_ms", fmt.Sprintf("%.2f", float64(metrics.AverageProcessingTime())/millisecondsPerUnit),
		"concurrent_booking_attempts", metrics.ConcurrentBookingCount(),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"not_started", result.NotStarted,
		"abandoned", result.Abandoned,
		"complete", result.Complete,
	)
}

func shutdownObservability(obs *Observability) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	if err := obs.Shutdown(ctx); err != nil {
		log.Printf("observability shutdown failed: %v", err)
	}
}
