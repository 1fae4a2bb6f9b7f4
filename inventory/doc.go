// Package inventory provides a concurrent in-memory hotel room inventory.
//
// An Inventory holds one Room per room id. Each Room is a finite pool of interchangeable units
// that can be booked and released. Many goroutines may book the same room at once: every
// check-and-decrement runs under a per-room guard, so no update is lost and no room is
// booked past its available units. Rooms do not contend with each other.
//
// Bookings are retried with a fixed delay:
//   - a room that stays guarded by another operation for a whole retry delay is retried
//   - a room with zero units is retried after the retry delay, unless WithFailFastOnExhaustion is set
//   - an unknown room fails right away with ErrRoomNotFound
//   - a canceled context ends the booking with ErrBookingCanceled
//
// Observability is dependency-free: Logger, ContextualLogger, MetricsCollector, and
// TracingCollector are plain interfaces, configured with functional options. The oteladapters,
// promadapters, and zerologadapters packages provide implementations.
//
// Common usage pattern:
//
//	inv, err := inventory.NewInventory(
//		inventory.WithRetryDelay(100*time.Millisecond),
//		inventory.WithLogger(slog.Default()),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	if err := inv.Initialize(inventory.DefaultSeed()); err != nil {
//		// handle error
//	}
//
//	if err := inv.TryBook(ctx, 101, "Guest 1"); errors.Is(err, inventory.ErrNoUnitsLeft) {
//		// sold out
//	}
package inventory
