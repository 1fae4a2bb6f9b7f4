package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 100 * time.Millisecond
)

// Inventory is the in-memory store of rooms. It is safe for concurrent use.
//
// Lookups of different rooms run in parallel. Mutations of the same room are serialized by a per-room
// guard, so concurrent bookings can neither lose updates nor book more units than were available.
type Inventory struct {
	mu    sync.RWMutex
	rooms map[RoomID]*roomEntry

	maxAttempts          int
	retryDelay           time.Duration
	failFastOnExhaustion bool

	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// roomEntry owns the only mutable instance of a Room.
// guard is a 1-slot semaphore; a goroutine holds the room while its token sits in the channel.
type roomEntry struct {
	guard chan struct{}
	room  Room
}

func newRoomEntry(room Room) *roomEntry {
	return &roomEntry{guard: make(chan struct{}, 1), room: room}
}

// acquireWithin takes the guard, waiting at most wait for a current holder to let go.
func (e *roomEntry) acquireWithin(ctx context.Context, wait time.Duration) error {
	select {
	case e.guard <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e.guard <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrRoomBusy
	case <-ctx.Done():
		return errors.Join(ErrBookingCanceled, ctx.Err())
	}
}

// acquire takes the guard, waiting until it is free or ctx is done.
func (e *roomEntry) acquire(ctx context.Context) error {
	select {
	case e.guard <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrBookingCanceled, ctx.Err())
	}
}

func (e *roomEntry) release() {
	<-e.guard
}

// snapshot copies the room while holding the guard.
func (e *roomEntry) snapshot() Room {
	e.guard <- struct{}{}
	defer e.release()

	return e.room
}

// NewInventory creates an empty Inventory with optional configuration.
func NewInventory(options ...Option) (*Inventory, error) {
	inv := &Inventory{
		rooms:       make(map[RoomID]*roomEntry),
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}

	for _, option := range options {
		if err := option(inv); err != nil {
			return nil, err
		}
	}

	return inv, nil
}

// Initialize adds one room per seed entry, replacing rooms that already exist.
// If the seed contains the same id more than once, the last entry wins.
//
// Initialize is meant to be called once at startup, before bookings start.
// No room is added if any entry is invalid.
func (inv *Inventory) Initialize(seed []SeedEntry) error {
	rooms := make([]Room, 0, len(seed))

	for _, entry := range seed {
		room, err := NewRoom(entry.RoomID, entry.Type, entry.Units)
		if err != nil {
			return err
		}

		rooms = append(rooms, room)
	}

	inv.mu.Lock()
	for _, room := range rooms {
		inv.rooms[room.ID()] = newRoomEntry(room)
	}
	total := len(inv.rooms)
	inv.mu.Unlock()

	for _, room := range rooms {
		inv.recordAvailableUnits(context.Background(), room.ID(), room.AvailableUnits())
	}

	inv.logInfo(context.Background(), logMsgInventoryInitialized, logAttrSeedEntries, len(seed), logAttrRoomCount, total)

	return nil
}

// Add inserts the room or replaces an existing room with the same id.
func (inv *Inventory) Add(room Room) {
	inv.mu.Lock()
	inv.rooms[room.ID()] = newRoomEntry(room)
	inv.mu.Unlock()

	inv.recordAvailableUnits(context.Background(), room.ID(), room.AvailableUnits())
}

// Book takes one unit of the room. It reports whether the booking succeeded.
func (inv *Inventory) Book(ctx context.Context, id RoomID) bool {
	return inv.TryBook(ctx, id, "") == nil
}

// BookFor works like Book and records the guest on the room.
func (inv *Inventory) BookFor(ctx context.Context, id RoomID, guest string) bool {
	return inv.TryBook(ctx, id, guest) == nil
}

// TryBook takes one unit of the room and returns the reason when it could not.
//
// Each attempt looks the room up again and waits up to one retry delay for its guard. A room that stays
// guarded for the whole delay counts as contention and is retried right away. A room with zero units is
// retried after the retry delay, unless WithFailFastOnExhaustion is set. An unknown room is never retried.
//
// The returned error is nil on success, or matches one of ErrRoomNotFound, ErrNoUnitsLeft, ErrRoomBusy,
// and ErrBookingCanceled according to errors.Is.
func (inv *Inventory) TryBook(ctx context.Context, id RoomID, guest string) error {
	return inv.TryBookStay(ctx, id, guest, Stay{})
}

// TryBookStay works like TryBook and records the stay on the room when the booking succeeds.
func (inv *Inventory) TryBookStay(ctx context.Context, id RoomID, guest string, stay Stay) error {
	start := time.Now()
	ctx, span := inv.startBookSpan(ctx, id, guest)

	attempts, err := inv.bookWithRetry(ctx, id, guest, stay)

	inv.finishBook(ctx, span, id, attempts, err, time.Since(start))

	return err
}

func (inv *Inventory) bookWithRetry(ctx context.Context, id RoomID, guest string, stay Stay) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= inv.maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt - 1, errors.Join(ErrBookingCanceled, ctxErr)
		}

		entry, found := inv.lookup(id)
		if !found {
			return attempt, fmt.Errorf("%w: %d", ErrRoomNotFound, id)
		}

		lastErr = inv.attemptBook(ctx, entry, guest, stay)

		switch {
		case lastErr == nil:
			return attempt, nil

		case errors.Is(lastErr, ErrBookingCanceled):
			return attempt, lastErr

		case errors.Is(lastErr, ErrNoUnitsLeft) && inv.failFastOnExhaustion:
			return attempt, lastErr
		}

		if attempt == inv.maxAttempts {
			break
		}

		reason := FailureReason(lastErr)
		inv.recordRetry(ctx, reason)
		inv.logInfo(ctx, logMsgRetryingBooking,
			logAttrRoomID, id.String(), logAttrAttempt, attempt+1, logAttrMaxAttempts, inv.maxAttempts, logAttrReason, reason)

		// The guard wait of a busy attempt already took one retry delay.
		if errors.Is(lastErr, ErrNoUnitsLeft) {
			if sleepErr := sleepContext(ctx, inv.retryDelay); sleepErr != nil {
				return attempt, sleepErr
			}
		}
	}

	return inv.maxAttempts, fmt.Errorf("%w: room %d after %d attempts", lastErr, id, inv.maxAttempts)
}

// attemptBook is one guarded check-and-decrement.
func (inv *Inventory) attemptBook(ctx context.Context, entry *roomEntry, guest string, stay Stay) error {
	if err := entry.acquireWithin(ctx, inv.retryDelay); err != nil {
		return err
	}
	defer entry.release()

	if !entry.room.BookStay(guest, stay) {
		return ErrNoUnitsLeft
	}

	inv.recordAvailableUnits(ctx, entry.room.ID(), entry.room.AvailableUnits())

	return nil
}

// Release puts one unit of the room back. It reports false if the room does not exist
// or ctx is done before the room's guard could be taken.
func (inv *Inventory) Release(ctx context.Context, id RoomID) bool {
	entry, found := inv.lookup(id)
	if !found {
		inv.logWarn(ctx, logMsgReleaseUnknownRoom, logAttrRoomID, id.String())
		inv.recordRelease(ctx, StatusNotFound)

		return false
	}

	if err := entry.acquire(ctx); err != nil {
		inv.logError(ctx, logMsgReleaseCanceled, err, logAttrRoomID, id.String())
		inv.recordRelease(ctx, StatusCanceled)

		return false
	}

	entry.room.Release()
	units := entry.room.AvailableUnits()
	entry.release()

	inv.recordAvailableUnits(ctx, id, units)
	inv.recordRelease(ctx, StatusSuccess)
	inv.logInfo(ctx, logMsgRoomReleased, logAttrRoomID, id.String(), logAttrAvailableUnits, units)

	return true
}

// Get returns a snapshot of the room.
func (inv *Inventory) Get(id RoomID) (Room, bool) {
	entry, found := inv.lookup(id)
	if !found {
		return Room{}, false
	}

	return entry.snapshot(), true
}

// Snapshot returns an independent copy of all rooms, keyed by room id.
// Each room is copied under its guard; the copy as a whole is not a single point in time.
func (inv *Inventory) Snapshot() map[RoomID]Room {
	inv.mu.RLock()
	entries := make([]*roomEntry, 0, len(inv.rooms))
	for _, entry := range inv.rooms {
		entries = append(entries, entry)
	}
	inv.mu.RUnlock()

	rooms := make(map[RoomID]Room, len(entries))
	for _, entry := range entries {
		room := entry.snapshot()
		rooms[room.ID()] = room
	}

	return rooms
}

// Clear removes all rooms. Bookings that already hold a removed room finish against the detached room.
func (inv *Inventory) Clear() {
	inv.mu.Lock()
	removed := len(inv.rooms)
	inv.rooms = make(map[RoomID]*roomEntry)
	inv.mu.Unlock()

	inv.logInfo(context.Background(), logMsgInventoryCleared, logAttrRoomCount, removed)
}

// Len returns the number of rooms.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	return len(inv.rooms)
}

func (inv *Inventory) lookup(id RoomID) (*roomEntry, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	entry, found := inv.rooms[id]

	return entry, found
}

// sleepContext waits for d or until ctx is done, whichever happens first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrBookingCanceled, ctx.Err())
	}
}
