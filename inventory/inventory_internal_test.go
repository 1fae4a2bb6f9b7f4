package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardedInventory(t *testing.T, options ...Option) (*Inventory, *roomEntry) {
	t.Helper()

	inv, err := NewInventory(options...)
	require.NoError(t, err)
	require.NoError(t, inv.Initialize([]SeedEntry{{RoomID: 101, Type: "Standard", Units: 5}}))

	entry, found := inv.lookup(101)
	require.True(t, found)

	return inv, entry
}

func Test_TryBook_GuardHeldForAllAttempts_FailsAsBusy(t *testing.T) {
	// arrange
	inv, entry := guardedInventory(t, WithRetryDelay(10*time.Millisecond))
	entry.guard <- struct{}{}
	start := time.Now()

	// act
	err := inv.TryBook(context.Background(), 101, "Guest 1")

	// assert
	assert.ErrorIs(t, err, ErrRoomBusy)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	entry.release()
	room, _ := inv.Get(101)
	assert.Equal(t, 5, room.AvailableUnits())
}

func Test_TryBook_GuardReleasedDuringRetries_Succeeds(t *testing.T) {
	// arrange
	inv, entry := guardedInventory(t, WithRetryDelay(20*time.Millisecond))
	entry.guard <- struct{}{}
	time.AfterFunc(30*time.Millisecond, entry.release)

	// act
	err := inv.TryBook(context.Background(), 101, "Guest 1")

	// assert
	require.NoError(t, err)
	room, _ := inv.Get(101)
	assert.Equal(t, 4, room.AvailableUnits())
	assert.Equal(t, "Guest 1", room.CurrentGuest())
}

func Test_TryBook_CanceledWhileWaitingForGuard(t *testing.T) {
	// arrange
	inv, entry := guardedInventory(t, WithRetryDelay(time.Second))
	entry.guard <- struct{}{}
	defer entry.release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()

	// act
	err := inv.TryBook(ctx, 101, "Guest 1")

	// assert
	assert.ErrorIs(t, err, ErrBookingCanceled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func Test_Release_CanceledWhileWaitingForGuard(t *testing.T) {
	// arrange
	inv, entry := guardedInventory(t)
	entry.guard <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// act
	released := inv.Release(ctx, 101)

	// assert
	assert.False(t, released)

	entry.release()
	room, _ := inv.Get(101)
	assert.Equal(t, 5, room.AvailableUnits())
}

func Test_Clear_DetachesRoomsHeldByInFlightBookings(t *testing.T) {
	// arrange
	inv, entry := guardedInventory(t, WithRetryDelay(50*time.Millisecond))
	entry.guard <- struct{}{}

	done := make(chan error, 1)
	go func() {
		done <- inv.TryBook(context.Background(), 101, "Guest 1")
	}()

	// act
	time.Sleep(10 * time.Millisecond)
	inv.Clear()
	entry.release()

	// assert
	err := <-done
	if err != nil {
		assert.ErrorIs(t, err, ErrRoomNotFound)
	}
	assert.Equal(t, 0, inv.Len())
}
