package inventory_test

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
	"github.com/AntonStoeckl/room-inventory-go/testutil/helper"
)

func newSeededInventory(t *testing.T, options ...inventory.Option) *inventory.Inventory {
	t.Helper()

	inv, err := inventory.NewInventory(options...)
	require.NoError(t, err)
	require.NoError(t, inv.Initialize(inventory.DefaultSeed()))

	return inv
}

func Test_NewInventory_ShouldFail_WithInvalidOptions(t *testing.T) {
	_, err := inventory.NewInventory(inventory.WithMaxAttempts(0))
	assert.ErrorIs(t, err, inventory.ErrInvalidMaxAttempts)

	_, err = inventory.NewInventory(inventory.WithRetryDelay(-time.Millisecond))
	assert.ErrorIs(t, err, inventory.ErrNegativeRetryDelay)
}

func Test_Initialize_AddsAllSeedEntries(t *testing.T) {
	// act
	inv := newSeededInventory(t)

	// assert
	assert.Equal(t, 3, inv.Len())

	room, found := inv.Get(102)
	require.True(t, found)
	assert.Equal(t, "Deluxe", room.Type())
	assert.Equal(t, 3, room.AvailableUnits())
	assert.True(t, room.IsAvailable())
}

func Test_Initialize_LastDuplicateEntryWins(t *testing.T) {
	// arrange
	inv, err := inventory.NewInventory()
	require.NoError(t, err)

	// act
	err = inv.Initialize([]inventory.SeedEntry{
		{RoomID: 101, Units: 5},
		{RoomID: 101, Units: 1},
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Len())

	room, _ := inv.Get(101)
	assert.Equal(t, 1, room.AvailableUnits())
}

func Test_Initialize_ShouldFail_WithNegativeUnits_AndAddNothing(t *testing.T) {
	// arrange
	inv, err := inventory.NewInventory()
	require.NoError(t, err)

	// act
	err = inv.Initialize([]inventory.SeedEntry{
		{RoomID: 101, Units: 5},
		{RoomID: 102, Units: -3},
	})

	// assert
	assert.ErrorIs(t, err, inventory.ErrNegativeUnits)
	assert.Equal(t, 0, inv.Len())
}

func Test_Add_ReplacesExistingRoom(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)
	room, err := inventory.NewRoom(101, "Penthouse", 1)
	require.NoError(t, err)

	// act
	inv.Add(room)

	// assert
	got, found := inv.Get(101)
	require.True(t, found)
	assert.Equal(t, "Penthouse", got.Type())
	assert.Equal(t, 1, got.AvailableUnits())
	assert.Equal(t, 3, inv.Len())
}

func Test_Book_SingleBooking_DecrementsUnits(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)

	// act
	booked := inv.BookFor(context.Background(), 102, "Guest 2")

	// assert
	assert.True(t, booked)

	room, _ := inv.Get(102)
	assert.Equal(t, 2, room.AvailableUnits())
	assert.True(t, room.IsAvailable())
	assert.Equal(t, "Guest 2", room.CurrentGuest())
}

func Test_Book_ConcurrentRequests_NeverOverbook(t *testing.T) {
	// arrange
	inv := newSeededInventory(t, inventory.WithRetryDelay(20*time.Millisecond))

	const requests = 10
	var succeeded atomic.Int32
	var wg sync.WaitGroup

	// act
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if inv.Book(context.Background(), 101) {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, int32(5), succeeded.Load())

	room, _ := inv.Get(101)
	assert.Equal(t, 0, room.AvailableUnits())
	assert.False(t, room.IsAvailable())
}

func Test_Book_SequentialBookings_ExhaustRoom(t *testing.T) {
	// arrange
	inv := newSeededInventory(t, inventory.WithRetryDelay(5*time.Millisecond))

	// act
	results := make([]bool, 0, 6)
	for range 6 {
		results = append(results, inv.Book(context.Background(), 101))
	}

	// assert
	assert.Equal(t, []bool{true, true, true, true, true, false}, results)

	room, _ := inv.Get(101)
	assert.Equal(t, 0, room.AvailableUnits())
	assert.False(t, room.IsAvailable())
}

func Test_Book_ConcurrentRequestsOnScarceRoom_WithDefaultRetryPolicy(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)

	const requests = 10
	succeeded := make(chan bool, requests)
	var wg sync.WaitGroup

	// act
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			succeeded <- inv.Book(context.Background(), 103)
		}()
	}
	wg.Wait()
	close(succeeded)

	// assert
	trueCount, falseCount := 0, 0
	for booked := range succeeded {
		if booked {
			trueCount++
		} else {
			falseCount++
		}
	}

	assert.Equal(t, 2, trueCount)
	assert.Equal(t, 8, falseCount)

	room, _ := inv.Get(103)
	assert.Equal(t, 0, room.AvailableUnits())
	assert.False(t, room.IsAvailable())
}

func Test_Book_ConcurrentRequestsAcrossRooms_SucceedMinOfRequestsAndUnits(t *testing.T) {
	// arrange
	inv := newSeededInventory(t, inventory.WithRetryDelay(20*time.Millisecond), inventory.WithFailFastOnExhaustion())

	requestsPerRoom := map[inventory.RoomID]int{101: 4, 102: 7, 103: 9}
	expected := map[inventory.RoomID]int{101: 4, 102: 3, 103: 2}

	var mu sync.Mutex
	succeeded := make(map[inventory.RoomID]int)
	var wg sync.WaitGroup

	// act
	for roomID, n := range requestsPerRoom {
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if inv.Book(context.Background(), roomID) {
					mu.Lock()
					succeeded[roomID]++
					mu.Unlock()
				}
			}()
		}
	}
	wg.Wait()

	// assert
	assert.Equal(t, expected, succeeded)

	seeded := map[inventory.RoomID]int{101: 5, 102: 3, 103: 2}
	for roomID, room := range inv.Snapshot() {
		assert.Equal(t, seeded[roomID]-expected[roomID], room.AvailableUnits())
		assert.GreaterOrEqual(t, room.AvailableUnits(), 0)
	}
}

func Test_TryBook_UnknownRoom_FailsWithoutRetry(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	logs := helper.NewLogHandlerSpy(false)
	inv := newSeededInventory(t,
		inventory.WithRetryDelay(200*time.Millisecond),
		inventory.WithMetrics(metrics),
		inventory.WithLogger(slog.New(logs)),
	)
	start := time.Now()

	// act
	err := inv.TryBook(context.Background(), 999, "Guest 9")

	// assert
	assert.ErrorIs(t, err, inventory.ErrRoomNotFound)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 0, metrics.CountCounterRecords(inventory.MetricBookRetries, nil))
	assert.Equal(t, 1, metrics.CountCounterRecords(inventory.MetricBookCalls,
		map[string]string{inventory.LabelStatus: inventory.StatusNotFound}))
	assert.True(t, logs.HasLogWithAttr(slog.LevelWarn, "room not found", "room_id", "999"))
	assert.Equal(t, 3, inv.Len())
}

func Test_Book_UnknownRoom_ReturnsFalse(t *testing.T) {
	inv := newSeededInventory(t)

	assert.False(t, inv.Book(context.Background(), 404))
}

func Test_TryBook_ExhaustedRoom_RetriesWithDelayByDefault(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	logs := helper.NewLogHandlerSpy(false)
	inv, err := inventory.NewInventory(
		inventory.WithRetryDelay(20*time.Millisecond),
		inventory.WithMetrics(metrics),
		inventory.WithLogger(slog.New(logs)),
	)
	require.NoError(t, err)
	require.NoError(t, inv.Initialize([]inventory.SeedEntry{{RoomID: 104, Units: 0}}))
	start := time.Now()

	// act
	err = inv.TryBook(context.Background(), 104, "Guest 4")

	// assert
	assert.ErrorIs(t, err, inventory.ErrNoUnitsLeft)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Equal(t, 2, metrics.CountCounterRecords(inventory.MetricBookRetries,
		map[string]string{inventory.LabelReason: inventory.StatusNoUnitsLeft}))
	assert.Equal(t, 2, logs.CountLogs(slog.LevelInfo, "retrying booking"))
	assert.True(t, logs.HasLog(slog.LevelWarn, "booking failed after all attempts"))

	room, _ := inv.Get(104)
	assert.Equal(t, 0, room.AvailableUnits())
	assert.False(t, room.IsAvailable())
}

func Test_TryBook_ExhaustedRoom_FailsFast_WhenConfigured(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	inv, err := inventory.NewInventory(
		inventory.WithRetryDelay(200*time.Millisecond),
		inventory.WithFailFastOnExhaustion(),
		inventory.WithMetrics(metrics),
	)
	require.NoError(t, err)
	require.NoError(t, inv.Initialize([]inventory.SeedEntry{{RoomID: 104, Units: 0}}))
	start := time.Now()

	// act
	err = inv.TryBook(context.Background(), 104, "Guest 4")

	// assert
	assert.ErrorIs(t, err, inventory.ErrNoUnitsLeft)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 0, metrics.CountCounterRecords(inventory.MetricBookRetries, nil))
}

func Test_TryBook_CanceledDuringRetryDelay_ReturnsQuickly(t *testing.T) {
	// arrange
	inv, err := inventory.NewInventory(inventory.WithRetryDelay(time.Second))
	require.NoError(t, err)
	require.NoError(t, inv.Initialize([]inventory.SeedEntry{{RoomID: 104, Units: 0}}))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	start := time.Now()

	// act
	err = inv.TryBook(ctx, 104, "Guest 4")

	// assert
	assert.ErrorIs(t, err, inventory.ErrBookingCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func Test_TryBook_AlreadyCanceledContext_LeavesRoomUntouched(t *testing.T) {
	// arrange
	logs := helper.NewLogHandlerSpy(false)
	inv := newSeededInventory(t, inventory.WithContextualLogger(slog.New(logs)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	err := inv.TryBook(ctx, 101, "Guest 1")

	// assert
	assert.ErrorIs(t, err, inventory.ErrBookingCanceled)
	assert.True(t, logs.HasLog(slog.LevelError, "booking canceled"))

	room, _ := inv.Get(101)
	assert.Equal(t, 5, room.AvailableUnits())
}

func Test_TryBookStay_RecordsStay_AndReleaseClearsIt(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)
	checkIn := time.Date(2030, time.June, 10, 14, 0, 0, 0, time.UTC)
	stay := inventory.Stay{CheckIn: checkIn, CheckOut: checkIn.Add(48 * time.Hour)}

	// act
	err := inv.TryBookStay(context.Background(), 102, "Guest 2", stay)
	booked, _ := inv.Get(102)
	released := inv.Release(context.Background(), 102)

	// assert
	require.NoError(t, err)
	assert.Equal(t, stay, booked.CurrentStay())
	assert.Equal(t, "Guest 2", booked.CurrentGuest())
	assert.True(t, released)

	room, _ := inv.Get(102)
	assert.True(t, room.CurrentStay().IsZero())
}

func Test_Release_IncrementsUnits(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	inv := newSeededInventory(t, inventory.WithMetrics(metrics))
	require.True(t, inv.BookFor(context.Background(), 103, "Guest 3"))

	// act
	released := inv.Release(context.Background(), 103)

	// assert
	assert.True(t, released)

	room, _ := inv.Get(103)
	assert.Equal(t, 2, room.AvailableUnits())
	assert.Empty(t, room.CurrentGuest())
	assert.Equal(t, 1, metrics.CountCounterRecords(inventory.MetricReleaseCalls,
		map[string]string{inventory.LabelStatus: inventory.StatusSuccess}))
}

func Test_Release_UnknownRoom_ReturnsFalseAndWarns(t *testing.T) {
	// arrange
	logs := helper.NewLogHandlerSpy(false)
	inv := newSeededInventory(t, inventory.WithLogger(slog.New(logs)))

	// act
	released := inv.Release(context.Background(), 999)

	// assert
	assert.False(t, released)
	assert.True(t, logs.HasLogWithAttr(slog.LevelWarn, "attempted to release non-existent room", "room_id", "999"))
	assert.Equal(t, 3, inv.Len())
}

func Test_Release_BeyondSeededUnits_IsAllowed(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)

	// act
	inv.Release(context.Background(), 103)

	// assert
	room, _ := inv.Get(103)
	assert.Equal(t, 3, room.AvailableUnits())
}

func Test_Get_WithoutMutation_IsIdempotent(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)
	require.True(t, inv.BookFor(context.Background(), 102, "Guest 2"))

	// act
	first, firstFound := inv.Get(102)
	second, secondFound := inv.Get(102)

	// assert
	assert.True(t, firstFound)
	assert.True(t, secondFound)
	assert.Equal(t, first, second)
	assert.Equal(t, first.String(), second.String())
}

func Test_Snapshot_IsIndependentCopy(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)

	// act
	snapshot := inv.Snapshot()
	room := snapshot[101]
	room.Book()
	snapshot[101] = room
	delete(snapshot, 102)

	// assert
	live, _ := inv.Get(101)
	assert.Equal(t, 5, live.AvailableUnits())
	assert.Equal(t, 3, inv.Len())
	assert.Len(t, inv.Snapshot(), 3)
}

func Test_Clear_RemovesAllRooms(t *testing.T) {
	// arrange
	inv := newSeededInventory(t)

	// act
	inv.Clear()

	// assert
	assert.Equal(t, 0, inv.Len())
	assert.Empty(t, inv.Snapshot())
	assert.ErrorIs(t, inv.TryBook(context.Background(), 101, ""), inventory.ErrRoomNotFound)
}

func Test_TryBook_RecordsMetrics_ThroughContextualCollector(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	inv := newSeededInventory(t, inventory.WithMetrics(metrics))

	// act
	err := inv.TryBook(context.Background(), 101, "Guest 1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.CountCounterRecords(inventory.MetricBookCalls,
		map[string]string{inventory.LabelStatus: inventory.StatusSuccess}))
	assert.Equal(t, 1, metrics.CountDurationRecords(inventory.MetricBookDuration,
		map[string]string{inventory.LabelStatus: inventory.StatusSuccess}))

	units, found := metrics.LastValue(inventory.MetricAvailableUnits, map[string]string{inventory.LabelRoomID: "101"})
	require.True(t, found)
	assert.Equal(t, float64(4), units)
	assert.Positive(t, metrics.ContextualCallCount())
}

func Test_TryBook_RecordsSpans(t *testing.T) {
	// arrange
	tracing := helper.NewTracingCollectorSpy()
	inv := newSeededInventory(t, inventory.WithTracing(tracing), inventory.WithFailFastOnExhaustion())
	require.NoError(t, inv.Initialize([]inventory.SeedEntry{{RoomID: 104, Units: 0}}))

	// act
	require.NoError(t, inv.TryBook(context.Background(), 101, "Guest 1"))
	require.Error(t, inv.TryBook(context.Background(), 104, "Guest 4"))

	// assert
	spans := tracing.GetSpanRecordsByName(inventory.SpanNameBook)
	require.Len(t, spans, 2)

	assert.True(t, spans[0].Finished)
	assert.Equal(t, "101", spans[0].StartAttributes["room.id"])
	assert.Equal(t, "Guest 1", spans[0].StartAttributes["booking.guest"])
	assert.Equal(t, inventory.StatusSuccess, spans[0].Status)
	assert.Equal(t, "1", spans[0].EndAttributes["booking.attempts"])

	assert.True(t, spans[1].Finished)
	assert.Equal(t, inventory.StatusError, spans[1].Status)
	assert.Equal(t, inventory.StatusNoUnitsLeft, spans[1].EndAttributes["booking.failure_reason"])
}

func Test_ContextualLogger_IsPreferredOverLogger(t *testing.T) {
	// arrange
	plain := helper.NewLogHandlerSpy(false)
	contextual := helper.NewLogHandlerSpy(false)
	inv := newSeededInventory(t,
		inventory.WithLogger(slog.New(plain)),
		inventory.WithContextualLogger(slog.New(contextual)),
	)
	plain.Reset()
	contextual.Reset()

	// act
	inv.BookFor(context.Background(), 101, "Guest 1")

	// assert
	assert.True(t, contextual.HasLog(slog.LevelInfo, "booking succeeded"))
	assert.Empty(t, plain.GetRecords())
}

func Test_FailureReason_MapsErrors(t *testing.T) {
	assert.Equal(t, inventory.StatusSuccess, inventory.FailureReason(nil))
	assert.Equal(t, inventory.StatusNotFound, inventory.FailureReason(inventory.ErrRoomNotFound))
	assert.Equal(t, inventory.StatusNoUnitsLeft, inventory.FailureReason(inventory.ErrNoUnitsLeft))
	assert.Equal(t, inventory.StatusBusy, inventory.FailureReason(inventory.ErrRoomBusy))
	assert.Equal(t, inventory.StatusCanceled, inventory.FailureReason(context.Canceled))
	assert.Equal(t, inventory.StatusError, inventory.FailureReason(assert.AnError))
}
