package inventory

import (
	"context"
	"errors"
)

var (
	// ErrRoomNotFound is returned when an operation targets a room id that is not part of the inventory.
	ErrRoomNotFound = errors.New("room not found")

	// ErrNoUnitsLeft is returned when a room has zero available units.
	ErrNoUnitsLeft = errors.New("room has no units left")

	// ErrRoomBusy is returned when another operation kept the room guarded for a whole retry delay on every attempt.
	ErrRoomBusy = errors.New("room is busy with another operation")

	// ErrBookingCanceled is returned when the context is canceled while a booking waits for a room or a retry.
	ErrBookingCanceled = errors.New("booking canceled")

	// ErrNegativeUnits is returned when a room would be created with a negative number of available units.
	ErrNegativeUnits = errors.New("available units must not be negative")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeRetryDelay is returned when the retry delay is negative.
	ErrNegativeRetryDelay = errors.New("retry delay must not be negative")
)

// FailureReason maps an error returned by Inventory.TryBook to a short label used in logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrRoomNotFound):
		return StatusNotFound
	case errors.Is(err, ErrNoUnitsLeft):
		return StatusNoUnitsLeft
	case errors.Is(err, ErrRoomBusy):
		return StatusBusy
	case errors.Is(err, ErrBookingCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusError
	}
}
