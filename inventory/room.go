package inventory

import (
	"fmt"
	"strconv"
)

// RoomID identifies one bookable room line, e.g. the room number 101.
type RoomID int

// String returns the decimal form of the id, as used in log attributes and metric labels.
func (id RoomID) String() string {
	return strconv.Itoa(int(id))
}

// Room is one room type's bookable inventory: a finite pool of interchangeable units.
//
// Room does no locking of its own. Book, BookFor, BookStay and Release must only be called by a single
// synchronized caller; the Inventory serializes them per room. A Room value returned by the
// Inventory is an independent snapshot and mutating it never changes the live inventory.
type Room struct {
	id             RoomID
	roomType       string
	availableUnits int
	available      bool
	currentGuest   string
	currentStay    Stay
}

// NewRoom creates a Room with a fixed starting number of available units.
func NewRoom(id RoomID, roomType string, availableUnits int) (Room, error) {
	if availableUnits < 0 {
		return Room{}, fmt.Errorf("%w: room %d has %d units", ErrNegativeUnits, id, availableUnits)
	}

	return Room{
		id:             id,
		roomType:       roomType,
		availableUnits: availableUnits,
		available:      availableUnits > 0,
	}, nil
}

// ID returns the immutable room id.
func (r Room) ID() RoomID {
	return r.id
}

// Type returns the room type label, e.g. "Suite".
func (r Room) Type() string {
	return r.roomType
}

// AvailableUnits returns the number of units that can still be booked.
func (r Room) AvailableUnits() int {
	return r.availableUnits
}

// IsAvailable reports whether at least one unit can be booked.
func (r Room) IsAvailable() bool {
	return r.available
}

// CurrentGuest returns the guest of the most recent booking, or "" after a release.
func (r Room) CurrentGuest() string {
	return r.currentGuest
}

// CurrentStay returns the stay of the most recent booking that carried one, or the zero Stay after a release.
func (r Room) CurrentStay() Stay {
	return r.currentStay
}

// Book takes one unit if any is left. It returns false and leaves the room unchanged otherwise.
func (r *Room) Book() bool {
	return r.BookFor("")
}

// BookFor works like Book and additionally records the guest on success.
func (r *Room) BookFor(guest string) bool {
	return r.BookStay(guest, Stay{})
}

// BookStay works like BookFor and additionally records a non-zero stay on success.
func (r *Room) BookStay(guest string, stay Stay) bool {
	if r.availableUnits <= 0 {
		return false
	}

	r.availableUnits--
	r.available = r.availableUnits > 0

	if guest != "" {
		r.currentGuest = guest
	}

	if !stay.IsZero() {
		r.currentStay = stay
	}

	return true
}

// Release puts one unit back and clears the guest and stay association.
//
// There is no upper bound: releasing more often than booking grows the units past the seeded value.
func (r *Room) Release() {
	r.availableUnits++
	r.available = true
	r.currentGuest = ""
	r.currentStay = Stay{}
}

// String implements fmt.Stringer for final status logging.
func (r Room) String() string {
	return fmt.Sprintf(
		"Room{id=%d, type=%q, available=%t, availableUnits=%d, currentGuest=%q}",
		r.id, r.roomType, r.available, r.availableUnits, r.currentGuest,
	)
}
