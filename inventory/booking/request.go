package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
)

// Status is the lifecycle state of a Request.
type Status int

const (
	// StatusPending is a freshly built request that was not handed to a Coordinator yet.
	StatusPending Status = iota
	// StatusSubmitted is a request queued for a worker.
	StatusSubmitted
	// StatusRunning is a request a worker is currently booking.
	StatusRunning
	// StatusSucceeded is a request whose room unit was booked.
	StatusSucceeded
	// StatusFailed is a request that could not be booked.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSubmitted:
		return "submitted"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type requestInput struct {
	RoomID int    `validate:"gte=100,lte=999"`
	Guest  string `validate:"required,max=200"`
}

type stayInput struct {
	CheckIn  time.Time `validate:"required,gte"`
	CheckOut time.Time `validate:"required,gtfield=CheckIn"`
}

// Request asks for one unit of a room on behalf of a guest. Request values are immutable:
// status changes produce a new value.
type Request struct {
	id     uuid.UUID
	roomID inventory.RoomID
	guest  string
	stay   inventory.Stay
	status Status
}

// NewRequest builds a pending Request with a fresh id.
// The guest is trimmed and must not be empty, the room number must be within 100..999.
func NewRequest(roomID inventory.RoomID, guest string) (Request, error) {
	guest = strings.TrimSpace(guest)

	if err := validate.Struct(requestInput{RoomID: int(roomID), Guest: guest}); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return Request{
		id:     uuid.New(),
		roomID: roomID,
		guest:  guest,
		status: StatusPending,
	}, nil
}

// NewStayRequest works like NewRequest and asks for the unit from checkIn to checkOut.
// Check-in must not be in the past and check-out must be after check-in.
func NewStayRequest(roomID inventory.RoomID, guest string, checkIn, checkOut time.Time) (Request, error) {
	request, err := NewRequest(roomID, guest)
	if err != nil {
		return Request{}, err
	}

	if stayErr := validate.Struct(stayInput{CheckIn: checkIn, CheckOut: checkOut}); stayErr != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, stayErr)
	}

	request.stay = inventory.Stay{CheckIn: checkIn, CheckOut: checkOut}

	return request, nil
}

// ID returns the unique request id.
func (r Request) ID() uuid.UUID {
	return r.id
}

// RoomID returns the requested room.
func (r Request) RoomID() inventory.RoomID {
	return r.roomID
}

// Guest returns the requester label.
func (r Request) Guest() string {
	return r.guest
}

// Stay returns the requested stay, or the zero Stay for a request without dates.
func (r Request) Stay() inventory.Stay {
	return r.stay
}

// Status returns the lifecycle state.
func (r Request) Status() Status {
	return r.status
}

func (r Request) String() string {
	if r.stay.IsZero() {
		return fmt.Sprintf("Request{id=%s, room=%d, guest=%q, status=%s}", r.id, r.roomID, r.guest, r.status)
	}

	return fmt.Sprintf("Request{id=%s, room=%d, guest=%q, checkIn=%s, checkOut=%s, status=%s}",
		r.id, r.roomID, r.guest, r.stay.CheckIn.Format(time.RFC3339), r.stay.CheckOut.Format(time.RFC3339), r.status)
}

// allowedTransitions maps each status to the statuses it may move to.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusSubmitted},
	StatusSubmitted: {StatusRunning},
	StatusRunning:   {StatusSucceeded, StatusFailed},
}

// withStatus returns a copy of r in the next status, or ErrInvalidStatusTransition.
func (r Request) withStatus(next Status) (Request, error) {
	for _, allowed := range allowedTransitions[r.status] {
		if allowed == next {
			r.status = next
			return r, nil
		}
	}

	return r, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, r.status, next)
}
