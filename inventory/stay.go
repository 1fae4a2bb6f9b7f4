package inventory

import "time"

// Stay is the check-in and check-out time of a booking. The zero Stay means no dates were requested.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// IsZero reports whether neither date is set.
func (s Stay) IsZero() bool {
	return s.CheckIn.IsZero() && s.CheckOut.IsZero()
}
