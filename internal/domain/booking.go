package domain

import (
	"time"
)

// TimeLayout is the wire format for booking timestamps: naive local
// date-times at minute granularity. Timezone handling is the caller's
// responsibility.
const TimeLayout = "2006-01-02T15:04"

// BookingStatus represents the state of a booking
type BookingStatus string

const (
	// BookingStatusRequested is the initial and only active state
	BookingStatusRequested BookingStatus = "requested"
	// BookingStatusCancelled is terminal; cancelled bookings are invisible
	// to overlap, occupancy, and tenant-limit checks
	BookingStatusCancelled BookingStatus = "cancelled"
)

// String returns the string representation of the booking status
func (s BookingStatus) String() string {
	return string(s)
}

// IsActive reports whether the status counts toward conflicts and limits
func (s BookingStatus) IsActive() bool {
	return s != BookingStatusCancelled
}

// Booking reserves an amenity over the half-open interval [StartTime, EndTime)
type Booking struct {
	ID        string        `json:"id"`
	AmenityID string        `json:"amenity_id"`
	UserID    string        `json:"user_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsActive reports whether the booking counts toward conflicts and limits
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// Duration returns the booked length of time
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Overlaps applies the half-open interval test against [start, end)
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// BelongsToUser reports whether the booking was made by the given persona
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}
