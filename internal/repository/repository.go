package repository

import (
	"context"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
)

// AmenityRepository reads amenity configuration. Amenity CRUD is owned by
// the amenity management surface; the scheduler never writes here.
type AmenityRepository interface {
	// GetByID returns the amenity or domain.ErrAmenityNotFound
	GetByID(ctx context.Context, id string) (*domain.Amenity, error)
}

// ReservationStore is the durable booking store. InsertIfFree is the
// linearization point for contested slots: the store, not the validator,
// is the source of truth for overlap.
type ReservationStore interface {
	// FindOverlapping returns active bookings on the amenity whose half-open
	// interval overlaps [start, end)
	FindOverlapping(ctx context.Context, amenityID string, start, end time.Time) ([]*domain.Booking, error)

	// CountForUserInWindow counts the user's active bookings on the amenity
	// whose start falls in [windowStart, windowEnd)
	CountForUserInWindow(ctx context.Context, userID, amenityID string, windowStart, windowEnd time.Time) (int, error)

	// CountOccupancy counts active bookings across all users overlapping
	// [start, end)
	CountOccupancy(ctx context.Context, amenityID string, start, end time.Time) (int, error)

	// InsertIfFree atomically inserts the booking iff no overlapping active
	// booking exists; returns domain.ErrBookingConflict when the slot is taken
	InsertIfFree(ctx context.Context, booking *domain.Booking) error

	// GetByID returns the booking or domain.ErrBookingNotFound
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// MarkCancelled moves a requested booking to cancelled; returns
	// domain.ErrBookingNotFound when the booking is missing or already
	// cancelled, so a repeated cancel never reports success twice
	MarkCancelled(ctx context.Context, id string) error

	// Query returns bookings matching all supplied filter dimensions whose
	// interval overlaps the filter range
	Query(ctx context.Context, filter *domain.BookingFilter) ([]*domain.Booking, error)
}
