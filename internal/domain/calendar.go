package domain

import "time"

// BookingFilter selects bookings for calendar queries. All supplied
// dimensions must match; Start/End are required and bound the overlap window.
type BookingFilter struct {
	UserIDs    []string
	AmenityIDs []string
	Statuses   []BookingStatus
	Start      time.Time
	End        time.Time
}

// Validate checks the filter for malformed input
func (f *BookingFilter) Validate() error {
	if f == nil || f.Start.IsZero() || f.End.IsZero() {
		return ErrMissingRange
	}
	if !f.Start.Before(f.End) {
		return ErrInvalidTimeRange
	}
	return nil
}

// BookedSlot is a booking as shown on a calendar. Mine is set when the
// booking belongs to the persona requesting the calendar, so callers can
// distinguish own bookings without leaking other tenants' identities.
type BookedSlot struct {
	Booking *Booking `json:"booking"`
	Mine    bool     `json:"mine"`
}

// AmenityCalendar is one amenity's bookings and free slots over a range
type AmenityCalendar struct {
	AmenityID      string       `json:"amenity_id"`
	BookedSlots    []BookedSlot `json:"booked_slots"`
	AvailableSlots []time.Time  `json:"available_slots"`
}

// CalendarView aggregates per-amenity calendars for a query range.
// An empty view is a normal, successful response.
type CalendarView struct {
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	Amenities []AmenityCalendar `json:"amenities"`
}
