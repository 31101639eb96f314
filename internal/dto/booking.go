package dto

import (
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
)

// BookAmenityRequest represents a request to reserve an amenity slot.
// Times use the naive local minute format 2006-01-02T15:04.
type BookAmenityRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// Parse decodes the request times
func (r *BookAmenityRequest) Parse() (start, end time.Time, err error) {
	start, err = time.Parse(domain.TimeLayout, r.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidTimeRange
	}
	end, err = time.Parse(domain.TimeLayout, r.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidTimeRange
	}
	return start, end, nil
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID        string    `json:"id"`
	AmenityID string    `json:"amenity_id"`
	UserID    string    `json:"user_id"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToBookingResponse converts a domain booking to its API shape
func ToBookingResponse(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:        b.ID,
		AmenityID: b.AmenityID,
		UserID:    b.UserID,
		StartTime: b.StartTime.Format(domain.TimeLayout),
		EndTime:   b.EndTime.Format(domain.TimeLayout),
		Status:    b.Status.String(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToBookingResponses converts a booking list
func ToBookingResponses(bookings []*domain.Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ToBookingResponse(b))
	}
	return out
}

// AvailabilityResponse is the result of a read-only availability check
type AvailabilityResponse struct {
	AmenityID string `json:"amenity_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// SlotsResponse lists the free slot start times for an amenity range
type SlotsResponse struct {
	AmenityID string   `json:"amenity_id"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Slots     []string `json:"slots"`
}

// FormatSlots renders slot timestamps in the wire layout
func FormatSlots(slots []time.Time) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Format(domain.TimeLayout))
	}
	return out
}

// BookedSlotResponse is one reserved interval in a calendar view
type BookedSlotResponse struct {
	Booking *BookingResponse `json:"booking"`
	Mine    bool             `json:"mine"`
}

// AmenityCalendarResponse is one amenity's merged calendar
type AmenityCalendarResponse struct {
	AmenityID      string                `json:"amenity_id"`
	BookedSlots    []*BookedSlotResponse `json:"booked_slots"`
	AvailableSlots []string              `json:"available_slots"`
}

// CalendarResponse is the merged multi-amenity calendar view
type CalendarResponse struct {
	StartTime string                     `json:"start_time"`
	EndTime   string                     `json:"end_time"`
	Amenities []*AmenityCalendarResponse `json:"amenities"`
}

// ToCalendarResponse converts a domain calendar view to its API shape
func ToCalendarResponse(view *domain.CalendarView) *CalendarResponse {
	resp := &CalendarResponse{
		StartTime: view.Start.Format(domain.TimeLayout),
		EndTime:   view.End.Format(domain.TimeLayout),
		Amenities: make([]*AmenityCalendarResponse, 0, len(view.Amenities)),
	}

	for _, cal := range view.Amenities {
		ac := &AmenityCalendarResponse{
			AmenityID:      cal.AmenityID,
			BookedSlots:    make([]*BookedSlotResponse, 0, len(cal.BookedSlots)),
			AvailableSlots: FormatSlots(cal.AvailableSlots),
		}
		for _, slot := range cal.BookedSlots {
			ac.BookedSlots = append(ac.BookedSlots, &BookedSlotResponse{
				Booking: ToBookingResponse(slot.Booking),
				Mine:    slot.Mine,
			})
		}
		resp.Amenities = append(resp.Amenities, ac)
	}

	return resp
}

// ErrorResponse is the uniform error payload. Reason carries the stable
// rejection reason code when a business rule turned the request down.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// SuccessResponse wraps list payloads
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}
