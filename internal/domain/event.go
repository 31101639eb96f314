package domain

import (
	"fmt"
	"time"
)

// BookingEventType identifies a booking lifecycle event
type BookingEventType string

const (
	BookingEventRequested BookingEventType = "booking.requested"
	BookingEventCancelled BookingEventType = "booking.cancelled"
	BookingEventRejected  BookingEventType = "booking.rejected"
)

// BookingEvent is the message published to the event stream on booking
// lifecycle transitions. Downstream consumers (notification delivery,
// reporting) are outside this service.
type BookingEvent struct {
	EventID    string           `json:"event_id"`
	EventType  BookingEventType `json:"event_type"`
	AmenityID  string           `json:"amenity_id"`
	BookingID  string           `json:"booking_id,omitempty"`
	UserID     string           `json:"user_id"`
	StartTime  *time.Time       `json:"start_time,omitempty"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
	Status     string           `json:"status,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewBookingEvent builds a lifecycle event from a booking
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:    eventID,
		EventType:  eventType,
		AmenityID:  booking.AmenityID,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		StartTime:  &booking.StartTime,
		EndTime:    &booking.EndTime,
		Status:     booking.Status.String(),
		OccurredAt: time.Now(),
	}
}

// NewRejectionEvent builds a lifecycle event for a rejected booking attempt
func NewRejectionEvent(amenityID, userID string, reason RejectReason, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:    eventID,
		EventType:  BookingEventRejected,
		AmenityID:  amenityID,
		UserID:     userID,
		Reason:     string(reason),
		OccurredAt: time.Now(),
	}
}

// Key returns the partition key. Events for one amenity stay ordered.
func (e *BookingEvent) Key() string {
	return fmt.Sprintf("amenity:%s", e.AmenityID)
}
