package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Lookup errors
	ErrAmenityNotFound = errors.New("amenity not found")
	ErrBookingNotFound = errors.New("booking not found")

	// Validation errors
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrInvalidAmenityID = errors.New("invalid amenity id")
	ErrInvalidBookingID = errors.New("invalid booking id")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrMissingRange     = errors.New("calendar range is required")

	// ErrBookingConflict is raised by the store when an insert loses the race
	// against a concurrent overlapping booking
	ErrBookingConflict = errors.New("booking conflicts with an existing reservation")

	// ErrStoreTimeout marks a transient store failure; callers may retry
	// with unchanged input
	ErrStoreTimeout = errors.New("reservation store timed out")
)

// RejectReason identifies which business rule rejected a booking request.
// Reasons are stable contracts; they are never collapsed into a generic error.
type RejectReason string

const (
	ReasonUnavailable           RejectReason = "unavailable"
	ReasonUnderMaintenance      RejectReason = "under_maintenance"
	ReasonBookingNotApplicable  RejectReason = "booking_not_applicable"
	ReasonOutsideOperatingHours RejectReason = "outside_operating_hours"
	ReasonTooFarInAdvance       RejectReason = "too_far_in_advance"
	ReasonDurationOutOfRange    RejectReason = "duration_out_of_range"
	ReasonTenantLimitReached    RejectReason = "tenant_limit_reached"
	ReasonCapacityReached       RejectReason = "capacity_reached"
)

// RejectionError is a booking rejected by a validation rule
type RejectionError struct {
	Reason RejectReason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("booking rejected: %s", e.Reason)
}

// Reject builds a RejectionError for the given reason
func Reject(reason RejectReason) error {
	return &RejectionError{Reason: reason}
}

// RejectionReason extracts the reason when err is a rejection
func RejectionReason(err error) (RejectReason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

// IsRejection checks if the error is a business rule rejection
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAmenityNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

// IsValidationError checks if the error is a malformed-request error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidAmenityID) ||
		errors.Is(err, ErrInvalidBookingID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrMissingRange)
}

// IsConflictError checks if the error is a store-level race loss
func IsConflictError(err error) bool {
	return errors.Is(err, ErrBookingConflict)
}

// IsTransientError checks if the error is safe to retry with unchanged input
func IsTransientError(err error) bool {
	return errors.Is(err, ErrStoreTimeout)
}
