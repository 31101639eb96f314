package service

import (
	"context"
	"errors"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/metrics"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/repository"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/scheduler"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SlotCache caches computed availability per amenity. Implementations must
// treat cache failures as misses.
type SlotCache interface {
	Get(ctx context.Context, amenityID string, start, end time.Time) ([]time.Time, bool)
	Set(ctx context.Context, amenityID string, start, end time.Time, slots []time.Time)
	Invalidate(ctx context.Context, amenityID string)
}

// BookingService defines the interface for booking business logic
type BookingService interface {
	// BookAmenity validates and atomically reserves a slot. Business
	// rejections carry a *domain.RejectionError.
	BookAmenity(ctx context.Context, amenityID, userID string, start, end time.Time) (*domain.Booking, error)

	// CancelBooking cancels a requested booking. Cancelling a missing or
	// already-cancelled booking returns domain.ErrBookingNotFound.
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)

	// IsAvailable runs the rule chain without writing anything
	IsAvailable(ctx context.Context, amenityID, userID string, start, end time.Time) error

	// GetBooking retrieves a booking by ID
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
}

// bookingService implements BookingService
type bookingService struct {
	amenityRepo    repository.AmenityRepository
	store          repository.ReservationStore
	validator      *scheduler.Validator
	eventPublisher EventPublisher
	slotCache      SlotCache
	now            func() time.Time
}

// BookingServiceConfig contains configuration for booking service
type BookingServiceConfig struct {
	// Now is the clock used for advance-window and limit-period checks.
	// Defaults to time.Now.
	Now func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	amenityRepo repository.AmenityRepository,
	store repository.ReservationStore,
	validator *scheduler.Validator,
	eventPublisher EventPublisher,
	slotCache SlotCache,
	cfg *BookingServiceConfig,
) BookingService {
	now := time.Now
	if cfg != nil && cfg.Now != nil {
		now = cfg.Now
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		amenityRepo:    amenityRepo,
		store:          store,
		validator:      validator,
		eventPublisher: eventPublisher,
		slotCache:      slotCache,
		now:            now,
	}
}

// BookAmenity validates and atomically reserves a slot
func (s *bookingService) BookAmenity(ctx context.Context, amenityID, userID string, start, end time.Time) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.book_amenity")
	defer span.End()

	span.SetAttributes(
		attribute.String("amenity_id", amenityID),
		attribute.String("user_id", userID),
	)

	if amenityID == "" {
		span.SetStatus(codes.Error, "invalid amenity_id")
		return nil, domain.ErrInvalidAmenityID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if !start.Before(end) {
		span.SetStatus(codes.Error, "invalid time range")
		return nil, domain.ErrInvalidTimeRange
	}

	amenity, err := s.amenityRepo.GetByID(ctx, amenityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := s.now()
	if err := s.validate(ctx, amenity, userID, start, end, now); err != nil {
		return nil, s.rejected(ctx, span, amenityID, userID, err)
	}

	booking := &domain.Booking{
		ID:        uuid.New().String(),
		AmenityID: amenityID,
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Status:    domain.BookingStatusRequested,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.InsertIfFree(ctx, booking)
	if errors.Is(err, domain.ErrBookingConflict) {
		metrics.RecordBookingConflict(ctx, amenityID)
		span.AddEvent("insert_conflict")

		// A concurrent booking landed between validation and insert.
		// Re-validate once so the caller gets the business reason when one
		// exists, then retry the insert a single time.
		if verr := s.validate(ctx, amenity, userID, start, end, now); verr != nil {
			return nil, s.rejected(ctx, span, amenityID, userID, verr)
		}

		err = s.store.InsertIfFree(ctx, booking)
	}
	if err != nil {
		if errors.Is(err, domain.ErrBookingConflict) {
			// Validation still passes, so this is a write race, not a
			// business rejection. Surface the conflict itself.
			metrics.RecordBookingConflict(ctx, amenityID)
			span.SetStatus(codes.Error, "booking conflict")
			return nil, domain.ErrBookingConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordBookingCreated(ctx, amenityID)
	if s.slotCache != nil {
		s.slotCache.Invalidate(ctx, amenityID)
	}

	if perr := s.eventPublisher.PublishBookingRequested(ctx, booking); perr != nil {
		// Event delivery is best effort; the booking is already durable
		span.RecordError(perr)
	}

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// CancelBooking cancels a requested booking
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel_booking")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}

	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.store.MarkCancelled(ctx, bookingID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelled
	booking.UpdatedAt = s.now()

	metrics.RecordBookingCancelled(ctx, booking.AmenityID)
	if s.slotCache != nil {
		s.slotCache.Invalidate(ctx, booking.AmenityID)
	}

	if perr := s.eventPublisher.PublishBookingCancelled(ctx, booking); perr != nil {
		span.RecordError(perr)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// IsAvailable runs the rule chain without writing anything
func (s *bookingService) IsAvailable(ctx context.Context, amenityID, userID string, start, end time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.is_available")
	defer span.End()

	span.SetAttributes(attribute.String("amenity_id", amenityID))

	if amenityID == "" {
		span.SetStatus(codes.Error, "invalid amenity_id")
		return domain.ErrInvalidAmenityID
	}
	if !start.Before(end) {
		span.SetStatus(codes.Error, "invalid time range")
		return domain.ErrInvalidTimeRange
	}

	amenity, err := s.amenityRepo.GetByID(ctx, amenityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.validate(ctx, amenity, userID, start, end, s.now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetBooking retrieves a booking by ID
func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_booking")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}

	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

func (s *bookingService) validate(ctx context.Context, amenity *domain.Amenity, userID string, start, end, now time.Time) error {
	started := time.Now()
	err := s.validator.Validate(ctx, amenity, userID, start, end, now)
	metrics.RecordValidationDuration(ctx, amenity.ID, time.Since(started).Seconds())
	return err
}

// rejected records rejection metrics, publishes the rejection event for
// business rejections, and passes the error through
func (s *bookingService) rejected(ctx context.Context, span trace.Span, amenityID, userID string, err error) error {
	span.SetStatus(codes.Error, err.Error())

	if reason, ok := domain.RejectionReason(err); ok {
		span.SetAttributes(attribute.String("reject_reason", string(reason)))
		metrics.RecordBookingRejected(ctx, amenityID, string(reason))
		if perr := s.eventPublisher.PublishBookingRejected(ctx, amenityID, userID, reason); perr != nil {
			span.RecordError(perr)
		}
	}

	return err
}
