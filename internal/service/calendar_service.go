package service

import (
	"context"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/repository"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/scheduler"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CalendarService assembles availability and booking views. It only reads;
// all writes go through BookingService.
type CalendarService interface {
	// GetAvailableSlots returns the free slot start times for the amenity
	// over [start, end)
	GetAvailableSlots(ctx context.Context, amenityID string, start, end time.Time) ([]time.Time, error)

	// GetBookings returns bookings matching the filter
	GetBookings(ctx context.Context, filter *domain.BookingFilter) ([]*domain.Booking, error)

	// GetCalendar builds the merged per-amenity view of booked and available
	// slots. viewerID tags which booked slots belong to the caller.
	GetCalendar(ctx context.Context, filter *domain.BookingFilter, viewerID string) (*domain.CalendarView, error)
}

// calendarService implements CalendarService
type calendarService struct {
	amenityRepo repository.AmenityRepository
	store       repository.ReservationStore
	slotCache   SlotCache
}

// NewCalendarService creates a new calendar service
func NewCalendarService(
	amenityRepo repository.AmenityRepository,
	store repository.ReservationStore,
	slotCache SlotCache,
) CalendarService {
	return &calendarService{
		amenityRepo: amenityRepo,
		store:       store,
		slotCache:   slotCache,
	}
}

// GetAvailableSlots returns the free slot start times for the amenity
func (s *calendarService) GetAvailableSlots(ctx context.Context, amenityID string, start, end time.Time) ([]time.Time, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.calendar.get_available_slots")
	defer span.End()

	span.SetAttributes(attribute.String("amenity_id", amenityID))

	if amenityID == "" {
		span.SetStatus(codes.Error, "invalid amenity_id")
		return nil, domain.ErrInvalidAmenityID
	}
	if !start.Before(end) {
		span.SetStatus(codes.Error, "invalid time range")
		return nil, domain.ErrInvalidTimeRange
	}

	if s.slotCache != nil {
		if slots, ok := s.slotCache.Get(ctx, amenityID, start, end); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true), attribute.Int("count", len(slots)))
			span.SetStatus(codes.Ok, "")
			return slots, nil
		}
	}

	amenity, err := s.amenityRepo.GetByID(ctx, amenityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	active, err := s.store.FindOverlapping(ctx, amenityID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	slots := scheduler.CollectSlots(scheduler.AvailableSlots(amenity, active, start, end))

	if s.slotCache != nil {
		s.slotCache.Set(ctx, amenityID, start, end, slots)
	}

	span.SetAttributes(attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return slots, nil
}

// GetBookings returns bookings matching the filter
func (s *calendarService) GetBookings(ctx context.Context, filter *domain.BookingFilter) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.calendar.get_bookings")
	defer span.End()

	if filter == nil {
		span.SetStatus(codes.Error, "missing range")
		return nil, domain.ErrMissingRange
	}
	if err := filter.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	bookings, err := s.store.Query(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// GetCalendar builds the merged per-amenity view of booked and available slots
func (s *calendarService) GetCalendar(ctx context.Context, filter *domain.BookingFilter, viewerID string) (*domain.CalendarView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.calendar.get_calendar")
	defer span.End()

	if filter == nil {
		span.SetStatus(codes.Error, "missing range")
		return nil, domain.ErrMissingRange
	}
	if err := filter.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	bookings, err := s.store.Query(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	byAmenity := make(map[string][]*domain.Booking)
	for _, b := range bookings {
		byAmenity[b.AmenityID] = append(byAmenity[b.AmenityID], b)
	}

	// Amenities named in the filter appear even when they have no bookings,
	// so their availability still shows up in the view
	amenityIDs := filter.AmenityIDs
	if len(amenityIDs) == 0 {
		amenityIDs = make([]string, 0, len(byAmenity))
		for id := range byAmenity {
			amenityIDs = append(amenityIDs, id)
		}
	}

	view := &domain.CalendarView{
		Start:     filter.Start,
		End:       filter.End,
		Amenities: make([]domain.AmenityCalendar, 0, len(amenityIDs)),
	}

	for _, amenityID := range amenityIDs {
		cal := domain.AmenityCalendar{AmenityID: amenityID}

		for _, b := range byAmenity[amenityID] {
			cal.BookedSlots = append(cal.BookedSlots, domain.BookedSlot{
				Booking: b,
				Mine:    viewerID != "" && b.BelongsToUser(viewerID),
			})
		}

		slots, err := s.GetAvailableSlots(ctx, amenityID, filter.Start, filter.End)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		cal.AvailableSlots = slots

		view.Amenities = append(view.Amenities, cal)
	}

	span.SetAttributes(attribute.Int("amenity_count", len(view.Amenities)))
	span.SetStatus(codes.Ok, "")
	return view, nil
}
