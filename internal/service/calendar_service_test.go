package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
)

func TestGetAvailableSlots_ComputesAndCaches(t *testing.T) {
	amenityRepo := &MockAmenityRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Amenity, error) {
			return testAmenity(), nil
		},
	}
	store := &MockReservationStore{}
	cache := &MockSlotCache{}

	svc := NewCalendarService(amenityRepo, store, cache)

	slots, err := svc.GetAvailableSlots(context.Background(), "amenity-001",
		testTime(t, "2026-03-02T08:00"), testTime(t, "2026-03-02T11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Time{
		testTime(t, "2026-03-02T08:00"),
		testTime(t, "2026-03-02T09:00"),
		testTime(t, "2026-03-02T10:00"),
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %v", len(want), slots)
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("slot %d: expected %v, got %v", i, want[i], slots[i])
		}
	}
	if cache.SetCalls != 1 {
		t.Errorf("computed slots must be written to the cache, got %d sets", cache.SetCalls)
	}
}

func TestGetAvailableSlots_CacheHitSkipsStore(t *testing.T) {
	cached := []time.Time{testTime(t, "2026-03-02T08:00")}
	cache := &MockSlotCache{slots: cached, hit: true}

	storeQueried := false
	store := &MockReservationStore{
		FindOverlappingFunc: func(ctx context.Context, amenityID string, start, end time.Time) ([]*domain.Booking, error) {
			storeQueried = true
			return nil, nil
		},
	}

	svc := NewCalendarService(&MockAmenityRepository{}, store, cache)

	slots, err := svc.GetAvailableSlots(context.Background(), "amenity-001",
		testTime(t, "2026-03-02T08:00"), testTime(t, "2026-03-02T11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 || !slots[0].Equal(cached[0]) {
		t.Errorf("expected cached slots, got %v", slots)
	}
	if storeQueried {
		t.Error("cache hit must not reach the store")
	}
}

func TestGetAvailableSlots_InvalidInput(t *testing.T) {
	svc := NewCalendarService(&MockAmenityRepository{}, &MockReservationStore{}, nil)

	at := testTime(t, "2026-03-02T08:00")

	if _, err := svc.GetAvailableSlots(context.Background(), "", at, at.Add(time.Hour)); !errors.Is(err, domain.ErrInvalidAmenityID) {
		t.Errorf("expected ErrInvalidAmenityID, got %v", err)
	}
	if _, err := svc.GetAvailableSlots(context.Background(), "amenity-001", at, at); !errors.Is(err, domain.ErrInvalidTimeRange) {
		t.Errorf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestGetBookings_FilterValidation(t *testing.T) {
	svc := NewCalendarService(&MockAmenityRepository{}, &MockReservationStore{}, nil)

	if _, err := svc.GetBookings(context.Background(), nil); !errors.Is(err, domain.ErrMissingRange) {
		t.Errorf("nil filter: expected ErrMissingRange, got %v", err)
	}

	if _, err := svc.GetBookings(context.Background(), &domain.BookingFilter{}); !errors.Is(err, domain.ErrMissingRange) {
		t.Errorf("zero range: expected ErrMissingRange, got %v", err)
	}

	at := testTime(t, "2026-03-02T08:00")
	filter := &domain.BookingFilter{Start: at.Add(time.Hour), End: at}
	if _, err := svc.GetBookings(context.Background(), filter); !errors.Is(err, domain.ErrInvalidTimeRange) {
		t.Errorf("inverted range: expected ErrInvalidTimeRange, got %v", err)
	}
}

func TestGetBookings_EmptyResultIsNotAnError(t *testing.T) {
	svc := NewCalendarService(&MockAmenityRepository{}, &MockReservationStore{}, nil)

	bookings, err := svc.GetBookings(context.Background(), &domain.BookingFilter{
		Start: testTime(t, "2026-03-02T00:00"),
		End:   testTime(t, "2026-03-03T00:00"),
	})
	if err != nil {
		t.Fatalf("empty result must not error, got %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("expected no bookings, got %v", bookings)
	}
}

func TestGetCalendar_TagsViewerBookings(t *testing.T) {
	amenityRepo := &MockAmenityRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Amenity, error) {
			return testAmenity(), nil
		},
	}
	store := &MockReservationStore{
		QueryFunc: func(ctx context.Context, filter *domain.BookingFilter) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{
					ID: "booking-mine", AmenityID: "amenity-001", UserID: "user-001",
					StartTime: testTime(t, "2026-03-02T09:00"),
					EndTime:   testTime(t, "2026-03-02T10:00"),
					Status:    domain.BookingStatusRequested,
				},
				{
					ID: "booking-theirs", AmenityID: "amenity-001", UserID: "user-002",
					StartTime: testTime(t, "2026-03-02T11:00"),
					EndTime:   testTime(t, "2026-03-02T12:00"),
					Status:    domain.BookingStatusRequested,
				},
			}, nil
		},
	}

	svc := NewCalendarService(amenityRepo, store, nil)

	view, err := svc.GetCalendar(context.Background(), &domain.BookingFilter{
		Start: testTime(t, "2026-03-02T08:00"),
		End:   testTime(t, "2026-03-02T14:00"),
	}, "user-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Amenities) != 1 {
		t.Fatalf("expected one amenity in the view, got %d", len(view.Amenities))
	}
	cal := view.Amenities[0]
	if len(cal.BookedSlots) != 2 {
		t.Fatalf("expected two booked slots, got %d", len(cal.BookedSlots))
	}
	for _, slot := range cal.BookedSlots {
		wantMine := slot.Booking.ID == "booking-mine"
		if slot.Mine != wantMine {
			t.Errorf("booking %s: expected mine=%v, got %v", slot.Booking.ID, wantMine, slot.Mine)
		}
	}
	if len(cal.AvailableSlots) == 0 {
		t.Error("calendar view must include available slots")
	}
}

func TestGetCalendar_FilterNamedAmenityWithNoBookings(t *testing.T) {
	amenityRepo := &MockAmenityRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Amenity, error) {
			return testAmenity(), nil
		},
	}

	svc := NewCalendarService(amenityRepo, &MockReservationStore{}, nil)

	view, err := svc.GetCalendar(context.Background(), &domain.BookingFilter{
		AmenityIDs: []string{"amenity-001"},
		Start:      testTime(t, "2026-03-02T08:00"),
		End:        testTime(t, "2026-03-02T12:00"),
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Amenities) != 1 {
		t.Fatalf("filter-named amenity must appear even without bookings, got %d entries", len(view.Amenities))
	}
	if len(view.Amenities[0].BookedSlots) != 0 {
		t.Errorf("expected no booked slots, got %v", view.Amenities[0].BookedSlots)
	}
	if len(view.Amenities[0].AvailableSlots) == 0 {
		t.Error("availability must still be computed for the empty amenity")
	}
}

func TestGetCalendar_AnonymousViewerTagsNothing(t *testing.T) {
	amenityRepo := &MockAmenityRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Amenity, error) {
			return testAmenity(), nil
		},
	}
	store := &MockReservationStore{
		QueryFunc: func(ctx context.Context, filter *domain.BookingFilter) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{
					ID: "booking-001", AmenityID: "amenity-001", UserID: "user-001",
					StartTime: testTime(t, "2026-03-02T09:00"),
					EndTime:   testTime(t, "2026-03-02T10:00"),
					Status:    domain.BookingStatusRequested,
				},
			}, nil
		},
	}

	svc := NewCalendarService(amenityRepo, store, nil)

	view, err := svc.GetCalendar(context.Background(), &domain.BookingFilter{
		Start: testTime(t, "2026-03-02T08:00"),
		End:   testTime(t, "2026-03-02T12:00"),
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Amenities[0].BookedSlots[0].Mine {
		t.Error("anonymous viewer must not own any booking")
	}
}
