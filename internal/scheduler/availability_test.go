package scheduler

import (
	"testing"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
)

func allWeekAmenity(minMinutes, maxMinutes int) *domain.Amenity {
	schedule := make([]domain.DailyAvailability, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		schedule = append(schedule, domain.DailyAvailability{
			Weekday: wd,
			Open:    domain.NewTimeOfDay(8, 0),
			Close:   domain.NewTimeOfDay(22, 0),
		})
	}
	return &domain.Amenity{
		ID:                 "amenity-001",
		Name:               "Tennis Court",
		WeeklySchedule:     schedule,
		BookingRequired:    true,
		AdvanceBookingDays: 30,
		MinDurationMinutes: minMinutes,
		MaxDurationMinutes: maxMinutes,
		MaintenanceStatus:  domain.MaintenanceStatusOperational,
	}
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func TestAvailableSlots_HourlyGrid(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	start := mustTime(t, "2026-03-02T08:00")
	end := mustTime(t, "2026-03-02T10:00")

	slots := CollectSlots(AvailableSlots(amenity, nil, start, end))

	want := []time.Time{
		mustTime(t, "2026-03-02T08:00"),
		mustTime(t, "2026-03-02T09:00"),
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(slots), slots)
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("slot %d: expected %v, got %v", i, want[i], slots[i])
		}
	}
}

func TestAvailableSlots_SkipsOccupied(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	start := mustTime(t, "2026-03-02T08:00")
	end := mustTime(t, "2026-03-02T12:00")

	active := []*domain.Booking{
		{
			ID:        "booking-001",
			AmenityID: amenity.ID,
			StartTime: mustTime(t, "2026-03-02T09:00"),
			EndTime:   mustTime(t, "2026-03-02T10:00"),
			Status:    domain.BookingStatusRequested,
		},
	}

	slots := CollectSlots(AvailableSlots(amenity, active, start, end))

	for _, s := range slots {
		if s.Equal(mustTime(t, "2026-03-02T09:00")) {
			t.Errorf("booked slot 09:00 should not be offered")
		}
	}
	// A booking ending at 10:00 leaves the 10:00 slot free
	found := false
	for _, s := range slots {
		if s.Equal(mustTime(t, "2026-03-02T10:00")) {
			found = true
		}
	}
	if !found {
		t.Errorf("slot at booking end time should be free, got %v", slots)
	}
}

func TestAvailableSlots_CancelledBookingsIgnored(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	start := mustTime(t, "2026-03-02T09:00")
	end := mustTime(t, "2026-03-02T10:00")

	active := []*domain.Booking{
		{
			ID:        "booking-001",
			StartTime: mustTime(t, "2026-03-02T09:00"),
			EndTime:   mustTime(t, "2026-03-02T10:00"),
			Status:    domain.BookingStatusCancelled,
		},
	}

	slots := CollectSlots(AvailableSlots(amenity, active, start, end))
	if len(slots) != 1 || !slots[0].Equal(start) {
		t.Errorf("cancelled booking must release its slot, got %v", slots)
	}
}

func TestAvailableSlots_ClosedDay(t *testing.T) {
	amenity := allWeekAmenity(60, 120)
	// Drop Monday from the schedule
	schedule := amenity.WeeklySchedule[:0]
	for _, d := range amenity.WeeklySchedule {
		if d.Weekday != time.Monday {
			schedule = append(schedule, d)
		}
	}
	amenity.WeeklySchedule = schedule

	// 2026-03-02 is a Monday
	start := mustTime(t, "2026-03-02T08:00")
	end := mustTime(t, "2026-03-02T22:00")

	slots := CollectSlots(AvailableSlots(amenity, nil, start, end))
	if len(slots) != 0 {
		t.Errorf("closed day must produce no slots, got %v", slots)
	}
}

func TestAvailableSlots_GridAnchoredOnHour(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	// Range starting at 08:30 anchors the grid at 08:00; 08:30 is not a slot
	start := mustTime(t, "2026-03-02T08:30")
	end := mustTime(t, "2026-03-02T11:00")

	slots := CollectSlots(AvailableSlots(amenity, nil, start, end))

	want := []time.Time{
		mustTime(t, "2026-03-02T08:00"),
		mustTime(t, "2026-03-02T09:00"),
		mustTime(t, "2026-03-02T10:00"),
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %v", len(want), slots)
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Errorf("slot %d: expected %v, got %v", i, want[i], slots[i])
		}
	}
}

func TestAvailableSlots_LastSlotFitsBeforeClose(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	start := mustTime(t, "2026-03-02T20:00")
	end := mustTime(t, "2026-03-02T23:59")

	slots := CollectSlots(AvailableSlots(amenity, nil, start, end))

	// 21:00 is the last start that still fits a 60 minute slot before 22:00
	last := mustTime(t, "2026-03-02T21:00")
	if len(slots) == 0 || !slots[len(slots)-1].Equal(last) {
		t.Errorf("expected last slot %v, got %v", last, slots)
	}
}

func TestAvailableSlots_Restartable(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	start := mustTime(t, "2026-03-02T08:00")
	end := mustTime(t, "2026-03-02T12:00")

	seq := AvailableSlots(amenity, nil, start, end)

	first := CollectSlots(seq)
	second := CollectSlots(seq)

	if len(first) != len(second) {
		t.Fatalf("second pass returned %d slots, first returned %d", len(second), len(first))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("slot %d differs between passes: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestAvailableSlots_EarlyStop(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	start := mustTime(t, "2026-03-02T08:00")
	end := mustTime(t, "2026-03-02T22:00")

	var got []time.Time
	for s := range AvailableSlots(amenity, nil, start, end) {
		got = append(got, s)
		if len(got) == 3 {
			break
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected early stop after 3 slots, got %d", len(got))
	}
}

func TestAvailableSlots_EmptyRange(t *testing.T) {
	amenity := allWeekAmenity(60, 120)

	at := mustTime(t, "2026-03-02T08:00")
	slots := CollectSlots(AvailableSlots(amenity, nil, at, at))
	if slots == nil {
		t.Fatal("CollectSlots must never return nil")
	}
	if len(slots) != 0 {
		t.Errorf("empty range must produce no slots, got %v", slots)
	}
}
