// Package scheduler holds the pure booking logic: slot computation,
// overlap detection, and the ordered rule chain. Nothing here touches
// storage directly except through the injected store interfaces, and the
// slot generator touches no storage at all.
package scheduler

import (
	"iter"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
)

// AvailableSlots returns the free slot-start timestamps in [rangeStart,
// rangeEnd), stepped by the amenity's minimum booking duration. The sequence
// is lazy, finite, and restartable: ranging over it twice yields the same
// slots.
//
// The grid is anchored at the top of the hour of rangeStart, not at the
// amenity's open time. With an open time that is not on the hour the grid
// can miss the first part of the opening window; the platform has always
// behaved this way and callers depend on it.
func AvailableSlots(amenity *domain.Amenity, active []*domain.Booking, rangeStart, rangeEnd time.Time) iter.Seq[time.Time] {
	step := amenity.SlotStep()
	if step <= 0 || !rangeStart.Before(rangeEnd) {
		return func(yield func(time.Time) bool) {}
	}

	occupied := occupiedStarts(active, step)
	gridStart := rangeStart.Truncate(time.Hour)

	return func(yield func(time.Time) bool) {
		for t := gridStart; t.Before(rangeEnd); t = t.Add(step) {
			window, open := amenity.ScheduleFor(t.Weekday())
			if !open {
				continue
			}
			tod := domain.TimeOfDayFrom(t)
			if tod.Minutes() < window.Open.Minutes() {
				continue
			}
			// The slot must fit before close
			if tod.Minutes() > window.Close.Minutes()-amenity.MinDurationMinutes {
				continue
			}
			if _, taken := occupied[t.Unix()]; taken {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// CollectSlots drains the slot sequence into a slice. The result is never
// nil, so an empty range serializes as [] rather than null.
func CollectSlots(seq iter.Seq[time.Time]) []time.Time {
	slots := []time.Time{}
	for s := range seq {
		slots = append(slots, s)
	}
	return slots
}

// occupiedStarts marks every slot-start covered by an active booking.
// Each booking is walked from its minute-truncated start in step increments
// up to one minute before its end, so a booking ending exactly on a grid
// point leaves that point free.
func occupiedStarts(active []*domain.Booking, step time.Duration) map[int64]struct{} {
	occupied := make(map[int64]struct{})
	for _, b := range active {
		if !b.IsActive() {
			continue
		}
		for t := b.StartTime.Truncate(time.Minute); t.Before(b.EndTime); t = t.Add(step) {
			occupied[t.Unix()] = struct{}{}
		}
	}
	return occupied
}
