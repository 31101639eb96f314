package scheduler

import (
	"fmt"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
)

// PeriodStart computes the start of the tenant-limit window containing now.
// Every period is matched explicitly: an unknown period is a configuration
// error, not a silently wrong date.
func PeriodStart(period domain.LimitPeriod, now time.Time) (time.Time, error) {
	switch period {
	case domain.LimitPeriodDaily:
		return startOfDay(now), nil
	case domain.LimitPeriodWeekly:
		return startOfDay(now.AddDate(0, 0, -(isoWeekday(now) - 1))), nil
	case domain.LimitPeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unknown booking limit period: %q", period)
}

// PeriodEnd computes the exclusive end of the window starting at periodStart
func PeriodEnd(period domain.LimitPeriod, periodStart time.Time) (time.Time, error) {
	switch period {
	case domain.LimitPeriodDaily:
		return periodStart.AddDate(0, 0, 1), nil
	case domain.LimitPeriodWeekly:
		return periodStart.AddDate(0, 0, 7), nil
	case domain.LimitPeriodMonthly:
		return periodStart.AddDate(0, 1, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown booking limit period: %q", period)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isoWeekday maps Go's Sunday-based weekday to ISO numbering (Mon=1..Sun=7)
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
