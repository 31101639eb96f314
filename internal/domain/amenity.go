package domain

import (
	"fmt"
	"time"
)

// MaintenanceStatus describes whether an amenity is usable
type MaintenanceStatus string

const (
	MaintenanceStatusOperational MaintenanceStatus = "operational"
	MaintenanceStatusMaintenance MaintenanceStatus = "maintenance"
	MaintenanceStatusClosed      MaintenanceStatus = "closed"
)

// String returns the string representation of the maintenance status
func (s MaintenanceStatus) String() string {
	return string(s)
}

// LimitPeriod is the rolling window over which a tenant's booking count is capped
type LimitPeriod string

const (
	LimitPeriodDaily   LimitPeriod = "daily"
	LimitPeriodWeekly  LimitPeriod = "weekly"
	LimitPeriodMonthly LimitPeriod = "monthly"
)

// String returns the string representation of the limit period
func (p LimitPeriod) String() string {
	return string(p)
}

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// Bookings operate on naive local timestamps, so a plain minute offset is
// all the schedule needs.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute components
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayFrom extracts the minute-of-day from a timestamp
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// String formats the time of day as HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Minutes returns the raw minute offset
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// DailyAvailability is one weekday's opening window. Open must precede Close.
type DailyAvailability struct {
	Weekday time.Weekday `json:"weekday"`
	Open    TimeOfDay    `json:"open_time"`
	Close   TimeOfDay    `json:"close_time"`
}

// Amenity is a shared, time-boxed resource (pool, gym, party room) with a
// weekly opening schedule. Configuration is owned by amenity management;
// the scheduler only reads it.
type Amenity struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`

	WeeklySchedule []DailyAvailability `json:"weekly_schedule"`

	BookingRequired      bool        `json:"is_booking_required"`
	AdvanceBookingDays   int         `json:"advance_booking_period_days"`
	MinDurationMinutes   int         `json:"minimum_booking_duration"`
	MaxDurationMinutes   int         `json:"booking_duration_limit"`
	MaxBookingsPerTenant int         `json:"max_bookings_per_tenant"`
	LimitPeriod          LimitPeriod `json:"booking_limit_period"`

	// Capacity is the maximum number of concurrent occupants; nil means unlimited.
	Capacity *int `json:"capacity,omitempty"`

	MaintenanceStatus MaintenanceStatus `json:"maintenance_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleFor returns the opening window for a weekday. The second return is
// false when the amenity is closed all day.
func (a *Amenity) ScheduleFor(weekday time.Weekday) (DailyAvailability, bool) {
	for _, d := range a.WeeklySchedule {
		if d.Weekday == weekday {
			return d, true
		}
	}
	return DailyAvailability{}, false
}

// SlotStep is the slot grid spacing, equal to the minimum booking duration
func (a *Amenity) SlotStep() time.Duration {
	return time.Duration(a.MinDurationMinutes) * time.Minute
}

// IsOperational reports whether the amenity can take bookings at all
func (a *Amenity) IsOperational() bool {
	return a.MaintenanceStatus == MaintenanceStatusOperational
}
