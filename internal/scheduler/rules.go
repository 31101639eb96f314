package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/repository"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RuleContext is the immutable input every rule judges: the amenity
// configuration, the requesting persona, the candidate interval, and the
// clock reading the chain was started with. Rules never mutate state.
type RuleContext struct {
	Amenity *domain.Amenity
	UserID  string
	Start   time.Time
	End     time.Time
	Now     time.Time
}

// Rule is one booking constraint. Check returns nil to pass, a
// *domain.RejectionError with the rule's reason to reject, or a wrapped
// store error when the rule could not be evaluated.
type Rule interface {
	Name() string
	Check(ctx context.Context, rc *RuleContext) error
}

// Validator runs the ordered, short-circuiting rule chain for a booking
// request. Order matters: conflict first, cheapest configuration checks
// next, counting queries last.
type Validator struct {
	rules []Rule
}

// NewValidator builds the standard chain against the given store
func NewValidator(store repository.ReservationStore) *Validator {
	return &Validator{
		rules: []Rule{
			&availabilityRule{detector: NewConflictDetector(store)},
			applicabilityRule{},
			operatingHoursRule{},
			advanceWindowRule{},
			durationRule{},
			&tenantLimitRule{store: store},
			&capacityRule{store: store},
		},
	}
}

// Rules exposes the chain, mainly so callers can log what is enforced
func (v *Validator) Rules() []Rule {
	return v.rules
}

// Validate runs the chain and returns the first failure
func (v *Validator) Validate(ctx context.Context, amenity *domain.Amenity, userID string, start, end, now time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.validate")
	defer span.End()

	span.SetAttributes(
		attribute.String("amenity_id", amenity.ID),
		attribute.String("user_id", userID),
	)

	rc := &RuleContext{
		Amenity: amenity,
		UserID:  userID,
		Start:   start,
		End:     end,
		Now:     now,
	}

	for _, rule := range v.rules {
		if err := rule.Check(ctx, rc); err != nil {
			span.SetAttributes(attribute.String("failed_rule", rule.Name()))
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// availabilityRule delegates to the conflict detector: maintenance gate
// plus overlap against active bookings.
type availabilityRule struct {
	detector *ConflictDetector
}

func (r *availabilityRule) Name() string { return "availability" }

func (r *availabilityRule) Check(ctx context.Context, rc *RuleContext) error {
	return r.detector.Check(ctx, rc.Amenity, rc.Start, rc.End)
}

// applicabilityRule rejects amenities whose booking flag is unset.
// Note the polarity: the platform rejects when BookingRequired is false,
// so walk-in amenities never take reservations through this service.
type applicabilityRule struct{}

func (applicabilityRule) Name() string { return "applicability" }

func (applicabilityRule) Check(_ context.Context, rc *RuleContext) error {
	if !rc.Amenity.BookingRequired {
		return domain.Reject(domain.ReasonBookingNotApplicable)
	}
	return nil
}

// operatingHoursRule keeps the interval inside the weekday's opening window.
// Bookings are single-day: an interval crossing midnight cannot satisfy any
// one day's window and is rejected.
type operatingHoursRule struct{}

func (operatingHoursRule) Name() string { return "operating_hours" }

func (operatingHoursRule) Check(_ context.Context, rc *RuleContext) error {
	sy, sm, sd := rc.Start.Date()
	ey, em, ed := rc.End.Date()
	if sy != ey || sm != em || sd != ed {
		return domain.Reject(domain.ReasonOutsideOperatingHours)
	}

	window, open := rc.Amenity.ScheduleFor(rc.Start.Weekday())
	if !open {
		return domain.Reject(domain.ReasonOutsideOperatingHours)
	}
	if domain.TimeOfDayFrom(rc.Start) < window.Open {
		return domain.Reject(domain.ReasonOutsideOperatingHours)
	}
	if domain.TimeOfDayFrom(rc.End) > window.Close {
		return domain.Reject(domain.ReasonOutsideOperatingHours)
	}
	return nil
}

// advanceWindowRule caps how far ahead a booking may start
type advanceWindowRule struct{}

func (advanceWindowRule) Name() string { return "advance_window" }

func (advanceWindowRule) Check(_ context.Context, rc *RuleContext) error {
	horizon := rc.Now.AddDate(0, 0, rc.Amenity.AdvanceBookingDays)
	if rc.Start.After(horizon) {
		return domain.Reject(domain.ReasonTooFarInAdvance)
	}
	return nil
}

// durationRule bounds the booked length between the amenity's minimum and
// maximum durations, inclusive on both ends.
type durationRule struct{}

func (durationRule) Name() string { return "duration" }

func (durationRule) Check(_ context.Context, rc *RuleContext) error {
	minutes := int(rc.End.Sub(rc.Start) / time.Minute)
	if minutes < rc.Amenity.MinDurationMinutes || minutes > rc.Amenity.MaxDurationMinutes {
		return domain.Reject(domain.ReasonDurationOutOfRange)
	}
	return nil
}

// tenantLimitRule caps a persona's active bookings per amenity within the
// configured daily/weekly/monthly window.
type tenantLimitRule struct {
	store repository.ReservationStore
}

func (r *tenantLimitRule) Name() string { return "tenant_limit" }

func (r *tenantLimitRule) Check(ctx context.Context, rc *RuleContext) error {
	if rc.Amenity.MaxBookingsPerTenant <= 0 {
		return nil
	}
	windowStart, err := PeriodStart(rc.Amenity.LimitPeriod, rc.Now)
	if err != nil {
		return fmt.Errorf("tenant limit window: %w", err)
	}
	windowEnd, err := PeriodEnd(rc.Amenity.LimitPeriod, windowStart)
	if err != nil {
		return fmt.Errorf("tenant limit window: %w", err)
	}
	count, err := r.store.CountForUserInWindow(ctx, rc.UserID, rc.Amenity.ID, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("failed to count tenant bookings: %w", err)
	}
	if count >= rc.Amenity.MaxBookingsPerTenant {
		return domain.Reject(domain.ReasonTenantLimitReached)
	}
	return nil
}

// capacityRule keeps concurrent occupancy below the amenity's capacity.
// A nil capacity means unlimited.
type capacityRule struct {
	store repository.ReservationStore
}

func (r *capacityRule) Name() string { return "capacity" }

func (r *capacityRule) Check(ctx context.Context, rc *RuleContext) error {
	if rc.Amenity.Capacity == nil {
		return nil
	}
	count, err := r.store.CountOccupancy(ctx, rc.Amenity.ID, rc.Start, rc.End)
	if err != nil {
		return fmt.Errorf("failed to count occupancy: %w", err)
	}
	if count >= *rc.Amenity.Capacity {
		return domain.Reject(domain.ReasonCapacityReached)
	}
	return nil
}
