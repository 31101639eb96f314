package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/internal/repository"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ConflictDetector decides whether a candidate interval is bookable on an
// amenity: the amenity must be operational and no active booking may overlap.
// This is a fast-fail check; the store's atomic insert is authoritative.
type ConflictDetector struct {
	store repository.ReservationStore
}

// NewConflictDetector creates a new conflict detector
func NewConflictDetector(store repository.ReservationStore) *ConflictDetector {
	return &ConflictDetector{store: store}
}

// Check returns nil when [start, end) is bookable. A non-operational amenity
// rejects with ReasonUnderMaintenance, an overlap with ReasonUnavailable.
func (d *ConflictDetector) Check(ctx context.Context, amenity *domain.Amenity, start, end time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "scheduler.conflict.check")
	defer span.End()

	span.SetAttributes(
		attribute.String("amenity_id", amenity.ID),
		attribute.String("maintenance_status", amenity.MaintenanceStatus.String()),
	)

	if !amenity.IsOperational() {
		return domain.Reject(domain.ReasonUnderMaintenance)
	}

	overlapping, err := d.store.FindOverlapping(ctx, amenity.ID, start, end)
	if err != nil {
		return fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	if len(overlapping) > 0 {
		span.SetAttributes(attribute.Int("overlap_count", len(overlapping)))
		return domain.Reject(domain.ReasonUnavailable)
	}

	return nil
}
