package metrics

import (
	"context"
	"sync"

	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Booking counters
	BookingsCreated   *telemetry.Counter
	BookingsRejected  *telemetry.Counter
	BookingsCancelled *telemetry.Counter
	BookingConflicts  *telemetry.Counter

	// Histograms
	ValidationDuration *telemetry.Histogram

	// Gauges
	ActiveBookings *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all scheduler metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "amenity_bookings_created_total",
		Description: "Total number of bookings created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "amenity_bookings_rejected_total",
		Description: "Total number of booking requests rejected, by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "amenity_bookings_cancelled_total",
		Description: "Total number of cancelled bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingConflicts, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "amenity_booking_conflicts_total",
		Description: "Total number of insert conflicts on contested slots",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ValidationDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "amenity_validation_duration_seconds",
		Description: "Time spent running the booking rule chain",
		Unit:        "s",
	}, []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1})
	if err != nil {
		return err
	}

	ActiveBookings, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "amenity_active_bookings",
		Description: "Current number of active bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordBookingCreated records a successful booking
func RecordBookingCreated(ctx context.Context, amenityID string) {
	if BookingsCreated != nil {
		BookingsCreated.Inc(ctx,
			attribute.String("amenity_id", amenityID),
		)
	}
	if ActiveBookings != nil {
		ActiveBookings.Add(ctx, 1)
	}
}

// RecordBookingRejected records a rejected booking attempt by reason
func RecordBookingRejected(ctx context.Context, amenityID, reason string) {
	if BookingsRejected != nil {
		BookingsRejected.Inc(ctx,
			attribute.String("amenity_id", amenityID),
			attribute.String("reason", reason),
		)
	}
}

// RecordBookingCancelled records a cancellation
func RecordBookingCancelled(ctx context.Context, amenityID string) {
	if BookingsCancelled != nil {
		BookingsCancelled.Inc(ctx,
			attribute.String("amenity_id", amenityID),
		)
	}
	if ActiveBookings != nil {
		ActiveBookings.Add(ctx, -1)
	}
}

// RecordBookingConflict records an insert that lost the race for a slot
func RecordBookingConflict(ctx context.Context, amenityID string) {
	if BookingConflicts != nil {
		BookingConflicts.Inc(ctx,
			attribute.String("amenity_id", amenityID),
		)
	}
}

// RecordValidationDuration records the rule chain latency
func RecordValidationDuration(ctx context.Context, amenityID string, seconds float64) {
	if ValidationDuration != nil {
		ValidationDuration.Record(ctx, seconds,
			attribute.String("amenity_id", amenityID),
		)
	}
}
