package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresAmenityRepository implements AmenityRepository using PostgreSQL with pgxpool
type PostgresAmenityRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresAmenityRepository creates a new PostgresAmenityRepository
func NewPostgresAmenityRepository(pool *pgxpool.Pool, timeout time.Duration) *PostgresAmenityRepository {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PostgresAmenityRepository{pool: pool, timeout: timeout}
}

// GetByID retrieves an amenity with its weekly schedule
func (r *PostgresAmenityRepository) GetByID(ctx context.Context, id string) (*domain.Amenity, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.amenity.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("amenity_id", id))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT
			id, building_id, name, type,
			is_booking_required, advance_booking_period_days,
			minimum_booking_duration, booking_duration_limit,
			max_bookings_per_tenant, booking_limit_period,
			capacity, maintenance_status,
			created_at, updated_at
		FROM amenities
		WHERE id = $1
	`

	amenity := &domain.Amenity{}
	var (
		limitPeriod       string
		maintenanceStatus string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&amenity.ID,
		&amenity.BuildingID,
		&amenity.Name,
		&amenity.Type,
		&amenity.BookingRequired,
		&amenity.AdvanceBookingDays,
		&amenity.MinDurationMinutes,
		&amenity.MaxDurationMinutes,
		&amenity.MaxBookingsPerTenant,
		&limitPeriod,
		&amenity.Capacity,
		&maintenanceStatus,
		&amenity.CreatedAt,
		&amenity.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrAmenityNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrStoreTimeout
		}
		return nil, fmt.Errorf("failed to get amenity: %w", err)
	}

	amenity.LimitPeriod = domain.LimitPeriod(limitPeriod)
	amenity.MaintenanceStatus = domain.MaintenanceStatus(maintenanceStatus)

	if err := r.loadSchedule(ctx, amenity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrStoreTimeout
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return amenity, nil
}

// loadSchedule populates the amenity's weekly opening windows
func (r *PostgresAmenityRepository) loadSchedule(ctx context.Context, amenity *domain.Amenity) error {
	query := `
		SELECT weekday, open_minutes, close_minutes
		FROM amenity_schedules
		WHERE amenity_id = $1
		ORDER BY weekday
	`

	rows, err := r.pool.Query(ctx, query, amenity.ID)
	if err != nil {
		return fmt.Errorf("failed to load amenity schedule: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			weekday      int
			openMinutes  int
			closeMinutes int
		)
		if err := rows.Scan(&weekday, &openMinutes, &closeMinutes); err != nil {
			return fmt.Errorf("failed to scan amenity schedule: %w", err)
		}

		amenity.WeeklySchedule = append(amenity.WeeklySchedule, domain.DailyAvailability{
			Weekday: time.Weekday(weekday),
			Open:    domain.TimeOfDay(openMinutes),
			Close:   domain.TimeOfDay(closeMinutes),
		})
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating amenity schedule: %w", err)
	}

	return nil
}

// Ensure PostgresAmenityRepository implements AmenityRepository
var _ AmenityRepository = (*PostgresAmenityRepository)(nil)
