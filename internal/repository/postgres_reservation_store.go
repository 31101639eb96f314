package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/internal/domain"
	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Postgres error codes surfaced by the bookings exclusion constraint
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// PostgresReservationStore implements ReservationStore using PostgreSQL with pgxpool.
// Overlap atomicity comes from the bookings_no_overlap exclusion constraint,
// so two concurrent inserts for the same slot can never both commit.
type PostgresReservationStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresReservationStore creates a new PostgresReservationStore.
// Every call is bounded by timeout; deadline hits surface as domain.ErrStoreTimeout.
func NewPostgresReservationStore(pool *pgxpool.Pool, timeout time.Duration) *PostgresReservationStore {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PostgresReservationStore{pool: pool, timeout: timeout}
}

// FindOverlapping returns active bookings on the amenity overlapping [start, end)
func (r *PostgresReservationStore) FindOverlapping(ctx context.Context, amenityID string, start, end time.Time) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.find_overlapping")
	defer span.End()

	span.SetAttributes(
		attribute.String("amenity_id", amenityID),
		attribute.String("range_start", start.Format(time.RFC3339)),
		attribute.String("range_end", end.Format(time.RFC3339)),
	)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, amenity_id, user_id, start_time, end_time, status, created_at, updated_at
		FROM bookings
		WHERE amenity_id = $1
			AND status = 'requested'
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, amenityID, start, end)
	if err != nil {
		return nil, r.fail(span, "failed to find overlapping bookings", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, r.fail(span, "failed to scan overlapping bookings", err)
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// CountForUserInWindow counts the user's active bookings on the amenity whose
// start falls in [windowStart, windowEnd)
func (r *PostgresReservationStore) CountForUserInWindow(ctx context.Context, userID, amenityID string, windowStart, windowEnd time.Time) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.count_for_user")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("amenity_id", amenityID),
	)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT COUNT(*) FROM bookings
		WHERE user_id = $1
			AND amenity_id = $2
			AND status = 'requested'
			AND start_time >= $3
			AND start_time < $4
	`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, amenityID, windowStart, windowEnd).Scan(&count)
	if err != nil {
		return 0, r.fail(span, "failed to count user bookings", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// CountOccupancy counts active bookings across all users overlapping [start, end)
func (r *PostgresReservationStore) CountOccupancy(ctx context.Context, amenityID string, start, end time.Time) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.count_occupancy")
	defer span.End()

	span.SetAttributes(attribute.String("amenity_id", amenityID))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT COUNT(*) FROM bookings
		WHERE amenity_id = $1
			AND status = 'requested'
			AND start_time < $3
			AND end_time > $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, amenityID, start, end).Scan(&count)
	if err != nil {
		return 0, r.fail(span, "failed to count occupancy", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// InsertIfFree atomically inserts the booking unless an overlapping active
// booking exists. The exclusion constraint decides, not a prior read.
func (r *PostgresReservationStore) InsertIfFree(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.insert_if_free")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("amenity_id", booking.AmenityID),
		attribute.String("user_id", booking.UserID),
	)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO bookings (id, amenity_id, user_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.AmenityID,
		booking.UserID,
		booking.StartTime,
		booking.EndTime,
		booking.Status.String(),
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation) {
			span.SetStatus(codes.Error, "slot conflict")
			return domain.ErrBookingConflict
		}
		return r.fail(span, "failed to insert booking", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresReservationStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, amenity_id, user_id, start_time, end_time, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	booking := &domain.Booking{}
	var status string

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.AmenityID,
		&booking.UserID,
		&booking.StartTime,
		&booking.EndTime,
		&status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		return nil, r.fail(span, "failed to get booking", err)
	}

	span.SetStatus(codes.Ok, "")
	booking.Status = domain.BookingStatus(status)
	return booking, nil
}

// MarkCancelled moves a requested booking to cancelled. A booking that is
// missing or already cancelled reports domain.ErrBookingNotFound, so a
// repeated cancel never succeeds twice.
func (r *PostgresReservationStore) MarkCancelled(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.mark_cancelled")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE bookings SET
			status = 'cancelled',
			updated_at = $2
		WHERE id = $1 AND status = 'requested'
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return r.fail(span, "failed to cancel booking", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Query returns bookings matching all supplied filter dimensions whose
// interval overlaps the filter range
func (r *PostgresReservationStore) Query(ctx context.Context, filter *domain.BookingFilter) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.query")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, amenity_id, user_id, start_time, end_time, status, created_at, updated_at
		FROM bookings
		WHERE start_time < $1 AND end_time > $2
	`
	args := []interface{}{filter.End, filter.Start}

	if len(filter.UserIDs) > 0 {
		args = append(args, filter.UserIDs)
		query += fmt.Sprintf(" AND user_id = ANY($%d)", len(args))
	}
	if len(filter.AmenityIDs) > 0 {
		args = append(args, filter.AmenityIDs)
		query += fmt.Sprintf(" AND amenity_id = ANY($%d)", len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}

	query += " ORDER BY start_time"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.fail(span, "failed to query bookings", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, r.fail(span, "failed to scan bookings", err)
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// fail records the error on the span and maps deadline hits to ErrStoreTimeout
func (r *PostgresReservationStore) fail(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrStoreTimeout
	}

	return fmt.Errorf("%s: %w", msg, err)
}

// collectBookings scans all rows into Booking structs
func collectBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		booking := &domain.Booking{}
		var status string

		err := rows.Scan(
			&booking.ID,
			&booking.AmenityID,
			&booking.UserID,
			&booking.StartTime,
			&booking.EndTime,
			&status,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		booking.Status = domain.BookingStatus(status)
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

// Ensure PostgresReservationStore implements ReservationStore
var _ ReservationStore = (*PostgresReservationStore)(nil)
