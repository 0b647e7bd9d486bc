package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

// AvailabilityRepository is the per-vessel, per-day claim ledger.
type AvailabilityRepository interface {
	// FindClaims lists the claimed days of a vessel in [start, end), ordered by day.
	FindClaims(ctx context.Context, vesselID uuid.UUID, start, end time.Time) ([]*entity.AvailabilityDay, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.AvailabilityDay, error)
	// Claim takes every day in [start, end) for the booking, or none of them.
	Claim(ctx context.Context, vesselID, bookingID uuid.UUID, start, end time.Time) error
	// Release frees only the days owned by the booking and returns how many were freed.
	Release(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

type availabilityRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewAvailabilityRepository(db database.DBTX, log *zap.Logger) AvailabilityRepository {
	return &availabilityRepository{
		db:  db,
		log: log.With(zap.String("repository", "availability")),
	}
}

func (r *availabilityRepository) FindClaims(ctx context.Context, vesselID uuid.UUID, start, end time.Time) ([]*entity.AvailabilityDay, error) {
	query := `
		SELECT vessel_id, day, booking_id, created_at
		FROM availability_days
		WHERE vessel_id = $1 AND day >= $2::date AND day < $3::date
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, vesselID, start, end)
	if err != nil {
		r.log.Error("Failed to find claims", zap.Error(err), zap.String("vessel_id", vesselID.String()))
		return nil, fmt.Errorf("find claims for vessel %s: %w", vesselID, err)
	}

	return collectDays(rows)
}

func (r *availabilityRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.AvailabilityDay, error) {
	query := `
		SELECT vessel_id, day, booking_id, created_at
		FROM availability_days
		WHERE booking_id = $1
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find claims of booking %s: %w", bookingID, err)
	}

	return collectDays(rows)
}

// Claim inserts the whole range in one statement. The (vessel_id, day) primary key
// rejects the statement as a unit if any day is already held, so a lost race never
// leaves part of the range claimed.
func (r *availabilityRepository) Claim(ctx context.Context, vesselID, bookingID uuid.UUID, start, end time.Time) error {
	query := `
		INSERT INTO availability_days (vessel_id, day, booking_id, created_at)
		SELECT $1, d::date, $2, now()
		FROM generate_series($3::date, $4::date - 1, interval '1 day') AS d
	`

	tag, err := r.db.Exec(ctx, query, vesselID, bookingID, start, end)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			r.log.Info("Claim lost to an existing booking",
				zap.String("vessel_id", vesselID.String()),
				zap.String("booking_id", bookingID.String()),
			)
			return ErrAlreadyClaimed
		}
		r.log.Error("Failed to claim days",
			zap.Error(err),
			zap.String("vessel_id", vesselID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("claim days for booking %s: %w", bookingID, err)
	}

	r.log.Debug("Days claimed",
		zap.String("vessel_id", vesselID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.Int64("days", tag.RowsAffected()),
	)

	return nil
}

func (r *availabilityRepository) Release(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM availability_days WHERE booking_id = $1`, bookingID)
	if err != nil {
		r.log.Error("Failed to release days", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return 0, fmt.Errorf("release days of booking %s: %w", bookingID, err)
	}
	return tag.RowsAffected(), nil
}

func collectDays(rows pgx.Rows) ([]*entity.AvailabilityDay, error) {
	days, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.AvailabilityDay, error) {
		var d entity.AvailabilityDay
		err := row.Scan(&d.VesselID, &d.Day, &d.BookingID, &d.CreatedAt)
		return &d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan availability day: %w", err)
	}
	return days, nil
}
