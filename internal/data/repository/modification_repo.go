package repository

import (
	"context"
	"fmt"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ModificationRepository is append-only: there is no update or delete.
type ModificationRepository interface {
	Create(ctx context.Context, modification *entity.BookingModification) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingModification, error)
}

type modificationRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewModificationRepository(db database.DBTX, log *zap.Logger) ModificationRepository {
	return &modificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_modification")),
	}
}

func (r *modificationRepository) Create(ctx context.Context, m *entity.BookingModification) error {
	query := `
		INSERT INTO booking_modifications (id, booking_id, kind, old_value, new_value, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.BookingID,
		m.Kind,
		[]byte(m.OldValue),
		[]byte(m.NewValue),
		m.ActorID,
		m.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to record booking modification",
			zap.Error(err),
			zap.String("booking_id", m.BookingID.String()),
			zap.String("kind", string(m.Kind)),
		)
		return fmt.Errorf("create modification for booking %s: %w", m.BookingID, err)
	}

	return nil
}

func (r *modificationRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingModification, error) {
	query := `
		SELECT id, booking_id, kind, old_value, new_value, actor_id, created_at
		FROM booking_modifications
		WHERE booking_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find modifications of booking %s: %w", bookingID, err)
	}

	mods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.BookingModification, error) {
		var m entity.BookingModification
		var oldValue, newValue []byte
		if err := row.Scan(&m.ID, &m.BookingID, &m.Kind, &oldValue, &newValue, &m.ActorID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.OldValue = oldValue
		m.NewValue = newValue
		return &m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan modification row: %w", err)
	}

	return mods, nil
}
