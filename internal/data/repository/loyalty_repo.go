package repository

import (
	"context"
	"errors"
	"fmt"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type LoyaltyRepository interface {
	// Grant records the award and credits the owner's balance. It reports false and
	// changes nothing when the booking was already granted.
	Grant(ctx context.Context, grant *entity.LoyaltyGrant) (bool, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
}

type loyaltyRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewLoyaltyRepository(db database.DBTX, log *zap.Logger) LoyaltyRepository {
	return &loyaltyRepository{
		db:  db,
		log: log.With(zap.String("repository", "loyalty")),
	}
}

func (r *loyaltyRepository) Grant(ctx context.Context, grant *entity.LoyaltyGrant) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO loyalty_grants (booking_id, user_id, points, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (booking_id) DO NOTHING
	`, grant.BookingID, grant.UserID, grant.Points, grant.CreatedAt)
	if err != nil {
		r.log.Error("Failed to record loyalty grant", zap.Error(err), zap.String("booking_id", grant.BookingID.String()))
		return false, fmt.Errorf("grant loyalty for booking %s: %w", grant.BookingID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO loyalty_accounts (user_id, points, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET points = loyalty_accounts.points + EXCLUDED.points, updated_at = EXCLUDED.updated_at
	`, grant.UserID, grant.Points, grant.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("credit loyalty points to %s: %w", grant.UserID, err)
	}

	return true, nil
}

func (r *loyaltyRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var points int64
	err := r.db.QueryRow(ctx, `SELECT points FROM loyalty_accounts WHERE user_id = $1`, userID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load loyalty balance of %s: %w", userID, err)
	}
	return points, nil
}
