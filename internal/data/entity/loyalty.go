package entity

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyGrant records the one-time award for a completed stay. booking_id is unique.
type LoyaltyGrant struct {
	BookingID uuid.UUID `db:"booking_id"`
	UserID    uuid.UUID `db:"user_id"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}
