package entity

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityDay is a claim held by one booking on one vessel for one calendar day.
// A missing row means the day is free.
type AvailabilityDay struct {
	VesselID  uuid.UUID `db:"vessel_id"`
	Day       time.Time `db:"day"`
	BookingID uuid.UUID `db:"booking_id"`
	CreatedAt time.Time `db:"created_at"`
}
