package entity

import "github.com/google/uuid"

// Vessel is a bookable boat. The engine never mutates it.
type Vessel struct {
	Base
	Name             string `db:"name"`
	PricePerDayCents int64  `db:"price_per_day_cents"`
	Capacity         int    `db:"capacity"`
}

// Package groups candidate vessels for bookings that are not pinned to one boat.
type Package struct {
	Base
	Name             string      `db:"name"`
	PerGuestFeeCents int64       `db:"per_guest_fee_cents"`
	VesselIDs        []uuid.UUID `db:"-"`
}
