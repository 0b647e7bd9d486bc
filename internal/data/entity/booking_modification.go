package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ModificationKind string

const (
	ModificationDates    ModificationKind = "dates"
	ModificationGuests   ModificationKind = "guests"
	ModificationRequests ModificationKind = "requests"
)

func ParseModificationKind(value string) (ModificationKind, error) {
	switch kind := ModificationKind(value); kind {
	case ModificationDates, ModificationGuests, ModificationRequests:
		return kind, nil
	}
	return "", fmt.Errorf("unknown modification kind: %s", value)
}

// Modification is a closed set of booking amendments. Only the types below implement it.
type Modification interface {
	Kind() ModificationKind
	isModification()
}

type DateChange struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type GuestChange struct {
	GuestCount int `json:"guest_count"`
}

type RequestChange struct {
	SpecialRequests string `json:"special_requests"`
}

func (DateChange) Kind() ModificationKind    { return ModificationDates }
func (GuestChange) Kind() ModificationKind   { return ModificationGuests }
func (RequestChange) Kind() ModificationKind { return ModificationRequests }

func (DateChange) isModification()    {}
func (GuestChange) isModification()   {}
func (RequestChange) isModification() {}

// Snapshot captures the fields a modification of the given kind touches, plus the price.
func Snapshot(b *Booking, kind ModificationKind) json.RawMessage {
	var v any
	switch kind {
	case ModificationDates:
		v = struct {
			StartDate       string `json:"start_date"`
			EndDate         string `json:"end_date"`
			TotalPriceCents int64  `json:"total_price_cents"`
		}{b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"), b.TotalPriceCents}
	case ModificationGuests:
		v = struct {
			GuestCount      int   `json:"guest_count"`
			TotalPriceCents int64 `json:"total_price_cents"`
		}{b.GuestCount, b.TotalPriceCents}
	default:
		v = RequestChange{SpecialRequests: b.SpecialRequests}
	}
	raw, _ := json.Marshal(v)
	return raw
}

// BookingModification is one row of the append-only audit trail.
type BookingModification struct {
	BaseSimple
	BookingID uuid.UUID        `db:"booking_id"`
	Kind      ModificationKind `db:"kind"`
	OldValue  json.RawMessage  `db:"old_value"`
	NewValue  json.RawMessage  `db:"new_value"`
	ActorID   uuid.UUID        `db:"actor_id"`
}
