package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// validTransitions is the booking lifecycle. CANCELLED -> CONFIRMED is the operator reinstatement.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCancelled: {BookingStatusConfirmed},
	BookingStatusCompleted: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// HoldsClaim reports whether a booking in this status owns its ledger days.
// Completed stays keep their days; only cancellation gives them back.
func (s BookingStatus) HoldsClaim() bool {
	return s.IsValid() && s != BookingStatusCancelled
}

// IsTerminal reports whether the booking is closed for modification.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

func (s BookingStatus) String() string {
	return string(s)
}

func ParseBookingStatus(value string) (BookingStatus, error) {
	status := BookingStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", value)
	}
	return status, nil
}

type BookingType string

const (
	BookingTypeVessel  BookingType = "VESSEL"
	BookingTypePackage BookingType = "PACKAGE"
)

type Booking struct {
	Base
	Type            BookingType   `db:"type"`
	VesselID        *uuid.UUID    `db:"vessel_id"`
	PackageID       *uuid.UUID    `db:"package_id"`
	OwnerID         uuid.UUID     `db:"owner_id"`
	StartDate       time.Time     `db:"start_date"`
	EndDate         time.Time     `db:"end_date"`
	GuestCount      int           `db:"guest_count"`
	TotalPriceCents int64         `db:"total_price_cents"`
	Status          BookingStatus `db:"status"`
	SpecialRequests string        `db:"special_requests"`
}

// AssignedVessel returns the allocated vessel or uuid.Nil.
func (b *Booking) AssignedVessel() uuid.UUID {
	if b.VesselID == nil {
		return uuid.Nil
	}
	return *b.VesselID
}

// Transition moves the booking to target, leaving it untouched when the move is not allowed.
func (b *Booking) Transition(target BookingStatus, now time.Time) error {
	if !b.Status.CanTransitionTo(target) {
		return fmt.Errorf("cannot transition booking from %s to %s", b.Status, target)
	}
	b.Status = target
	b.UpdatedAt = now
	return nil
}
