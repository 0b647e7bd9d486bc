package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingModified      = "booking.modified"
)

const (
	AudienceCustomer  = "customer"
	AudienceOperators = "operators"
)

// Notification is one message for the outbound delivery collaborator.
// RecipientID is uuid.Nil when the audience is the operator team.
type Notification struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	Audience    string         `json:"audience"`
	RecipientID uuid.UUID      `json:"recipient_id"`
	BookingID   uuid.UUID      `json:"booking_id"`
	Status      string         `json:"status"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Payload     map[string]any `json:"payload,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Close() error
}
