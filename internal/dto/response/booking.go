package response

import (
	"encoding/json"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/utils"
)

type BookingResponse struct {
	ID              string               `json:"id"`
	Type            entity.BookingType   `json:"type"`
	VesselID        string               `json:"vessel_id,omitempty"`
	PackageID       string               `json:"package_id,omitempty"`
	OwnerID         string               `json:"owner_id"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	Nights          int                  `json:"nights"`
	GuestCount      int                  `json:"guest_count"`
	TotalPriceCents int64                `json:"total_price_cents"`
	Status          entity.BookingStatus `json:"status"`
	SpecialRequests string               `json:"special_requests,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type ModificationResponse struct {
	ID        string                  `json:"id"`
	BookingID string                  `json:"booking_id"`
	Kind      entity.ModificationKind `json:"kind"`
	OldValue  json.RawMessage         `json:"old_value"`
	NewValue  json.RawMessage         `json:"new_value"`
	ActorID   string                  `json:"actor_id"`
	CreatedAt time.Time               `json:"created_at"`
}

type ModifyBookingResponse struct {
	Booking      BookingResponse      `json:"booking"`
	Modification ModificationResponse `json:"modification"`
}

type LoyaltyResponse struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID.String(),
		Type:            b.Type,
		OwnerID:         b.OwnerID.String(),
		StartDate:       utils.FormatDate(b.StartDate),
		EndDate:         utils.FormatDate(b.EndDate),
		Nights:          utils.NightsBetween(b.StartDate, b.EndDate),
		GuestCount:      b.GuestCount,
		TotalPriceCents: b.TotalPriceCents,
		Status:          b.Status,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.VesselID != nil {
		resp.VesselID = b.VesselID.String()
	}
	if b.PackageID != nil {
		resp.PackageID = b.PackageID.String()
	}
	return resp
}

func ModificationToResponse(m *entity.BookingModification) ModificationResponse {
	return ModificationResponse{
		ID:        m.ID.String(),
		BookingID: m.BookingID.String(),
		Kind:      m.Kind,
		OldValue:  m.OldValue,
		NewValue:  m.NewValue,
		ActorID:   m.ActorID.String(),
		CreatedAt: m.CreatedAt,
	}
}
