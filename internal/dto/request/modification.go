package request

import (
	"bytes"
	"encoding/json"
	"fmt"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/utils"
)

// ModifyBookingRequest is a tagged union: Kind selects the shape of Value.
type ModifyBookingRequest struct {
	Kind  string          `json:"kind" validate:"required,oneof=dates guests requests"`
	Value json.RawMessage `json:"value" validate:"required"`
}

type DateChangeValue struct {
	StartDate string `json:"start_date" validate:"required,calendar_date"`
	EndDate   string `json:"end_date" validate:"required,calendar_date"`
}

type GuestChangeValue struct {
	GuestCount int `json:"guest_count" validate:"min=1"`
}

type RequestChangeValue struct {
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

// Decode turns the payload into the typed modification for Kind. Unknown kinds and
// unknown payload fields are rejected. The returned map holds field errors, if any.
func (r *ModifyBookingRequest) Decode() (entity.Modification, map[string]string, error) {
	kind, err := entity.ParseModificationKind(r.Kind)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case entity.ModificationDates:
		var v DateChangeValue
		if err := decodeStrict(r.Value, &v); err != nil {
			return nil, nil, err
		}
		if errs := utils.ValidateStruct(v); len(errs) > 0 {
			return nil, errs, nil
		}
		start, _ := utils.ParseDate(v.StartDate)
		end, _ := utils.ParseDate(v.EndDate)
		return entity.DateChange{StartDate: start, EndDate: end}, nil, nil

	case entity.ModificationGuests:
		var v GuestChangeValue
		if err := decodeStrict(r.Value, &v); err != nil {
			return nil, nil, err
		}
		if errs := utils.ValidateStruct(v); len(errs) > 0 {
			return nil, errs, nil
		}
		return entity.GuestChange{GuestCount: v.GuestCount}, nil, nil

	default:
		var v RequestChangeValue
		if err := decodeStrict(r.Value, &v); err != nil {
			return nil, nil, err
		}
		if errs := utils.ValidateStruct(v); len(errs) > 0 {
			return nil, errs, nil
		}
		return entity.RequestChange{SpecialRequests: v.SpecialRequests}, nil, nil
	}
}

func decodeStrict(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	return nil
}
