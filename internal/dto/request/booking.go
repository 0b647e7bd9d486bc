package request

// CreateBookingRequest books either one vessel or a package. For a package the
// allocator chooses among CandidateVesselIDs, or the package's vessels when empty.
type CreateBookingRequest struct {
	VesselID           string   `json:"vessel_id" validate:"required_without=PackageID,excluded_with=PackageID,omitempty,uuid"`
	PackageID          string   `json:"package_id" validate:"omitempty,uuid"`
	CandidateVesselIDs []string `json:"candidate_vessel_ids" validate:"excluded_without=PackageID,omitempty,max=50,dive,uuid"`
	StartDate          string   `json:"start_date" validate:"required,calendar_date"`
	EndDate            string   `json:"end_date" validate:"required,calendar_date"`
	GuestCount         int      `json:"guest_count" validate:"min=1"`
	SpecialRequests    string   `json:"special_requests" validate:"max=2000"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}
