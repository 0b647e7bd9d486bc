package request

type CheckAvailabilityRequest struct {
	VesselID   string `json:"vessel_id" validate:"required,uuid"`
	StartDate  string `json:"start_date" validate:"required,calendar_date"`
	EndDate    string `json:"end_date" validate:"required,calendar_date"`
	GuestCount int    `json:"guest_count" validate:"min=1"`
}

// AllocateVesselRequest picks a vessel among candidates. When PackageID is set and no
// candidates are given, the package's vessels are used in their listed order.
type AllocateVesselRequest struct {
	PackageID          string   `json:"package_id" validate:"omitempty,uuid"`
	CandidateVesselIDs []string `json:"candidate_vessel_ids" validate:"required_without=PackageID,omitempty,max=50,dive,uuid"`
	StartDate          string   `json:"start_date" validate:"required,calendar_date"`
	EndDate            string   `json:"end_date" validate:"required,calendar_date"`
	GuestCount         int      `json:"guest_count" validate:"min=1"`
}

type VesselCalendarRequest struct {
	From string `json:"from" validate:"required,calendar_date"`
	To   string `json:"to" validate:"required,calendar_date"`
}
