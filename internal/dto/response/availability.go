package response

type AvailabilityResponse struct {
	VesselID        string   `json:"vessel_id"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	GuestCount      int      `json:"guest_count"`
	Nights          int      `json:"nights"`
	IsAvailable     bool     `json:"is_available"`
	CapacityOK      bool     `json:"capacity_ok"`
	BlockedDays     []string `json:"blocked_days"`
	TotalPriceCents int64    `json:"total_price_cents"`
}

type CandidateResponse struct {
	VesselID        string `json:"vessel_id"`
	DatesFree       bool   `json:"dates_free"`
	CapacityOK      bool   `json:"capacity_ok"`
	TotalPriceCents int64  `json:"total_price_cents"`
}

// AllocationResponse reports NoneAvailable as Available=false with no vessel.
type AllocationResponse struct {
	Available         bool                `json:"available"`
	VesselID          string              `json:"vessel_id,omitempty"`
	TotalPriceCents   int64               `json:"total_price_cents,omitempty"`
	CapacityShortfall bool                `json:"capacity_shortfall"`
	Candidates        []CandidateResponse `json:"candidates"`
}

type CalendarDayResponse struct {
	Date      string `json:"date"`
	BookingID string `json:"booking_id"`
}

type VesselCalendarResponse struct {
	VesselID string                `json:"vessel_id"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Claimed  []CalendarDayResponse `json:"claimed"`
}
