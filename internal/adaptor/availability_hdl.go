package adaptor

import (
	"net/http"

	"vessel-booking/internal/dto/request"
	"vessel-booking/internal/usecase"
	"vessel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	availability usecase.AvailabilityService
	allocator    usecase.AllocatorService
	log          *zap.Logger
}

func NewAvailabilityHandler(availability usecase.AvailabilityService, allocator usecase.AllocatorService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		allocator:    allocator,
		log:          log.With(zap.String("handler", "availability")),
	}
}

// CheckAvailability handles GET /api/vessels/{id}/availability?start=&end=&guests= (public)
func (h *AvailabilityHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.CheckAvailabilityRequest{
		VesselID:   chi.URLParam(r, "id"),
		StartDate:  query.Get("start"),
		EndDate:    query.Get("end"),
		GuestCount: utils.ParsePositiveInt(query.Get("guests"), 0),
	}

	result, err := h.availability.CheckAvailability(r.Context(), req)
	if err != nil {
		handleServiceError(h.log, w, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// AllocateVessel handles POST /api/allocations (public)
func (h *AvailabilityHandler) AllocateVessel(w http.ResponseWriter, r *http.Request) {
	var req request.AllocateVesselRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.allocator.AllocateVessel(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "allocate vessel")
		return
	}

	message := "success"
	if !result.Available {
		message = "no vessel available"
	}
	utils.ResponseSuccess(w, message, result)
}
