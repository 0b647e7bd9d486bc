package adaptor

import (
	"net/http"

	"vessel-booking/internal/dto/request"
	"vessel-booking/internal/usecase"
	"vessel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service      usecase.BookingService
	modification usecase.ModificationService
	log          *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, modification usecase.ModificationService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service:      service,
		modification: modification,
		log:          log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// ListMyBookings handles GET /api/bookings?page=&per_page=
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParsePositiveInt(query.Get("page"), 1),
		PerPage: utils.ParsePositiveInt(query.Get("per_page"), 10),
	}

	bookings, err := h.service.ListMyBookings(r.Context(), actor, req)
	if err != nil {
		handleServiceError(h.log, w, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// UpdateBookingStatus handles PATCH /api/bookings/{id}/status
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req request.UpdateBookingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.UpdateBookingStatus(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "Booking status updated", booking)
}

// ModifyBooking handles POST /api/bookings/{id}/modifications
func (h *BookingHandler) ModifyBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req request.ModifyBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.modification.ModifyBooking(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "modify booking")
		return
	}

	utils.ResponseSuccess(w, "Booking modified", result)
}

// ListModifications handles GET /api/bookings/{id}/modifications
func (h *BookingHandler) ListModifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	mods, err := h.modification.ListModifications(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "list modifications")
		return
	}

	utils.ResponseSuccess(w, "success", mods)
}

// GetLoyaltyBalance handles GET /api/loyalty
func (h *BookingHandler) GetLoyaltyBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetLoyaltyBalance(r.Context(), actor)
	if err != nil {
		handleServiceError(h.log, w, err, "get loyalty balance")
		return
	}

	utils.ResponseSuccess(w, "success", balance)
}

// GetVesselCalendar handles GET /api/admin/vessels/{id}/calendar?from=&to= (admin)
func (h *BookingHandler) GetVesselCalendar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.VesselCalendarRequest{
		From: query.Get("from"),
		To:   query.Get("to"),
	}

	calendar, err := h.service.GetVesselCalendar(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(h.log, w, err, "get vessel calendar")
		return
	}

	utils.ResponseSuccess(w, "success", calendar)
}
