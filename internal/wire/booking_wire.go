package wire

import (
	"vessel-booking/internal/adaptor"
	"vessel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, log *zap.Logger) {
	// ==================== CALLER ROUTES (identity required) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(log))

		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings", bookingHandler.ListMyBookings)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

		// Owner may cancel; confirm, complete and reinstate are checked as operator-only in the service.
		r.Patch("/api/bookings/{id}/status", bookingHandler.UpdateBookingStatus)

		r.Post("/api/bookings/{id}/modifications", bookingHandler.ModifyBooking)
		r.Get("/api/bookings/{id}/modifications", bookingHandler.ListModifications)

		r.Get("/api/loyalty", bookingHandler.GetLoyaltyBalance)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Identity(log))
		r.Use(middleware.Admin(log))

		r.Get("/vessels/{id}/calendar", bookingHandler.GetVesselCalendar)
	})
}
