package wire

import (
	"net/http"

	"vessel-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAvailability(r chi.Router, availabilityHandler *adaptor.AvailabilityHandler, limit func(http.Handler) http.Handler) {
	// ==================== PUBLIC ROUTES (rate limited) ====================
	r.Group(func(r chi.Router) {
		r.Use(limit)

		r.Get("/api/vessels/{id}/availability", availabilityHandler.CheckAvailability)
		r.Post("/api/allocations", availabilityHandler.AllocateVessel)
	})
}
