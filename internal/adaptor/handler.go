package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"vessel-booking/internal/usecase"
	"vessel-booking/pkg/apperror"
	"vessel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Availability *AvailabilityHandler
	Booking      *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Availability: NewAvailabilityHandler(service.Availability, service.Allocator, log),
		Booking:      NewBookingHandler(service.Booking, service.Modification, log),
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// handleServiceError maps an apperror kind onto the HTTP response.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed - "+kind.String(),
		zap.Error(err),
		zap.String("operation", operation))

	message := err.Error()
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch kind {
	case apperror.InvalidInput:
		utils.ResponseBadRequest(w, message, apperror.FieldsOf(err))
	case apperror.Unauthorized:
		utils.ResponseUnauthorized(w, message)
	case apperror.Forbidden:
		utils.ResponseForbidden(w, message)
	case apperror.NotFound:
		utils.ResponseNotFound(w, message)
	case apperror.Conflict:
		utils.ResponseConflict(w, message)
	case apperror.InvalidTransition:
		utils.ResponseUnprocessable(w, message)
	default:
		utils.ResponseJSON(w, kind.HTTPStatus(), false, message, nil, nil)
	}
}

func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	actor, ok := usecase.ActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return actor, ok
}
