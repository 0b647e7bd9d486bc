package usecase

import (
	"context"

	"vessel-booking/internal/data/entity"
	"vessel-booking/internal/data/repository"
	"vessel-booking/pkg/notify"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	Availability AvailabilityService
	Allocator    AllocatorService
	Booking      BookingService
	Modification ModificationService

	notifications *notify.Dispatcher
}

// NewService delivers notifications through a background dispatcher, so a slow or
// unreachable broker never holds up a committed request.
func NewService(repo *repository.Repository, config *utils.Config, notifier notify.Notifier, log *zap.Logger) *Service {
	availability := NewAvailabilityService(repo, log)
	allocator := NewAllocatorService(repo, availability, config.Allocator, log)
	notifications := notify.NewDispatcher(notifier, config.Kafka.DeliveryTimeout, log)

	return &Service{
		Availability:  availability,
		Allocator:     allocator,
		Booking:       NewBookingService(repo, availability, allocator, notifications, config.Booking, log),
		Modification:  NewModificationService(repo, availability, notifications, log),
		notifications: notifications,
	}
}

// FlushNotifications waits for pending notification deliveries.
func (s *Service) FlushNotifications() {
	s.notifications.Flush()
}

// Close drains pending notifications and closes the underlying notifier.
func (s *Service) Close() error {
	return s.notifications.Close()
}

// Actor is the caller as vouched for by the authentication collaborator.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: userID, Admin: utils.IsAdmin(ctx)}, true
}

func (a Actor) canAccess(b *entity.Booking) bool {
	return a.Admin || a.ID == b.OwnerID
}

// publish hands n to the notifier. Delivery failures never reach the caller.
func publish(ctx context.Context, notifier notify.Notifier, log *zap.Logger, n notify.Notification) {
	if notifier == nil {
		return
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if err := notifier.Notify(ctx, n); err != nil {
		log.Warn("Failed to deliver notification",
			zap.Error(err),
			zap.String("type", n.Type),
			zap.String("booking_id", n.BookingID.String()),
		)
	}
}
