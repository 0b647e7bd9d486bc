package usecase

import (
	"context"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/internal/data/repository"
	"vessel-booking/internal/dto/request"
	"vessel-booking/internal/dto/response"
	"vessel-booking/pkg/apperror"
	"vessel-booking/pkg/notify"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ModificationService interface {
	ModifyBooking(ctx context.Context, actor Actor, bookingID string, req *request.ModifyBookingRequest) (*response.ModifyBookingResponse, error)
	// Apply amends the booking and appends the paired audit row in one transaction.
	Apply(ctx context.Context, actor Actor, bookingID uuid.UUID, mod entity.Modification) (*entity.Booking, *entity.BookingModification, error)
	ListModifications(ctx context.Context, actor Actor, bookingID string) ([]response.ModificationResponse, error)
}

type modificationService struct {
	repo         *repository.Repository
	availability AvailabilityService
	notifier     notify.Notifier
	log          *zap.Logger
}

func NewModificationService(repo *repository.Repository, availability AvailabilityService, notifier notify.Notifier, log *zap.Logger) ModificationService {
	return &modificationService{
		repo:         repo,
		availability: availability,
		notifier:     notifier,
		log:          log.With(zap.String("service", "modification")),
	}
}

func (s *modificationService) ModifyBooking(ctx context.Context, actor Actor, bookingID string, req *request.ModifyBookingRequest) (*response.ModifyBookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.NewValidation(errs)
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid booking id %q", bookingID)
	}

	mod, fieldErrs, err := req.Decode()
	if err != nil {
		return nil, apperror.NewInvalidInput("%v", err)
	}
	if len(fieldErrs) > 0 {
		return nil, apperror.NewValidation(fieldErrs)
	}

	booking, audit, err := s.Apply(ctx, actor, id, mod)
	if err != nil {
		return nil, err
	}

	return &response.ModifyBookingResponse{
		Booking:      response.BookingToResponse(booking),
		Modification: response.ModificationToResponse(audit),
	}, nil
}

func (s *modificationService) Apply(ctx context.Context, actor Actor, bookingID uuid.UUID, mod entity.Modification) (*entity.Booking, *entity.BookingModification, error) {
	current, err := loadAccessible(ctx, s.repo, actor, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := guardOpen(current); err != nil {
		return nil, nil, err
	}

	vessel, fee, err := s.pricing(ctx, current)
	if err != nil {
		return nil, nil, err
	}

	// Read-side checks give precise errors; the claim inside the transaction stays authoritative.
	switch m := mod.(type) {
	case entity.DateChange:
		if !m.StartDate.Before(m.EndDate) {
			return nil, nil, apperror.NewInvalidInput("start date must be before end date")
		}
		if err := checkStayLength(m.StartDate, m.EndDate); err != nil {
			return nil, nil, err
		}
		check, err := s.availability.Evaluate(ctx, AvailabilityQuery{
			VesselID:         vessel.ID,
			StartDate:        m.StartDate,
			EndDate:          m.EndDate,
			GuestCount:       current.GuestCount,
			ExcludeBookingID: current.ID,
		})
		if err != nil {
			return nil, nil, err
		}
		if !check.DatesFree {
			return nil, nil, apperror.NewConflict("vessel is already booked on %s", utils.FormatDate(check.BlockedDays[0]))
		}
	case entity.GuestChange:
		if m.GuestCount < 1 {
			return nil, nil, apperror.NewInvalidInput("guest count must be at least 1")
		}
		if m.GuestCount > vessel.Capacity {
			return nil, nil, apperror.NewInvalidInput("guest count %d exceeds vessel capacity %d", m.GuestCount, vessel.Capacity)
		}
	case entity.RequestChange:
	default:
		return nil, nil, apperror.NewInvalidInput("unsupported modification")
	}

	var (
		booking *entity.Booking
		audit   *entity.BookingModification
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return apperror.NewInternal(err, "lock booking")
		}
		if b == nil {
			return apperror.NewNotFound("booking", bookingID.String())
		}
		if err := guardOpen(b); err != nil {
			return err
		}

		now := time.Now().UTC()
		oldValue := entity.Snapshot(b, mod.Kind())

		switch m := mod.(type) {
		case entity.DateChange:
			if _, err := tx.Availability.Release(ctx, b.ID); err != nil {
				return apperror.NewInternal(err, "release days")
			}
			b.StartDate = utils.TruncateDay(m.StartDate)
			b.EndDate = utils.TruncateDay(m.EndDate)
			if err := claimDays(ctx, tx, vessel.ID, b); err != nil {
				return err
			}
		case entity.GuestChange:
			b.GuestCount = m.GuestCount
		case entity.RequestChange:
			b.SpecialRequests = m.SpecialRequests
		}
		b.TotalPriceCents = stayPrice(vessel, utils.NightsBetween(b.StartDate, b.EndDate), fee, b.GuestCount)
		b.UpdatedAt = now

		if err := tx.Booking.Update(ctx, b); err != nil {
			return apperror.NewInternal(err, "update booking")
		}

		record := &entity.BookingModification{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			BookingID:  b.ID,
			Kind:       mod.Kind(),
			OldValue:   oldValue,
			NewValue:   entity.Snapshot(b, mod.Kind()),
			ActorID:    actor.ID,
		}
		if err := tx.Modification.Create(ctx, record); err != nil {
			return apperror.NewInternal(err, "record modification")
		}

		booking, audit = b, record
		return nil
	})
	if err != nil {
		s.log.Info("Modification rejected",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("kind", string(mod.Kind())),
		)
		return nil, nil, err
	}

	s.log.Info("Booking modified",
		zap.String("booking_id", booking.ID.String()),
		zap.String("kind", string(audit.Kind)),
		zap.String("actor_id", actor.ID.String()),
	)

	publish(ctx, s.notifier, s.log, notify.Notification{
		Type:        notify.TypeBookingModified,
		Audience:    notify.AudienceCustomer,
		RecipientID: booking.OwnerID,
		BookingID:   booking.ID,
		Status:      string(booking.Status),
		OccurredAt:  audit.CreatedAt,
		Payload: map[string]any{
			"kind":      string(audit.Kind),
			"old_value": audit.OldValue,
			"new_value": audit.NewValue,
		},
	})

	return booking, audit, nil
}

func (s *modificationService) ListModifications(ctx context.Context, actor Actor, bookingID string) ([]response.ModificationResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid booking id %q", bookingID)
	}
	if _, err := loadAccessible(ctx, s.repo, actor, id); err != nil {
		return nil, err
	}

	mods, err := s.repo.Modification.FindByBookingID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal(err, "list modifications")
	}

	out := make([]response.ModificationResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, response.ModificationToResponse(m))
	}
	return out, nil
}

// pricing loads the assigned vessel and, for package bookings, the per-guest fee.
func (s *modificationService) pricing(ctx context.Context, b *entity.Booking) (*entity.Vessel, int64, error) {
	vessel, err := s.repo.Vessel.FindByID(ctx, b.AssignedVessel())
	if err != nil {
		return nil, 0, apperror.NewInternal(err, "load vessel")
	}
	if vessel == nil {
		return nil, 0, apperror.NewNotFound("vessel", b.AssignedVessel().String())
	}

	if b.PackageID == nil {
		return vessel, 0, nil
	}
	pkg, err := s.repo.Package.FindByID(ctx, *b.PackageID)
	if err != nil {
		return nil, 0, apperror.NewInternal(err, "load package")
	}
	if pkg == nil {
		return nil, 0, apperror.NewNotFound("package", b.PackageID.String())
	}
	return vessel, pkg.PerGuestFeeCents, nil
}

func guardOpen(b *entity.Booking) error {
	if b.Status.IsTerminal() {
		return apperror.New(apperror.InvalidTransition, "booking %s is %s and can no longer be modified", b.ID, b.Status)
	}
	return nil
}
