package usecase

import (
	"context"
	"errors"
	"slices"
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

// maxCalendarDays bounds one calendar query.
const maxCalendarDays = 366

type BookingService interface {
	CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	UpdateBookingStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error)
	ListMyBookings(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	GetLoyaltyBalance(ctx context.Context, actor Actor) (*response.LoyaltyResponse, error)

	// Admin
	GetVesselCalendar(ctx context.Context, actor Actor, vesselID string, req *request.VesselCalendarRequest) (*response.VesselCalendarResponse, error)
}

type bookingService struct {
	repo          *repository.Repository
	availability  AvailabilityService
	allocator     AllocatorService
	notifier      notify.Notifier
	loyaltyPoints int
	log           *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	availability AvailabilityService,
	allocator AllocatorService,
	notifier notify.Notifier,
	config utils.BookingConfig,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:          repo,
		availability:  availability,
		allocator:     allocator,
		notifier:      notifier,
		loyaltyPoints: config.LoyaltyPointsPerStay,
		log:           log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperror.NewValidation(errs)
	}

	start, end, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:         actor.ID,
		StartDate:       start,
		EndDate:         end,
		GuestCount:      req.GuestCount,
		Status:          entity.BookingStatusPending,
		SpecialRequests: req.SpecialRequests,
	}

	if req.PackageID != "" {
		err = s.preparePackageBooking(ctx, booking, req)
	} else {
		err = s.prepareVesselBooking(ctx, booking, req)
	}
	if err != nil {
		return nil, err
	}

	vesselID := booking.AssignedVessel()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Booking.Create(ctx, booking); err != nil {
			return apperror.NewInternal(err, "create booking")
		}
		return claimDays(ctx, tx, vesselID, booking)
	})
	if err != nil {
		s.log.Info("Create booking failed",
			zap.Error(err),
			zap.String("vessel_id", vesselID.String()),
			zap.String("owner_id", actor.ID.String()),
		)
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("vessel_id", vesselID.String()),
		zap.String("type", string(booking.Type)),
		zap.Int64("total_price_cents", booking.TotalPriceCents),
	)

	s.notifyCreated(ctx, booking)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) prepareVesselBooking(ctx context.Context, booking *entity.Booking, req *request.CreateBookingRequest) error {
	vesselID, err := uuid.Parse(req.VesselID)
	if err != nil {
		return apperror.NewInvalidInput("invalid vessel id %q", req.VesselID)
	}

	check, err := s.availability.Evaluate(ctx, AvailabilityQuery{
		VesselID:   vesselID,
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		GuestCount: booking.GuestCount,
	})
	if err != nil {
		return err
	}
	if !check.CapacityOK {
		return apperror.NewInvalidInput("guest count %d exceeds vessel capacity %d", booking.GuestCount, check.Vessel.Capacity)
	}
	if !check.DatesFree {
		return apperror.NewConflict("vessel is already booked on %s", utils.FormatDate(check.BlockedDays[0]))
	}

	booking.Type = entity.BookingTypeVessel
	booking.VesselID = &vesselID
	booking.TotalPriceCents = check.TotalPriceCents
	return nil
}

func (s *bookingService) preparePackageBooking(ctx context.Context, booking *entity.Booking, req *request.CreateBookingRequest) error {
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return apperror.NewInvalidInput("invalid package id %q", req.PackageID)
	}

	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil {
		return apperror.NewInternal(err, "load package")
	}
	if pkg == nil {
		return apperror.NewNotFound("package", req.PackageID)
	}

	candidates := pkg.VesselIDs
	if len(req.CandidateVesselIDs) > 0 {
		candidates, err = parseIDs(req.CandidateVesselIDs)
		if err != nil {
			return err
		}
		for _, id := range candidates {
			if !slices.Contains(pkg.VesselIDs, id) {
				return apperror.NewInvalidInput("vessel %s is not part of package %s", id, pkg.ID)
			}
		}
	}
	if len(candidates) == 0 {
		return apperror.NewInvalidInput("package %s has no vessels", pkg.ID)
	}

	allocation, err := s.allocator.Allocate(ctx, AllocationRequest{
		CandidateVesselIDs: candidates,
		StartDate:          booking.StartDate,
		EndDate:            booking.EndDate,
		GuestCount:         booking.GuestCount,
		PerGuestFeeCents:   pkg.PerGuestFeeCents,
	})
	if err != nil {
		return err
	}
	if !allocation.Available {
		return apperror.NewConflict("no vessel in package %s is available for the requested dates", pkg.ID)
	}
	if allocation.CapacityShortfall {
		return apperror.NewInvalidInput("no available vessel in package %s can take %d guests", pkg.ID, booking.GuestCount)
	}

	vesselID := allocation.VesselID
	booking.Type = entity.BookingTypePackage
	booking.PackageID = &pkg.ID
	booking.VesselID = &vesselID
	booking.TotalPriceCents = allocation.TotalPriceCents
	return nil
}

func (s *bookingService) UpdateBookingStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.NewValidation(errs)
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid booking id %q", bookingID)
	}
	target, err := entity.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, apperror.NewInvalidInput("%v", err)
	}

	current, err := loadAccessible(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	if target != entity.BookingStatusCancelled && !actor.Admin {
		return nil, apperror.NewForbidden("only operators may move a booking to %s", target)
	}

	var (
		booking  *entity.Booking
		previous = current.Status
		changed  bool
		granted  bool
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return apperror.NewInternal(err, "lock booking")
		}
		if b == nil {
			return apperror.NewNotFound("booking", bookingID)
		}
		booking = b
		previous = b.Status

		// Repeating a transition the booking already made is a no-op success.
		if b.Status == target {
			return nil
		}

		if err := b.Transition(target, time.Now().UTC()); err != nil {
			return apperror.NewInvalidTransition(string(previous), string(target))
		}

		switch {
		case previous.HoldsClaim() && !target.HoldsClaim():
			released, err := tx.Availability.Release(ctx, b.ID)
			if err != nil {
				return apperror.NewInternal(err, "release days")
			}
			s.log.Debug("Days released", zap.String("booking_id", b.ID.String()), zap.Int64("days", released))

		case !previous.HoldsClaim() && target.HoldsClaim():
			if err := claimDays(ctx, tx, b.AssignedVessel(), b); err != nil {
				return err
			}

		case target == entity.BookingStatusCompleted:
			granted, err = tx.Loyalty.Grant(ctx, &entity.LoyaltyGrant{
				BookingID: b.ID,
				UserID:    b.OwnerID,
				Points:    s.loyaltyPoints,
				CreatedAt: b.UpdatedAt,
			})
			if err != nil {
				return apperror.NewInternal(err, "grant loyalty points")
			}
		}

		if err := tx.Booking.Update(ctx, b); err != nil {
			return apperror.NewInternal(err, "update booking status")
		}
		changed = true
		return nil
	})
	if err != nil {
		s.log.Info("Status change rejected",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("from", string(previous)),
			zap.String("to", string(target)),
		)
		return nil, err
	}

	if changed {
		s.log.Info("Booking status changed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(target)),
			zap.String("actor_id", actor.ID.String()),
			zap.Bool("loyalty_granted", granted),
		)
		s.notifyStatusChanged(ctx, booking, previous, granted)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid booking id %q", bookingID)
	}

	booking, err := loadAccessible(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = 10
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.NewValidation(errs)
	}

	bookings, err := s.repo.Booking.FindByOwnerID(ctx, actor.ID, req.Limit(), req.Offset())
	if err != nil {
		return nil, apperror.NewInternal(err, "list bookings")
	}
	total, err := s.repo.Booking.CountByOwnerID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.NewInternal(err, "count bookings")
	}

	data := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, response.BookingToResponse(b))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetLoyaltyBalance(ctx context.Context, actor Actor) (*response.LoyaltyResponse, error) {
	points, err := s.repo.Loyalty.Balance(ctx, actor.ID)
	if err != nil {
		return nil, apperror.NewInternal(err, "load loyalty balance")
	}
	return &response.LoyaltyResponse{UserID: actor.ID.String(), Points: points}, nil
}

func (s *bookingService) GetVesselCalendar(ctx context.Context, actor Actor, vesselID string, req *request.VesselCalendarRequest) (*response.VesselCalendarResponse, error) {
	if !actor.Admin {
		return nil, apperror.NewForbidden("vessel calendar is restricted to operators")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.NewValidation(errs)
	}

	id, err := uuid.Parse(vesselID)
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid vessel id %q", vesselID)
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	if utils.NightsBetween(from, to) > maxCalendarDays {
		return nil, apperror.NewInvalidInput("calendar range is limited to %d days", maxCalendarDays)
	}

	vessel, err := s.repo.Vessel.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal(err, "load vessel")
	}
	if vessel == nil {
		return nil, apperror.NewNotFound("vessel", vesselID)
	}

	claims, err := s.repo.Availability.FindClaims(ctx, id, from, to)
	if err != nil {
		return nil, apperror.NewInternal(err, "load calendar")
	}

	days := make([]response.CalendarDayResponse, 0, len(claims))
	for _, c := range claims {
		days = append(days, response.CalendarDayResponse{
			Date:      utils.FormatDate(c.Day),
			BookingID: c.BookingID.String(),
		})
	}

	return &response.VesselCalendarResponse{
		VesselID: id.String(),
		From:     utils.FormatDate(from),
		To:       utils.FormatDate(to),
		Claimed:  days,
	}, nil
}

// loadAccessible returns the booking when the actor owns it or is an operator.
func loadAccessible(ctx context.Context, repo *repository.Repository, actor Actor, id uuid.UUID) (*entity.Booking, error) {
	booking, err := repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal(err, "load booking")
	}
	if booking == nil {
		return nil, apperror.NewNotFound("booking", id.String())
	}
	if !actor.canAccess(booking) {
		return nil, apperror.NewForbidden("booking %s belongs to another customer", id)
	}
	return booking, nil
}

// claimDays takes the booking's whole range on vesselID or fails with Conflict.
func claimDays(ctx context.Context, tx *repository.Repository, vesselID uuid.UUID, booking *entity.Booking) error {
	err := tx.Availability.Claim(ctx, vesselID, booking.ID, booking.StartDate, booking.EndDate)
	if errors.Is(err, repository.ErrAlreadyClaimed) {
		return apperror.Wrap(apperror.Conflict, err, "vessel is no longer available from %s to %s",
			utils.FormatDate(booking.StartDate), utils.FormatDate(booking.EndDate))
	}
	if err != nil {
		return apperror.NewInternal(err, "claim days")
	}
	return nil
}

func (s *bookingService) notifyCreated(ctx context.Context, b *entity.Booking) {
	payload := map[string]any{
		"vessel_id":         b.AssignedVessel().String(),
		"start_date":        utils.FormatDate(b.StartDate),
		"end_date":          utils.FormatDate(b.EndDate),
		"guest_count":       b.GuestCount,
		"total_price_cents": b.TotalPriceCents,
	}

	publish(ctx, s.notifier, s.log, notify.Notification{
		Type:        notify.TypeBookingCreated,
		Audience:    notify.AudienceCustomer,
		RecipientID: b.OwnerID,
		BookingID:   b.ID,
		Status:      string(b.Status),
		OccurredAt:  b.CreatedAt,
		Payload:     payload,
	})
	publish(ctx, s.notifier, s.log, notify.Notification{
		Type:       notify.TypeBookingCreated,
		Audience:   notify.AudienceOperators,
		BookingID:  b.ID,
		Status:     string(b.Status),
		OccurredAt: b.CreatedAt,
		Payload:    payload,
	})
}

func (s *bookingService) notifyStatusChanged(ctx context.Context, b *entity.Booking, previous entity.BookingStatus, granted bool) {
	payload := map[string]any{"previous_status": string(previous)}
	if granted {
		payload["loyalty_points"] = s.loyaltyPoints
	}

	publish(ctx, s.notifier, s.log, notify.Notification{
		Type:        notify.TypeBookingStatusChanged,
		Audience:    notify.AudienceCustomer,
		RecipientID: b.OwnerID,
		BookingID:   b.ID,
		Status:      string(b.Status),
		OccurredAt:  b.UpdatedAt,
		Payload:     payload,
	})
}
