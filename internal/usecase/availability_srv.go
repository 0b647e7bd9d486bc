package usecase

import (
	"context"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/internal/data/repository"
	"vessel-booking/internal/dto/request"
	"vessel-booking/internal/dto/response"
	"vessel-booking/pkg/apperror"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityQuery asks whether a vessel can take guestCount guests for [StartDate, EndDate).
// Claims held by ExcludeBookingID do not count against the range.
type AvailabilityQuery struct {
	VesselID         uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	GuestCount       int
	ExcludeBookingID uuid.UUID
}

type AvailabilityResult struct {
	Vessel          *entity.Vessel
	Nights          int
	CapacityOK      bool
	DatesFree       bool
	BlockedDays     []time.Time
	TotalPriceCents int64
}

// IsAvailable is true when every day is free and the party fits.
func (r *AvailabilityResult) IsAvailable() bool {
	return r.CapacityOK && r.DatesFree
}

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error)
	// Evaluate is the read-only check other services build on.
	Evaluate(ctx context.Context, q AvailabilityQuery) (*AvailabilityResult, error)
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Debug("Check availability validation failed", zap.Any("errors", errs))
		return nil, apperror.NewValidation(errs)
	}

	vesselID, _ := uuid.Parse(req.VesselID)
	start, end, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	result, err := s.Evaluate(ctx, AvailabilityQuery{
		VesselID:   vesselID,
		StartDate:  start,
		EndDate:    end,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		return nil, err
	}

	blocked := make([]string, 0, len(result.BlockedDays))
	for _, d := range result.BlockedDays {
		blocked = append(blocked, utils.FormatDate(d))
	}

	return &response.AvailabilityResponse{
		VesselID:        vesselID.String(),
		StartDate:       utils.FormatDate(start),
		EndDate:         utils.FormatDate(end),
		GuestCount:      req.GuestCount,
		Nights:          result.Nights,
		IsAvailable:     result.IsAvailable(),
		CapacityOK:      result.CapacityOK,
		BlockedDays:     blocked,
		TotalPriceCents: result.TotalPriceCents,
	}, nil
}

func (s *availabilityService) Evaluate(ctx context.Context, q AvailabilityQuery) (*AvailabilityResult, error) {
	start := utils.TruncateDay(q.StartDate)
	end := utils.TruncateDay(q.EndDate)
	if !start.Before(end) {
		return nil, apperror.NewInvalidInput("start date must be before end date")
	}
	if q.GuestCount < 1 {
		return nil, apperror.NewInvalidInput("guest count must be at least 1")
	}

	vessel, err := s.repo.Vessel.FindByID(ctx, q.VesselID)
	if err != nil {
		return nil, apperror.NewInternal(err, "load vessel")
	}
	if vessel == nil {
		return nil, apperror.NewNotFound("vessel", q.VesselID.String())
	}

	claims, err := s.repo.Availability.FindClaims(ctx, vessel.ID, start, end)
	if err != nil {
		return nil, apperror.NewInternal(err, "load availability")
	}

	var blocked []time.Time
	for _, c := range claims {
		if q.ExcludeBookingID != uuid.Nil && c.BookingID == q.ExcludeBookingID {
			continue
		}
		blocked = append(blocked, c.Day)
	}

	nights := utils.NightsBetween(start, end)
	result := &AvailabilityResult{
		Vessel:          vessel,
		Nights:          nights,
		CapacityOK:      q.GuestCount <= vessel.Capacity,
		DatesFree:       len(blocked) == 0,
		BlockedDays:     blocked,
		TotalPriceCents: stayPrice(vessel, nights, 0, q.GuestCount),
	}

	s.log.Debug("Availability evaluated",
		zap.String("vessel_id", vessel.ID.String()),
		zap.String("start", utils.FormatDate(start)),
		zap.String("end", utils.FormatDate(end)),
		zap.Int("guests", q.GuestCount),
		zap.Bool("available", result.IsAvailable()),
	)

	return result, nil
}

// stayPrice is the vessel's day rate for every night plus the per-guest package fee.
func stayPrice(vessel *entity.Vessel, nights int, perGuestFeeCents int64, guests int) int64 {
	return vessel.PricePerDayCents*int64(nights) + perGuestFeeCents*int64(guests)
}

// maxStayNights bounds a single stay, and with it the rows one claim may write.
const maxStayNights = 366

// parseStay is parseRange plus the stay length limit.
func parseStay(startValue, endValue string) (time.Time, time.Time, error) {
	start, end, err := parseRange(startValue, endValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := checkStayLength(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func checkStayLength(start, end time.Time) error {
	if nights := utils.NightsBetween(start, end); nights > maxStayNights {
		return apperror.NewInvalidInput("stay of %d nights exceeds the limit of %d", nights, maxStayNights)
	}
	return nil
}

func parseRange(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := utils.ParseDate(startValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewInvalidInput("%v", err)
	}
	end, err := utils.ParseDate(endValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewInvalidInput("%v", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, apperror.NewInvalidInput("start date must be before end date")
	}
	return start, end, nil
}
