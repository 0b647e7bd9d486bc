package usecase

import (
	"context"
	"time"

	"vessel-booking/internal/data/repository"
	"vessel-booking/internal/dto/request"
	"vessel-booking/internal/dto/response"
	"vessel-booking/pkg/apperror"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AllocationRequest struct {
	CandidateVesselIDs []uuid.UUID
	StartDate          time.Time
	EndDate            time.Time
	GuestCount         int
	PerGuestFeeCents   int64
}

type CandidateResult struct {
	VesselID        uuid.UUID
	DatesFree       bool
	CapacityOK      bool
	TotalPriceCents int64
}

// AllocationResult with Available=false is NoneAvailable: no candidate has the dates free.
// CapacityShortfall marks the fallback pick made when no free candidate fits the party.
type AllocationResult struct {
	Available         bool
	VesselID          uuid.UUID
	TotalPriceCents   int64
	CapacityShortfall bool
	Candidates        []CandidateResult
}

type AllocatorService interface {
	AllocateVessel(ctx context.Context, req *request.AllocateVesselRequest) (*response.AllocationResponse, error)
	Allocate(ctx context.Context, req AllocationRequest) (*AllocationResult, error)
}

type allocatorService struct {
	repo         *repository.Repository
	availability AvailabilityService
	maxParallel  int
	log          *zap.Logger
}

func NewAllocatorService(repo *repository.Repository, availability AvailabilityService, config utils.AllocatorConfig, log *zap.Logger) AllocatorService {
	maxParallel := config.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &allocatorService{
		repo:         repo,
		availability: availability,
		maxParallel:  maxParallel,
		log:          log.With(zap.String("service", "allocator")),
	}
}

func (s *allocatorService) AllocateVessel(ctx context.Context, req *request.AllocateVesselRequest) (*response.AllocationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.NewValidation(errs)
	}

	start, end, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	candidates, err := parseIDs(req.CandidateVesselIDs)
	if err != nil {
		return nil, err
	}

	var fee int64
	if req.PackageID != "" {
		pkgID, _ := uuid.Parse(req.PackageID)
		pkg, err := s.repo.Package.FindByID(ctx, pkgID)
		if err != nil {
			return nil, apperror.NewInternal(err, "load package")
		}
		if pkg == nil {
			return nil, apperror.NewNotFound("package", req.PackageID)
		}
		fee = pkg.PerGuestFeeCents
		if len(candidates) == 0 {
			candidates = pkg.VesselIDs
		}
	}

	result, err := s.Allocate(ctx, AllocationRequest{
		CandidateVesselIDs: candidates,
		StartDate:          start,
		EndDate:            end,
		GuestCount:         req.GuestCount,
		PerGuestFeeCents:   fee,
	})
	if err != nil {
		return nil, err
	}

	return allocationToResponse(result), nil
}

// Allocate checks every candidate concurrently and then picks deterministically:
// among candidates with free dates, the cheapest one that fits the party wins, ties
// going to the earlier candidate. When none fits, the first candidate with free dates
// is returned and flagged as a capacity shortfall.
func (s *allocatorService) Allocate(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
	candidates := dedupe(req.CandidateVesselIDs)
	if len(candidates) == 0 {
		return nil, apperror.NewInvalidInput("at least one candidate vessel is required")
	}

	checks := make([]*AvailabilityResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, vesselID := range candidates {
		g.Go(func() error {
			res, err := s.availability.Evaluate(gctx, AvailabilityQuery{
				VesselID:   vesselID,
				StartDate:  req.StartDate,
				EndDate:    req.EndDate,
				GuestCount: req.GuestCount,
			})
			if err != nil {
				return err
			}
			checks[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &AllocationResult{Candidates: make([]CandidateResult, len(candidates))}
	best, fallback := -1, -1
	for i, check := range checks {
		total := check.TotalPriceCents + req.PerGuestFeeCents*int64(req.GuestCount)
		result.Candidates[i] = CandidateResult{
			VesselID:        candidates[i],
			DatesFree:       check.DatesFree,
			CapacityOK:      check.CapacityOK,
			TotalPriceCents: total,
		}

		if !check.DatesFree {
			continue
		}
		if fallback < 0 {
			fallback = i
		}
		if check.CapacityOK && (best < 0 || total < result.Candidates[best].TotalPriceCents) {
			best = i
		}
	}

	pick := best
	if pick < 0 {
		pick = fallback
	}
	if pick < 0 {
		s.log.Info("No candidate vessel available",
			zap.Int("candidates", len(candidates)),
			zap.String("start", utils.FormatDate(req.StartDate)),
			zap.String("end", utils.FormatDate(req.EndDate)),
		)
		return result, nil
	}

	result.Available = true
	result.VesselID = result.Candidates[pick].VesselID
	result.TotalPriceCents = result.Candidates[pick].TotalPriceCents
	result.CapacityShortfall = best < 0

	if result.CapacityShortfall {
		s.log.Warn("Allocated vessel below requested capacity",
			zap.String("vessel_id", result.VesselID.String()),
			zap.Int("guests", req.GuestCount),
		)
	}

	return result, nil
}

func allocationToResponse(r *AllocationResult) *response.AllocationResponse {
	resp := &response.AllocationResponse{
		Available:         r.Available,
		TotalPriceCents:   r.TotalPriceCents,
		CapacityShortfall: r.CapacityShortfall,
		Candidates:        make([]response.CandidateResponse, 0, len(r.Candidates)),
	}
	if r.Available {
		resp.VesselID = r.VesselID.String()
	}
	for _, c := range r.Candidates {
		resp.Candidates = append(resp.Candidates, response.CandidateResponse{
			VesselID:        c.VesselID.String(),
			DatesFree:       c.DatesFree,
			CapacityOK:      c.CapacityOK,
			TotalPriceCents: c.TotalPriceCents,
		})
	}
	return resp
}

func parseIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperror.NewInvalidInput("invalid vessel id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
