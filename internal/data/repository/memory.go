package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type dayKey struct {
	vesselID uuid.UUID
	day      time.Time
}

type memoryState struct {
	vessels       map[uuid.UUID]entity.Vessel
	packages      map[uuid.UUID]entity.Package
	bookings      map[uuid.UUID]entity.Booking
	days          map[dayKey]entity.AvailabilityDay
	modifications []entity.BookingModification
	grants        map[uuid.UUID]entity.LoyaltyGrant
	balances      map[uuid.UUID]int64
}

func newMemoryState() memoryState {
	return memoryState{
		vessels:  make(map[uuid.UUID]entity.Vessel),
		packages: make(map[uuid.UUID]entity.Package),
		bookings: make(map[uuid.UUID]entity.Booking),
		days:     make(map[dayKey]entity.AvailabilityDay),
		grants:   make(map[uuid.UUID]entity.LoyaltyGrant),
		balances: make(map[uuid.UUID]int64),
	}
}

func (s memoryState) clone() memoryState {
	c := newMemoryState()
	for k, v := range s.vessels {
		c.vessels[k] = v
	}
	for k, v := range s.packages {
		c.packages[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.days {
		c.days[k] = v
	}
	c.modifications = append([]entity.BookingModification(nil), s.modifications...)
	for k, v := range s.grants {
		c.grants[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

// memoryStore keeps everything in process. Transactions are serialized and roll back
// by restoring a snapshot, which gives the same all-or-nothing outcome as Postgres.
type memoryStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state memoryState
	log   *zap.Logger
}

// NewMemoryRepository builds a Repository backed by process memory.
func NewMemoryRepository(log *zap.Logger) *Repository {
	store := &memoryStore{state: newMemoryState(), log: log.With(zap.String("repository", "memory"))}
	return &Repository{
		Vessel:       &memVesselRepo{store},
		Package:      &memPackageRepo{store},
		Booking:      &memBookingRepo{store},
		Availability: &memAvailabilityRepo{store},
		Modification: &memModificationRepo{store},
		Loyalty:      &memLoyaltyRepo{store},
		runner:       store,
	}
}

func (s *memoryStore) run(_ context.Context, repo *Repository, fn TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	txRepo := *repo
	txRepo.runner = nestedRunner{}

	if err := fn(&txRepo); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		s.log.Debug("Transaction rolled back", zap.Error(err))
		return err
	}
	return nil
}

type memVesselRepo struct{ s *memoryStore }

func (r *memVesselRepo) Create(_ context.Context, vessel *entity.Vessel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.vessels[vessel.ID] = *vessel
	return nil
}

func (r *memVesselRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Vessel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.state.vessels[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type memPackageRepo struct{ s *memoryStore }

func (r *memPackageRepo) Create(_ context.Context, pkg *entity.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := *pkg
	p.VesselIDs = append([]uuid.UUID(nil), pkg.VesselIDs...)
	r.s.state.packages[pkg.ID] = p
	return nil
}

func (r *memPackageRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.state.packages[id]
	if !ok {
		return nil, nil
	}
	p.VesselIDs = append([]uuid.UUID(nil), p.VesselIDs...)
	return &p, nil
}

type memBookingRepo struct{ s *memoryStore }

func (r *memBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.state.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// FindByIDForUpdate needs no row lock: memory transactions are already serialized.
func (r *memBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var owned []*entity.Booking
	for _, b := range r.s.state.bookings {
		if b.OwnerID == ownerID {
			b := b
			owned = append(owned, &b)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	if offset >= len(owned) {
		return nil, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (r *memBookingRepo) CountByOwnerID(_ context.Context, ownerID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int64
	for _, b := range r.s.state.bookings {
		if b.OwnerID == ownerID {
			total++
		}
	}
	return total, nil
}

func (r *memBookingRepo) Update(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.state.bookings[booking.ID]; !ok {
		return ErrRecordNotFound
	}
	r.s.state.bookings[booking.ID] = *booking
	return nil
}

type memAvailabilityRepo struct{ s *memoryStore }

func (r *memAvailabilityRepo) FindClaims(_ context.Context, vesselID uuid.UUID, start, end time.Time) ([]*entity.AvailabilityDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var days []*entity.AvailabilityDay
	for _, d := range utils.EnumerateDays(start, end) {
		if claim, ok := r.s.state.days[dayKey{vesselID, d}]; ok {
			days = append(days, &claim)
		}
	}
	return days, nil
}

func (r *memAvailabilityRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.AvailabilityDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var days []*entity.AvailabilityDay
	for _, claim := range r.s.state.days {
		if claim.BookingID == bookingID {
			claim := claim
			days = append(days, &claim)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

func (r *memAvailabilityRepo) Claim(_ context.Context, vesselID, bookingID uuid.UUID, start, end time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var keys []dayKey
	for _, d := range utils.EnumerateDays(start, end) {
		key := dayKey{vesselID, d}
		if _, taken := r.s.state.days[key]; taken {
			return ErrAlreadyClaimed
		}
		keys = append(keys, key)
	}

	now := time.Now().UTC()
	for _, key := range keys {
		r.s.state.days[key] = entity.AvailabilityDay{
			VesselID:  key.vesselID,
			Day:       key.day,
			BookingID: bookingID,
			CreatedAt: now,
		}
	}
	return nil
}

func (r *memAvailabilityRepo) Release(_ context.Context, bookingID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var released int64
	for key, claim := range r.s.state.days {
		if claim.BookingID == bookingID {
			delete(r.s.state.days, key)
			released++
		}
	}
	return released, nil
}

type memModificationRepo struct{ s *memoryStore }

func (r *memModificationRepo) Create(_ context.Context, m *entity.BookingModification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.modifications = append(r.s.state.modifications, *m)
	return nil
}

func (r *memModificationRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.BookingModification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var mods []*entity.BookingModification
	for _, m := range r.s.state.modifications {
		if m.BookingID == bookingID {
			m := m
			mods = append(mods, &m)
		}
	}
	return mods, nil
}

type memLoyaltyRepo struct{ s *memoryStore }

func (r *memLoyaltyRepo) Grant(_ context.Context, grant *entity.LoyaltyGrant) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.state.grants[grant.BookingID]; exists {
		return false, nil
	}
	r.s.state.grants[grant.BookingID] = *grant
	r.s.state.balances[grant.UserID] += int64(grant.Points)
	return true, nil
}

func (r *memLoyaltyRepo) Balance(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.state.balances[userID], nil
}
