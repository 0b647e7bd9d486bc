package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/internal/data/repository"
	"vessel-booking/internal/dto/request"
	"vessel-booking/pkg/notify"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) Close() error { return nil }

func (r *recordingNotifier) ofType(typ string) []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Notification
	for _, n := range r.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// stallingNotifier blocks every delivery until its context ends.
type stallingNotifier struct {
	timedOut atomic.Int32
}

func (s *stallingNotifier) Notify(ctx context.Context, _ notify.Notification) error {
	<-ctx.Done()
	s.timedOut.Add(1)
	return ctx.Err()
}

func (s *stallingNotifier) Close() error { return nil }

type fixture struct {
	repo     *repository.Repository
	notifier *recordingNotifier
	svc      *Service
	config   *utils.Config
	customer Actor
	admin    Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	config := &utils.Config{
		Booking:   utils.BookingConfig{LoyaltyPointsPerStay: 100},
		Allocator: utils.AllocatorConfig{MaxParallel: 4},
	}
	repo := repository.NewMemoryRepository(zap.NewNop())
	notifier := &recordingNotifier{}
	return &fixture{
		repo:     repo,
		notifier: notifier,
		svc:      NewService(repo, config, notifier, zap.NewNop()),
		config:   config,
		customer: Actor{ID: uuid.New()},
		admin:    Actor{ID: uuid.New(), Admin: true},
	}
}

func (f *fixture) vessel(t *testing.T, name string, pricePerDayCents int64, capacity int) *entity.Vessel {
	t.Helper()
	v := &entity.Vessel{
		Base:             entity.Base{ID: uuid.New(), CreatedAt: time.Now().UTC()},
		Name:             name,
		PricePerDayCents: pricePerDayCents,
		Capacity:         capacity,
	}
	require.NoError(t, f.repo.Vessel.Create(context.Background(), v))
	return v
}

func (f *fixture) pkg(t *testing.T, feeCents int64, vessels ...*entity.Vessel) *entity.Package {
	t.Helper()
	p := &entity.Package{
		Base:             entity.Base{ID: uuid.New(), CreatedAt: time.Now().UTC()},
		Name:             "Nile classic",
		PerGuestFeeCents: feeCents,
	}
	for _, v := range vessels {
		p.VesselIDs = append(p.VesselIDs, v.ID)
	}
	require.NoError(t, f.repo.Package.Create(context.Background(), p))
	return p
}

func (f *fixture) book(t *testing.T, actor Actor, vessel *entity.Vessel, start, end string, guests int) string {
	t.Helper()
	resp, err := f.svc.Booking.CreateBooking(context.Background(), actor, &request.CreateBookingRequest{
		VesselID:   vessel.ID.String(),
		StartDate:  start,
		EndDate:    end,
		GuestCount: guests,
	})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) setStatus(actor Actor, bookingID string, status entity.BookingStatus) error {
	_, err := f.svc.Booking.UpdateBookingStatus(context.Background(), actor, bookingID, &request.UpdateBookingStatusRequest{
		Status: string(status),
	})
	return err
}

// notified waits for background deliveries, then returns those of type typ.
func (f *fixture) notified(typ string) []notify.Notification {
	f.svc.FlushNotifications()
	return f.notifier.ofType(typ)
}

func (f *fixture) claimedBy(t *testing.T, bookingID string) []string {
	t.Helper()
	days, err := f.repo.Availability.FindByBookingID(context.Background(), uuid.MustParse(bookingID))
	require.NoError(t, err)
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, utils.FormatDate(d.Day))
	}
	return out
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(value)
	require.NoError(t, err)
	return d
}

var errBoom = errors.New("boom")

// failingModifications rejects every write so the surrounding transaction must roll back.
type failingModifications struct{}

func (failingModifications) Create(context.Context, *entity.BookingModification) error {
	return errBoom
}

func (failingModifications) FindByBookingID(context.Context, uuid.UUID) ([]*entity.BookingModification, error) {
	return nil, nil
}
