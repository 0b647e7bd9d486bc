//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/database"
	"vessel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupPostgres starts a disposable Postgres and returns a migrated pool.
func setupPostgres(t *testing.T) database.PgxIface {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "vessel_booking",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := utils.DatabaseConfig{
		Driver:   utils.DriverPostgres,
		Host:     host,
		Port:     port.Port(),
		Name:     "vessel_booking",
		User:     "test",
		Password: "test",
		MaxConns: 10,
	}

	var db database.PgxIface
	require.Eventually(t, func() bool {
		db, err = database.InitDB(cfg)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func seedBooking(t *testing.T, repo *Repository, vesselID uuid.UUID, start, end time.Time) *entity.Booking {
	t.Helper()
	now := time.Now().UTC()
	b := &entity.Booking{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Type:       entity.BookingTypeVessel,
		VesselID:   &vesselID,
		OwnerID:    uuid.New(),
		StartDate:  start,
		EndDate:    end,
		GuestCount: 2,
		Status:     entity.BookingStatusPending,
	}
	require.NoError(t, repo.Booking.Create(context.Background(), b))
	return b
}

func TestPostgresConcurrentClaimsHaveOneWinner(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	vessel := &entity.Vessel{Base: entity.Base{ID: uuid.New()}, Name: "Aurora", PricePerDayCents: 50000, Capacity: 6}
	require.NoError(t, repo.Vessel.Create(ctx, vessel))

	start, end := day("2025-06-01"), day("2025-06-06")
	const contenders = 8
	bookings := make([]*entity.Booking, contenders)
	for i := range bookings {
		bookings[i] = seedBooking(t, repo, vessel.ID, start, end)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		winner []uuid.UUID
	)
	for _, b := range bookings {
		wg.Add(1)
		go func(b *entity.Booking) {
			defer wg.Done()
			err := repo.Transaction(ctx, func(tx *Repository) error {
				return tx.Availability.Claim(ctx, vessel.ID, b.ID, start, end)
			})
			if err == nil {
				mu.Lock()
				winner = append(winner, b.ID)
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrAlreadyClaimed), "unexpected error: %v", err)
		}(b)
	}
	wg.Wait()

	require.Len(t, winner, 1)

	claims, err := repo.Availability.FindClaims(ctx, vessel.ID, start, end)
	require.NoError(t, err)
	require.Len(t, claims, 5)
	for _, c := range claims {
		assert.Equal(t, winner[0], c.BookingID)
	}
}

func TestPostgresPartialOverlapClaimsNothing(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	vessel := &entity.Vessel{Base: entity.Base{ID: uuid.New()}, Name: "Boreas", PricePerDayCents: 40000, Capacity: 4}
	require.NoError(t, repo.Vessel.Create(ctx, vessel))

	held := seedBooking(t, repo, vessel.ID, day("2025-06-04"), day("2025-06-06"))
	require.NoError(t, repo.Availability.Claim(ctx, vessel.ID, held.ID, held.StartDate, held.EndDate))

	late := seedBooking(t, repo, vessel.ID, day("2025-06-01"), day("2025-06-05"))
	err := repo.Availability.Claim(ctx, vessel.ID, late.ID, late.StartDate, late.EndDate)
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	owned, err := repo.Availability.FindByBookingID(ctx, late.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	released, err := repo.Availability.Release(ctx, held.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, released)
}

func TestPostgresLoyaltyGrantIsIdempotent(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db, zap.NewNop())
	ctx := context.Background()

	vesselID := uuid.New()
	require.NoError(t, repo.Vessel.Create(ctx, &entity.Vessel{Base: entity.Base{ID: vesselID}, Name: "Cirrus", PricePerDayCents: 1, Capacity: 1}))
	b := seedBooking(t, repo, vesselID, day("2025-07-01"), day("2025-07-02"))

	grant := &entity.LoyaltyGrant{BookingID: b.ID, UserID: b.OwnerID, Points: 100, CreatedAt: time.Now().UTC()}
	created, err := repo.Loyalty.Grant(ctx, grant)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Loyalty.Grant(ctx, grant)
	require.NoError(t, err)
	assert.False(t, created)

	balance, err := repo.Loyalty.Balance(ctx, b.OwnerID)
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)
}
