package repository

import (
	"context"
	"errors"
	"fmt"

	"vessel-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrAlreadyClaimed is returned by AvailabilityRepository.Claim when any day in the
// requested range is held by another booking. No day of the range is claimed.
var ErrAlreadyClaimed = errors.New("availability day already claimed")

// ErrRecordNotFound is returned by updates that match no row.
var ErrRecordNotFound = errors.New("record not found")

// TxFunc runs against repositories bound to one transaction.
type TxFunc func(tx *Repository) error

type txRunner interface {
	run(ctx context.Context, repo *Repository, fn TxFunc) error
}

type Repository struct {
	Vessel       VesselRepository
	Package      PackageRepository
	Booking      BookingRepository
	Availability AvailabilityRepository
	Modification ModificationRepository
	Loyalty      LoyaltyRepository

	runner txRunner
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newPostgresRepository(db, log)
	repo.runner = &pgxRunner{db: db, log: log}
	return repo
}

func newPostgresRepository(db database.DBTX, log *zap.Logger) *Repository {
	return &Repository{
		Vessel:       NewVesselRepository(db, log),
		Package:      NewPackageRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Availability: NewAvailabilityRepository(db, log),
		Modification: NewModificationRepository(db, log),
		Loyalty:      NewLoyaltyRepository(db, log),
	}
}

// Transaction commits when fn returns nil and rolls everything back otherwise.
func (r *Repository) Transaction(ctx context.Context, fn TxFunc) error {
	return r.runner.run(ctx, r, fn)
}

type pgxRunner struct {
	db  database.PgxIface
	log *zap.Logger
}

func (p *pgxRunner) run(ctx context.Context, _ *Repository, fn TxFunc) error {
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		txRepo := newPostgresRepository(tx, p.log)
		txRepo.runner = nestedRunner{}
		return fn(txRepo)
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

// nestedRunner reuses the enclosing transaction.
type nestedRunner struct{}

func (nestedRunner) run(_ context.Context, repo *Repository, fn TxFunc) error {
	return fn(repo)
}
