package repository

import (
	"context"
	"errors"
	"fmt"

	"vessel-booking/internal/data/entity"
	"vessel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VesselRepository interface {
	Create(ctx context.Context, vessel *entity.Vessel) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Vessel, error)
}

type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.Package) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Package, error)
}

type vesselRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewVesselRepository(db database.DBTX, log *zap.Logger) VesselRepository {
	return &vesselRepository{
		db:  db,
		log: log.With(zap.String("repository", "vessel")),
	}
}

func (r *vesselRepository) Create(ctx context.Context, vessel *entity.Vessel) error {
	query := `
		INSERT INTO vessels (id, name, price_per_day_cents, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		vessel.ID,
		vessel.Name,
		vessel.PricePerDayCents,
		vessel.Capacity,
		vessel.CreatedAt,
		vessel.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create vessel", zap.Error(err), zap.String("vessel_id", vessel.ID.String()))
		return fmt.Errorf("create vessel %s: %w", vessel.ID, err)
	}

	return nil
}

// FindByID returns nil, nil when the vessel does not exist.
func (r *vesselRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Vessel, error) {
	query := `
		SELECT id, name, price_per_day_cents, capacity, created_at, updated_at
		FROM vessels
		WHERE id = $1
	`

	var vessel entity.Vessel
	err := r.db.QueryRow(ctx, query, id).Scan(
		&vessel.ID,
		&vessel.Name,
		&vessel.PricePerDayCents,
		&vessel.Capacity,
		&vessel.CreatedAt,
		&vessel.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vessel by ID", zap.Error(err), zap.String("vessel_id", id.String()))
		return nil, fmt.Errorf("find vessel by ID %s: %w", id, err)
	}

	return &vessel, nil
}

type packageRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewPackageRepository(db database.DBTX, log *zap.Logger) PackageRepository {
	return &packageRepository{
		db:  db,
		log: log.With(zap.String("repository", "package")),
	}
}

func (r *packageRepository) Create(ctx context.Context, pkg *entity.Package) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO packages (id, name, per_guest_fee_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pkg.ID, pkg.Name, pkg.PerGuestFeeCents, pkg.CreatedAt, pkg.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create package", zap.Error(err), zap.String("package_id", pkg.ID.String()))
		return fmt.Errorf("create package %s: %w", pkg.ID, err)
	}

	for position, vesselID := range pkg.VesselIDs {
		_, err := r.db.Exec(ctx, `
			INSERT INTO package_vessels (package_id, vessel_id, position)
			VALUES ($1, $2, $3)
		`, pkg.ID, vesselID, position)
		if err != nil {
			return fmt.Errorf("attach vessel %s to package %s: %w", vesselID, pkg.ID, err)
		}
	}

	return nil
}

// FindByID loads the package with its vessels in their configured order.
func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	var pkg entity.Package
	err := r.db.QueryRow(ctx, `
		SELECT id, name, per_guest_fee_cents, created_at, updated_at
		FROM packages
		WHERE id = $1
	`, id).Scan(&pkg.ID, &pkg.Name, &pkg.PerGuestFeeCents, &pkg.CreatedAt, &pkg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by ID", zap.Error(err), zap.String("package_id", id.String()))
		return nil, fmt.Errorf("find package by ID %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT vessel_id FROM package_vessels
		WHERE package_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("find vessels of package %s: %w", id, err)
	}

	pkg.VesselIDs, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("scan vessels of package %s: %w", id, err)
	}

	return &pkg, nil
}
