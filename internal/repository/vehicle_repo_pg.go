package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VehicleRepository is the driver/vehicle collaborator: publishing a ride
// requires the driver to own at least one registered vehicle.
type VehicleRepository interface {
	HasRegisteredVehicle(ctx context.Context, userID int64) (bool, error)
	LatestVehicleID(ctx context.Context, userID int64) (int64, error)
}

type PGVehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

func (r *PGVehicleRepository) HasRegisteredVehicle(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vehicles WHERE user_id=$1)`, userID).Scan(&exists)
	return exists, err
}

func (r *PGVehicleRepository) LatestVehicleID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM vehicles WHERE user_id=$1 ORDER BY id DESC LIMIT 1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNoVehicleRegistered
		}
		return 0, err
	}
	return id, nil
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)
