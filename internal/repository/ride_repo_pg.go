package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RideSearchFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
}

type RideRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ride, error)
	Create(ctx context.Context, ride *domain.Ride) error
	Update(ctx context.Context, ride *domain.Ride) error
	UpdateStatus(ctx context.Context, id int64, status domain.RideStatus) (*domain.Ride, error)
	Search(ctx context.Context, filter RideSearchFilter) ([]domain.Ride, error)
	ReserveSeats(ctx context.Context, rideID int64, seats int) (int, error)
	SeatsBookedConfirmed(ctx context.Context, rideID int64) (int, error)
}

type PGRideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) RideRepository {
	return &PGRideRepository{db: db}
}

const rideColumns = `id, driver_id, vehicle_id, origin, destination, departure_time, arrival_time, seat_capacity, seats_left, price_cents, description, status, created_at, updated_at`

func scanRide(row pgx.Row, r *domain.Ride) error {
	return row.Scan(&r.ID, &r.DriverID, &r.VehicleID, &r.Origin, &r.Destination, &r.DepartureTime, &r.ArrivalTime, &r.SeatCapacity, &r.SeatsLeft, &r.PriceCents, &r.Description, &r.Status, &r.CreatedAt, &r.UpdatedAt)
}

func (r *PGRideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	row := r.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, id)
	var ride domain.Ride
	if err := scanRide(row, &ride); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

func (r *PGRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	return r.db.QueryRow(ctx, `INSERT INTO rides (driver_id, vehicle_id, origin, destination, departure_time, arrival_time, seat_capacity, seats_left, price_cents, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		ride.DriverID, ride.VehicleID, ride.Origin, ride.Destination, ride.DepartureTime, ride.ArrivalTime, ride.SeatCapacity, ride.SeatsLeft, ride.PriceCents, ride.Description, ride.Status).
		Scan(&ride.ID, &ride.CreatedAt, &ride.UpdatedAt)
}

// Update writes the editable ride fields. The seat counter is deliberately
// not part of the statement; it only moves through ReserveSeats.
func (r *PGRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	cmd, err := r.db.Exec(ctx, `UPDATE rides SET origin=$1, destination=$2, departure_time=$3, arrival_time=$4, price_cents=$5, description=$6, updated_at=now() WHERE id=$7`,
		ride.Origin, ride.Destination, ride.DepartureTime, ride.ArrivalTime, ride.PriceCents, ride.Description, ride.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRideNotFound
	}
	return nil
}

func (r *PGRideRepository) UpdateStatus(ctx context.Context, id int64, status domain.RideStatus) (*domain.Ride, error) {
	row := r.db.QueryRow(ctx, `UPDATE rides SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+rideColumns, status, id)
	var ride domain.Ride
	if err := scanRide(row, &ride); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRideNotFound
		}
		return nil, err
	}
	return &ride, nil
}

func (r *PGRideRepository) Search(ctx context.Context, filter RideSearchFilter) ([]domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status=$1 AND departure_time > now()`
	args := []any{domain.RideStatusActive}

	if filter.Origin != "" {
		args = append(args, "%"+filter.Origin+"%")
		query += ` AND origin ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.Destination != "" {
		args = append(args, "%"+filter.Destination+"%")
		query += ` AND destination ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.Date != nil {
		day := filter.Date.Truncate(24 * time.Hour)
		args = append(args, day)
		query += ` AND departure_time >= $` + strconv.Itoa(len(args))
		args = append(args, day.Add(24*time.Hour))
		query += ` AND departure_time < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rides := make([]domain.Ride, 0)
	for rows.Next() {
		var ride domain.Ride
		if err := scanRide(rows, &ride); err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// ReserveSeats is the only sanctioned write to seats_left. The check and the
// decrement happen in one statement, so concurrent reservations against the
// same ride are serialized by the row itself and the counter can never go
// negative.
func (r *PGRideRepository) ReserveSeats(ctx context.Context, rideID int64, seats int) (int, error) {
	var left int
	err := r.db.QueryRow(ctx, `UPDATE rides SET seats_left = seats_left - $2, updated_at = now() WHERE id=$1 AND seats_left >= $2 RETURNING seats_left`, rideID, seats).Scan(&left)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// No row matched: either the ride does not exist or it has fewer
	// seats left than requested.
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id=$1)`, rideID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrRideNotFound
	}
	return 0, domain.ErrInsufficientSeats
}

// SeatsBookedConfirmed sums the seats of confirmed bookings for a ride. It is
// an audit view; the stored seats_left counter stays authoritative.
func (r *PGRideRepository) SeatsBookedConfirmed(ctx context.Context, rideID int64) (int, error) {
	var booked int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE ride_id=$1 AND status=$2`, rideID, domain.BookingStatusConfirmed).Scan(&booked)
	return booked, err
}

var _ RideRepository = (*PGRideRepository)(nil)
