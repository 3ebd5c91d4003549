package domain

import "time"

type RideStatus string

const (
	RideStatusActive    RideStatus = "active"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

const (
	MinSeats      = 1
	MaxSeats      = 8
	MaxPriceCents = 999999

	// A ride may be started from 30 minutes before its scheduled
	// departure up to 2 hours after it.
	StartWindowBefore = 30 * time.Minute
	StartWindowAfter  = 2 * time.Hour

	DefaultTripDuration = 2 * time.Hour
)

type Ride struct {
	ID            int64
	DriverID      int64
	VehicleID     int64
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	SeatCapacity  int
	SeatsLeft     int
	PriceCents    int64
	Description   string
	Status        RideStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *Ride) IsActive(now time.Time) bool {
	return r.Status == RideStatusActive && r.DepartureTime.After(now)
}

func (r *Ride) CanBeBooked(now time.Time) bool {
	return r.IsActive(now) && r.SeatsLeft > 0
}

func (r *Ride) StartWindowContains(now time.Time) bool {
	diff := now.Sub(r.DepartureTime)
	return diff >= -StartWindowBefore && diff <= StartWindowAfter
}

// DefaultArrival is used when a ride is created without an arrival time.
func DefaultArrival(departure time.Time) time.Time {
	return departure.Add(DefaultTripDuration)
}

func ValidSeatCount(n int) bool {
	return n >= MinSeats && n <= MaxSeats
}

func ValidPriceCents(p int64) bool {
	return p >= 0 && p <= MaxPriceCents
}
