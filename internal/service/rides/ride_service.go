package rides

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/repository"
)

type RideUseCase interface {
	Create(ctx context.Context, input CreateRideInput) (*domain.Ride, error)
	Update(ctx context.Context, rideID int64, input UpdateRideInput) (*domain.Ride, error)
	Start(ctx context.Context, rideID int64) (*domain.Ride, error)
	Cancel(ctx context.Context, rideID int64) (*domain.Ride, error)
	Get(ctx context.Context, rideID int64) (*domain.Ride, error)
	Search(ctx context.Context, filter repository.RideSearchFilter) ([]domain.Ride, error)
	RemainingConfirmedSeats(ctx context.Context, rideID int64) (int, error)
}

type RideCache interface {
	GetRides(ctx context.Context) ([]domain.Ride, error)
	SetRides(ctx context.Context, rides []domain.Ride) error
	InvalidateRides(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RideService struct {
	rides    repository.RideRepository
	vehicles repository.VehicleRepository
	cache    RideCache
	producer Producer
	topic    string
}

type CreateRideInput struct {
	DriverID      int64      `json:"driver_id"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Seats         int        `json:"seats"`
	PriceCents    int64      `json:"price_cents"`
	Description   string     `json:"description"`
}

type UpdateRideInput struct {
	Origin        *string    `json:"origin"`
	Destination   *string    `json:"destination"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	PriceCents    *int64     `json:"price_cents"`
	Description   *string    `json:"description"`
}

func NewRideService(
	rides repository.RideRepository,
	vehicles repository.VehicleRepository,
	cache RideCache,
	producer Producer,
	topic string,
) *RideService {
	return &RideService{rides: rides, vehicles: vehicles, cache: cache, producer: producer, topic: topic}
}

func (s *RideService) Create(ctx context.Context, input CreateRideInput) (*domain.Ride, error) {
	if !domain.ValidSeatCount(input.Seats) {
		return nil, domain.ErrInvalidSeatCount
	}
	if !domain.ValidPriceCents(input.PriceCents) {
		return nil, fmt.Errorf("price out of range: %d", input.PriceCents)
	}
	if input.Origin == "" || input.Destination == "" {
		return nil, fmt.Errorf("origin and destination are required")
	}
	if !input.DepartureTime.After(time.Now()) {
		return nil, domain.ErrRideAlreadyDeparted
	}

	// Publishing a ride requires a registered vehicle; the latest one is
	// bound to the ride.
	vehicleID, err := s.vehicles.LatestVehicleID(ctx, input.DriverID)
	if err != nil {
		return nil, err
	}

	arrival := domain.DefaultArrival(input.DepartureTime)
	if input.ArrivalTime != nil {
		arrival = *input.ArrivalTime
	}

	ride := &domain.Ride{
		DriverID:      input.DriverID,
		VehicleID:     vehicleID,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureTime: input.DepartureTime,
		ArrivalTime:   arrival,
		SeatCapacity:  input.Seats,
		SeatsLeft:     input.Seats,
		PriceCents:    input.PriceCents,
		Description:   input.Description,
		Status:        domain.RideStatusActive,
	}
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, "ride_created", ride)
	return ride, nil
}

func (s *RideService) Update(ctx context.Context, rideID int64, input UpdateRideInput) (*domain.Ride, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusActive {
		return nil, domain.ErrRideNotEditable
	}

	if input.Origin != nil {
		ride.Origin = *input.Origin
	}
	if input.Destination != nil {
		ride.Destination = *input.Destination
	}
	if input.DepartureTime != nil {
		ride.DepartureTime = *input.DepartureTime
	}
	if input.ArrivalTime != nil {
		ride.ArrivalTime = *input.ArrivalTime
	}
	if input.PriceCents != nil {
		if !domain.ValidPriceCents(*input.PriceCents) {
			return nil, fmt.Errorf("price out of range: %d", *input.PriceCents)
		}
		ride.PriceCents = *input.PriceCents
	}
	if input.Description != nil {
		ride.Description = *input.Description
	}

	if err := s.rides.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return ride, nil
}

// Start marks the ride completed. It is only allowed while the ride is
// active and the current time falls inside the departure window.
func (s *RideService) Start(ctx context.Context, rideID int64) (*domain.Ride, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusActive {
		return nil, domain.ErrRideNotStartable
	}
	if !ride.StartWindowContains(time.Now()) {
		return nil, domain.ErrRideNotStartable
	}

	updated, err := s.rides.UpdateStatus(ctx, rideID, domain.RideStatusCompleted)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, "ride_completed", updated)
	return updated, nil
}

func (s *RideService) Cancel(ctx context.Context, rideID int64) (*domain.Ride, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusActive {
		return nil, domain.ErrRideNotCancellable
	}

	updated, err := s.rides.UpdateStatus(ctx, rideID, domain.RideStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, "ride_cancelled", updated)
	return updated, nil
}

func (s *RideService) Get(ctx context.Context, rideID int64) (*domain.Ride, error) {
	return s.rides.GetByID(ctx, rideID)
}

// Search serves the unfiltered listing from cache when possible; filtered
// queries always hit the store.
func (s *RideService) Search(ctx context.Context, filter repository.RideSearchFilter) ([]domain.Ride, error) {
	unfiltered := filter.Origin == "" && filter.Destination == "" && filter.Date == nil
	if unfiltered && s.cache != nil {
		if cached, err := s.cache.GetRides(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rides, err := s.rides.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if unfiltered && s.cache != nil {
		_ = s.cache.SetRides(ctx, rides)
	}
	return rides, nil
}

// RemainingConfirmedSeats computes capacity minus confirmed bookings. This is
// the audit view over bookings, not the stored counter.
func (s *RideService) RemainingConfirmedSeats(ctx context.Context, rideID int64) (int, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return 0, err
	}
	booked, err := s.rides.SeatsBookedConfirmed(ctx, rideID)
	if err != nil {
		return 0, err
	}
	return ride.SeatCapacity - booked, nil
}

func (s *RideService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateRides(ctx)
	}
}

func (s *RideService) publish(ctx context.Context, eventType string, ride *domain.Ride) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.RideEvent{
		Type:       eventType,
		RideID:     ride.ID,
		DriverID:   ride.DriverID,
		Status:     string(ride.Status),
		OccurredAt: time.Now(),
	}
	if err := s.producer.Publish(ctx, s.topic, fmt.Sprintf("ride-%d", ride.ID), event); err != nil {
		fmt.Printf("WARNING: failed to publish %s event for ride %d: %v\n", eventType, ride.ID, err)
	}
}

var _ RideUseCase = (*RideService)(nil)
