package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookRideInput) (*BookingResult, error)
	Cancel(ctx context.Context, reference string) (*domain.Booking, error)
	Get(ctx context.Context, reference string) (*domain.Booking, error)
	ListForPassenger(ctx context.Context, passengerID int64) ([]domain.Booking, error)
	ListForDriver(ctx context.Context, driverID int64) ([]domain.Booking, error)
	ListForRide(ctx context.Context, rideID int64) ([]domain.Booking, error)
	ReconcileSeats(ctx context.Context, rideID int64) (*SeatDrift, error)
}

type Cache interface {
	AcquireBookingLock(ctx context.Context, rideID, passengerID int64, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, rideID, passengerID int64) error
	GetRides(ctx context.Context) ([]domain.Ride, error)
	SetRides(ctx context.Context, rides []domain.Ride) error
	InvalidateRides(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings repository.BookingRepository
	rides    repository.RideRepository
	cache    Cache
	producer Producer
	topic    string
	lockTTL  time.Duration
}

type BookRideInput struct {
	RideID      int64  `json:"ride_id"`
	PassengerID int64  `json:"passenger_id"`
	Seats       int    `json:"seats"`
	Message     string `json:"message"`
}

type BookingResult struct {
	Booking   *domain.Booking
	SeatsLeft int
}

// SeatDrift compares the stored seat counter against the remaining seats
// implied by confirmed bookings. The counter is authoritative; the view sum
// exists for auditing only.
type SeatDrift struct {
	RideID        int64
	SeatsLeft     int
	ViewRemaining int
}

func (d SeatDrift) InSync() bool {
	return d.SeatsLeft == d.ViewRemaining
}

type BookingServiceOption func(*BookingService)

func WithBookingLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.lockTTL = ttl
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	rides repository.RideRepository,
	cache Cache,
	producer Producer,
	topic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		rides:    rides,
		cache:    cache,
		producer: producer,
		topic:    topic,
		lockTTL:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves seats on a ride and records the booking. Validation happens
// against a snapshot of the ride; the reservation itself is a conditional
// decrement inside the booking insert's transaction, so concurrent bookings
// can never take the ride below zero seats.
func (s *BookingService) Book(ctx context.Context, input BookRideInput) (*BookingResult, error) {
	if !domain.ValidSeatCount(input.Seats) {
		return nil, domain.ErrInvalidSeatCount
	}

	ride, err := s.rides.GetByID(ctx, input.RideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID == input.PassengerID {
		return nil, domain.ErrSelfBookingForbidden
	}
	if ride.Status != domain.RideStatusActive {
		return nil, domain.ErrRideNotBookable
	}
	if !ride.DepartureTime.After(time.Now()) {
		return nil, domain.ErrRideAlreadyDeparted
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireBookingLock(ctx, input.RideID, input.PassengerID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrDuplicateBookingAttempt
		}
		locked = true
	}

	booking := &domain.Booking{
		RideID:          input.RideID,
		PassengerID:     input.PassengerID,
		Seats:           input.Seats,
		Message:         input.Message,
		TotalPriceCents: domain.TotalPrice(ride.PriceCents, input.Seats),
		Reference:       uuid.NewString(),
	}

	left, err := s.bookings.CreateConfirmed(ctx, booking)
	if err != nil {
		if locked {
			_ = s.cache.ReleaseBookingLock(ctx, input.RideID, input.PassengerID)
		}
		return nil, err
	}

	if locked {
		_ = s.cache.ReleaseBookingLock(ctx, input.RideID, input.PassengerID)
	}
	if s.cache != nil {
		_ = s.cache.InvalidateRides(ctx)
	}

	if err := s.publish(ctx, "booking_created", booking, left); err != nil {
		fmt.Printf("WARNING: failed to publish booking_created event for booking %s: %v\n", booking.Reference, err)
	}
	return &BookingResult{Booking: booking, SeatsLeft: left}, nil
}

// Cancel flips the booking to cancelled. Seats already reserved stay
// reserved; the reconciliation sweep reports the resulting drift.
func (s *BookingService) Cancel(ctx context.Context, reference string) (*domain.Booking, error) {
	current, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	ride, err := s.rides.GetByID(ctx, current.RideID)
	if err != nil {
		return nil, err
	}
	if !current.CanBeCancelled(ride.DepartureTime, time.Now()) {
		return nil, domain.ErrBookingNotCancellable
	}

	updated, err := s.bookings.UpdateStatus(ctx, reference, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "booking_cancelled", updated, ride.SeatsLeft); err != nil {
		fmt.Printf("WARNING: failed to publish booking_cancelled event for booking %s: %v\n", updated.Reference, err)
	}
	return updated, nil
}

func (s *BookingService) Get(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, reference)
}

func (s *BookingService) ListForPassenger(ctx context.Context, passengerID int64) ([]domain.Booking, error) {
	return s.bookings.ListByPassenger(ctx, passengerID)
}

func (s *BookingService) ListForDriver(ctx context.Context, driverID int64) ([]domain.Booking, error) {
	return s.bookings.ListByDriver(ctx, driverID)
}

func (s *BookingService) ListForRide(ctx context.Context, rideID int64) ([]domain.Booking, error) {
	return s.bookings.ListConfirmedForRide(ctx, rideID)
}

func (s *BookingService) ReconcileSeats(ctx context.Context, rideID int64) (*SeatDrift, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	booked, err := s.rides.SeatsBookedConfirmed(ctx, rideID)
	if err != nil {
		return nil, err
	}
	return &SeatDrift{
		RideID:        rideID,
		SeatsLeft:     ride.SeatsLeft,
		ViewRemaining: ride.SeatCapacity - booked,
	}, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, seatsLeft int) error {
	if s.producer == nil || s.topic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		Reference:       booking.Reference,
		RideID:          booking.RideID,
		PassengerID:     booking.PassengerID,
		Seats:           booking.Seats,
		TotalPriceCents: booking.TotalPriceCents,
		Status:          string(booking.Status),
		SeatsLeft:       seatsLeft,
		OccurredAt:      time.Now(),
	}
	return s.producer.Publish(ctx, s.topic, booking.Reference, event)
}

var _ BookingUseCase = (*BookingService)(nil)
