package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type Booking struct {
	ID          int64
	RideID      int64
	PassengerID int64
	Seats       int
	Status      BookingStatus
	Message     string
	// TotalPriceCents is fixed when the booking is created; later changes
	// to the ride price do not touch it.
	TotalPriceCents int64
	Reference       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func TotalPrice(priceCents int64, seats int) int64 {
	return priceCents * int64(seats)
}

func (b *Booking) CanBeCancelled(departure, now time.Time) bool {
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return false
	}
	return departure.After(now)
}
