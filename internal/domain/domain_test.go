package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRide_IsActive(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		status    RideStatus
		departure time.Time
		want      bool
	}{
		{"active future ride", RideStatusActive, now.Add(time.Hour), true},
		{"active departed ride", RideStatusActive, now.Add(-time.Hour), false},
		{"completed ride", RideStatusCompleted, now.Add(time.Hour), false},
		{"cancelled ride", RideStatusCancelled, now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := &Ride{Status: tt.status, DepartureTime: tt.departure}
			assert.Equal(t, tt.want, ride.IsActive(now))
		})
	}
}

func TestRide_CanBeBooked(t *testing.T) {
	now := time.Now()

	ride := &Ride{Status: RideStatusActive, DepartureTime: now.Add(time.Hour), SeatsLeft: 1}
	assert.True(t, ride.CanBeBooked(now))

	ride.SeatsLeft = 0
	assert.False(t, ride.CanBeBooked(now))

	ride.SeatsLeft = 1
	ride.Status = RideStatusCancelled
	assert.False(t, ride.CanBeBooked(now))
}

func TestRide_StartWindowContains(t *testing.T) {
	departure := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	ride := &Ride{DepartureTime: departure}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"45 minutes early", departure.Add(-45 * time.Minute), false},
		{"30 minutes early", departure.Add(-30 * time.Minute), true},
		{"at departure", departure, true},
		{"2 hours late", departure.Add(2 * time.Hour), true},
		{"3 hours late", departure.Add(3 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ride.StartWindowContains(tt.now))
		})
	}
}

func TestValidSeatCount(t *testing.T) {
	assert.False(t, ValidSeatCount(0))
	assert.True(t, ValidSeatCount(1))
	assert.True(t, ValidSeatCount(8))
	assert.False(t, ValidSeatCount(9))
	assert.False(t, ValidSeatCount(-1))
}

func TestValidPriceCents(t *testing.T) {
	assert.True(t, ValidPriceCents(0))
	assert.True(t, ValidPriceCents(999999))
	assert.False(t, ValidPriceCents(1000000))
	assert.False(t, ValidPriceCents(-1))
}

func TestDefaultArrival(t *testing.T) {
	departure := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, departure.Add(2*time.Hour), DefaultArrival(departure))
}

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, int64(5100), TotalPrice(2550, 2))
	assert.Equal(t, int64(0), TotalPrice(0, 3))
}

func TestBooking_CanBeCancelled(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		status    BookingStatus
		departure time.Time
		want      bool
	}{
		{"pending before departure", BookingStatusPending, future, true},
		{"confirmed before departure", BookingStatusConfirmed, future, true},
		{"confirmed after departure", BookingStatusConfirmed, past, false},
		{"cancelled", BookingStatusCancelled, future, false},
		{"completed", BookingStatusCompleted, future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.status}
			assert.Equal(t, tt.want, b.CanBeCancelled(tt.departure, now))
		})
	}
}
