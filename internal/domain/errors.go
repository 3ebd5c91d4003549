package domain

import "errors"

var (
	ErrRideNotFound    = errors.New("ride not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrInvalidSeatCount     = errors.New("seat count must be between 1 and 8")
	ErrInsufficientSeats    = errors.New("not enough seats left")
	ErrSelfBookingForbidden = errors.New("drivers cannot book their own ride")
	ErrRideNotBookable      = errors.New("ride is not open for booking")
	ErrRideAlreadyDeparted  = errors.New("ride has already departed")

	ErrRideNotStartable   = errors.New("ride cannot be started")
	ErrRideNotCancellable = errors.New("ride can no longer be cancelled")
	ErrRideNotEditable    = errors.New("ride can no longer be edited")

	ErrBookingNotCancellable   = errors.New("booking can no longer be cancelled")
	ErrDuplicateBookingAttempt = errors.New("a booking for this ride is already in progress")

	ErrNoVehicleRegistered = errors.New("driver has no registered vehicle")
)
