package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRideNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientSeats),
		errors.Is(err, domain.ErrDuplicateBookingAttempt):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSeatCount),
		errors.Is(err, domain.ErrSelfBookingForbidden),
		errors.Is(err, domain.ErrRideNotBookable),
		errors.Is(err, domain.ErrRideAlreadyDeparted),
		errors.Is(err, domain.ErrRideNotStartable),
		errors.Is(err, domain.ErrRideNotCancellable),
		errors.Is(err, domain.ErrRideNotEditable),
		errors.Is(err, domain.ErrBookingNotCancellable),
		errors.Is(err, domain.ErrNoVehicleRegistered):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
