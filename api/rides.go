package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/carpool/internal/domain"
)

type RideHandler struct {
	rides    rides.RideUseCase
	bookings booking.BookingUseCase
}

type createRideRequest struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Seats         int        `json:"seats"`
	PriceCents    int64      `json:"price_cents"`
	Description   string     `json:"description"`
}

type bookRideRequest struct {
	Seats   int    `json:"seats"`
	Message string `json:"message"`
}

type rideResponse struct {
	ID            int64  `json:"id"`
	DriverID      int64  `json:"driver_id"`
	VehicleID     int64  `json:"vehicle_id"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	SeatCapacity  int    `json:"seat_capacity"`
	SeatsLeft     int    `json:"seats_left"`
	PriceCents    int64  `json:"price_cents"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	IsActive      bool   `json:"is_active"`
	CanBeBooked   bool   `json:"can_be_booked"`
}

func toRideResponse(r *domain.Ride) rideResponse {
	now := time.Now()
	return rideResponse{
		ID:            r.ID,
		DriverID:      r.DriverID,
		VehicleID:     r.VehicleID,
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureTime: r.DepartureTime.Format(time.RFC3339),
		ArrivalTime:   r.ArrivalTime.Format(time.RFC3339),
		SeatCapacity:  r.SeatCapacity,
		SeatsLeft:     r.SeatsLeft,
		PriceCents:    r.PriceCents,
		Description:   r.Description,
		Status:        string(r.Status),
		IsActive:      r.IsActive(now),
		CanBeBooked:   r.CanBeBooked(now),
	}
}

func NewRideHandler(rideSvc rides.RideUseCase, bookingSvc booking.BookingUseCase) *RideHandler {
	return &RideHandler{rides: rideSvc, bookings: bookingSvc}
}

func (h *RideHandler) Register(public, authed *gin.RouterGroup) {
	public.GET("/", h.list)
	public.GET("/:id", h.get)

	authed.POST("/", h.create)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id/start", h.start)
	authed.PATCH("/:id/cancel", h.cancel)
	authed.POST("/:id/book", h.book)
	authed.GET("/:id/bookings", h.listBookings)
}

func (h *RideHandler) list(c *gin.Context) {
	filter := repository.RideSearchFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	if d := c.Query("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		filter.Date = &day
	}

	found, err := h.rides.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]rideResponse, 0, len(found))
	for i := range found {
		out = append(out, toRideResponse(&found[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RideHandler) get(c *gin.Context) {
	id, err := rideID(c)
	if err != nil {
		return
	}
	ride, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride))
}

func (h *RideHandler) create(c *gin.Context) {
	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ride, err := h.rides.Create(c.Request.Context(), rides.CreateRideInput{
		DriverID:      currentUserID(c),
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Seats:         req.Seats,
		PriceCents:    req.PriceCents,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRideResponse(ride))
}

func (h *RideHandler) update(c *gin.Context) {
	id, err := rideID(c)
	if err != nil {
		return
	}

	var req rides.UpdateRideInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ride, err := h.rides.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride))
}

func (h *RideHandler) start(c *gin.Context) {
	id, err := rideID(c)
	if err != nil {
		return
	}
	ride, err := h.rides.Start(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride))
}

func (h *RideHandler) cancel(c *gin.Context) {
	id, err := rideID(c)
	if err != nil {
		return
	}
	ride, err := h.rides.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride))
}

func (h *RideHandler) book(c *gin.Context) {
	id, err := rideID(c)
	if err != nil {
		return
	}

	req := bookRideRequest{Seats: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.bookings.Book(c.Request.Context(), booking.BookRideInput{
		RideID:      id,
		PassengerID: currentUserID(c),
		Seats:       req.Seats,
		Message:     req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":    toBookingResponse(result.Booking),
		"seats_left": result.SeatsLeft,
	})
}

func (h *RideHandler) listBookings(c *gin.Context) {
	id, err := rideID(c)
	if err != nil {
		return
	}
	found, err := h.bookings.ListForRide(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(found))
	for i := range found {
		out = append(out, toBookingResponse(&found[i]))
	}
	c.JSON(http.StatusOK, out)
}

func rideID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ride id"})
		return 0, err
	}
	return id, nil
}
