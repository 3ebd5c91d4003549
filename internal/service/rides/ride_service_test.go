package rides

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRideRepository struct {
	mock.Mock
}

func (m *MockRideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, id int64, status domain.RideStatus) (*domain.Ride, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideRepository) Search(ctx context.Context, filter repository.RideSearchFilter) ([]domain.Ride, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ReserveSeats(ctx context.Context, rideID int64, seats int) (int, error) {
	args := m.Called(ctx, rideID, seats)
	return args.Int(0), args.Error(1)
}

func (m *MockRideRepository) SeatsBookedConfirmed(ctx context.Context, rideID int64) (int, error) {
	args := m.Called(ctx, rideID)
	return args.Int(0), args.Error(1)
}

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) HasRegisteredVehicle(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVehicleRepository) LatestVehicleID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRideCache struct {
	mock.Mock
}

func (m *MockRideCache) GetRides(ctx context.Context) ([]domain.Ride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideCache) SetRides(ctx context.Context, rides []domain.Ride) error {
	args := m.Called(ctx, rides)
	return args.Error(0)
}

func (m *MockRideCache) InvalidateRides(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func validCreateInput(driverID int64) CreateRideInput {
	return CreateRideInput{
		DriverID:      driverID,
		Origin:        "Paris",
		Destination:   "Lyon",
		DepartureTime: time.Now().Add(48 * time.Hour),
		Seats:         3,
		PriceCents:    2500,
	}
}

func storedRide(id int64, status domain.RideStatus, departure time.Time) *domain.Ride {
	return &domain.Ride{
		ID:            id,
		DriverID:      10,
		VehicleID:     1,
		Origin:        "Paris",
		Destination:   "Lyon",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(2 * time.Hour),
		SeatCapacity:  3,
		SeatsLeft:     3,
		PriceCents:    2500,
		Status:        status,
	}
}

func TestRideService_Create_Success(t *testing.T) {
	mockRepo := &MockRideRepository{}
	mockVehicles := &MockVehicleRepository{}
	mockCache := &MockRideCache{}
	mockProducer := &MockProducer{}

	service := NewRideService(mockRepo, mockVehicles, mockCache, mockProducer, "ride-events")

	ctx := context.Background()
	input := validCreateInput(10)

	mockVehicles.On("LatestVehicleID", ctx, int64(10)).Return(int64(5), nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Ride")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Ride).ID = 1
		}).
		Return(nil).Once()
	mockCache.On("InvalidateRides", ctx).Return(nil).Once()
	mockProducer.On("Publish", ctx, "ride-events", "ride-1", mock.Anything).Return(nil).Once()

	ride, err := service.Create(ctx, input)

	assert.NoError(t, err)
	assert.Equal(t, domain.RideStatusActive, ride.Status)
	assert.Equal(t, int64(5), ride.VehicleID)
	assert.Equal(t, 3, ride.SeatCapacity)
	assert.Equal(t, 3, ride.SeatsLeft)
	assert.Equal(t, input.DepartureTime.Add(domain.DefaultTripDuration), ride.ArrivalTime)

	mockRepo.AssertExpectations(t)
	mockVehicles.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestRideService_Create_NoVehicle(t *testing.T) {
	mockVehicles := &MockVehicleRepository{}
	service := NewRideService(&MockRideRepository{}, mockVehicles, nil, nil, "")

	ctx := context.Background()
	mockVehicles.On("LatestVehicleID", ctx, int64(10)).Return(int64(0), domain.ErrNoVehicleRegistered).Once()

	_, err := service.Create(ctx, validCreateInput(10))
	assert.ErrorIs(t, err, domain.ErrNoVehicleRegistered)
}

func TestRideService_Create_Validation(t *testing.T) {
	service := NewRideService(&MockRideRepository{}, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()

	bad := validCreateInput(10)
	bad.Seats = 0
	_, err := service.Create(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidSeatCount)

	bad = validCreateInput(10)
	bad.Seats = 9
	_, err = service.Create(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidSeatCount)

	bad = validCreateInput(10)
	bad.Origin = ""
	_, err = service.Create(ctx, bad)
	assert.Error(t, err)

	bad = validCreateInput(10)
	bad.DepartureTime = time.Now().Add(-time.Hour)
	_, err = service.Create(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrRideAlreadyDeparted)
}

func TestRideService_Start_InsideWindow(t *testing.T) {
	mockRepo := &MockRideRepository{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusActive, time.Now().Add(10*time.Minute))
	completed := *ride
	completed.Status = domain.RideStatusCompleted

	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()
	mockRepo.On("UpdateStatus", ctx, int64(1), domain.RideStatusCompleted).Return(&completed, nil).Once()

	updated, err := service.Start(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, domain.RideStatusCompleted, updated.Status)
	mockRepo.AssertExpectations(t)
}

func TestRideService_Start_TooEarly(t *testing.T) {
	mockRepo := &MockRideRepository{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusActive, time.Now().Add(45*time.Minute))
	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()

	_, err := service.Start(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRideNotStartable)
}

func TestRideService_Start_TooLate(t *testing.T) {
	mockRepo := &MockRideRepository{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusActive, time.Now().Add(-3*time.Hour))
	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()

	_, err := service.Start(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRideNotStartable)
}

func TestRideService_Start_NotActive(t *testing.T) {
	mockRepo := &MockRideRepository{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusCancelled, time.Now().Add(10*time.Minute))
	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()

	_, err := service.Start(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRideNotStartable)
}

func TestRideService_Cancel_Success(t *testing.T) {
	mockRepo := &MockRideRepository{}
	mockProducer := &MockProducer{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, mockProducer, "ride-events")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusActive, time.Now().Add(24*time.Hour))
	cancelled := *ride
	cancelled.Status = domain.RideStatusCancelled

	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()
	mockRepo.On("UpdateStatus", ctx, int64(1), domain.RideStatusCancelled).Return(&cancelled, nil).Once()
	mockProducer.On("Publish", ctx, "ride-events", "ride-1", mock.Anything).Return(nil).Once()

	updated, err := service.Cancel(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, domain.RideStatusCancelled, updated.Status)
	mockProducer.AssertExpectations(t)
}

func TestRideService_Cancel_NotActive(t *testing.T) {
	mockRepo := &MockRideRepository{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusCompleted, time.Now().Add(-time.Hour))
	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()

	_, err := service.Cancel(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRideNotCancellable)
}

func TestRideService_Update_NotActive(t *testing.T) {
	mockRepo := &MockRideRepository{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusCancelled, time.Now().Add(24*time.Hour))
	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()

	price := int64(3000)
	_, err := service.Update(ctx, 1, UpdateRideInput{PriceCents: &price})
	assert.ErrorIs(t, err, domain.ErrRideNotEditable)
}

func TestRideService_Update_PatchesFields(t *testing.T) {
	mockRepo := &MockRideRepository{}
	mockCache := &MockRideCache{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, mockCache, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusActive, time.Now().Add(24*time.Hour))
	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Ride")).Return(nil).Once()
	mockCache.On("InvalidateRides", ctx).Return(nil).Once()

	price := int64(3000)
	description := "no smoking"
	updated, err := service.Update(ctx, 1, UpdateRideInput{PriceCents: &price, Description: &description})

	assert.NoError(t, err)
	assert.Equal(t, int64(3000), updated.PriceCents)
	assert.Equal(t, "no smoking", updated.Description)
	assert.Equal(t, "Paris", updated.Origin)
	mockCache.AssertExpectations(t)
}

func TestRideService_Search_CacheHit(t *testing.T) {
	mockRepo := &MockRideRepository{}
	mockCache := &MockRideCache{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, mockCache, nil, "")

	ctx := context.Background()
	cached := []domain.Ride{*storedRide(1, domain.RideStatusActive, time.Now().Add(24*time.Hour))}
	mockCache.On("GetRides", ctx).Return(cached, nil).Once()

	rides, err := service.Search(ctx, repository.RideSearchFilter{})
	assert.NoError(t, err)
	assert.Len(t, rides, 1)
	mockRepo.AssertNotCalled(t, "Search")
}

func TestRideService_Search_CacheMissFillsCache(t *testing.T) {
	mockRepo := &MockRideRepository{}
	mockCache := &MockRideCache{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, mockCache, nil, "")

	ctx := context.Background()
	stored := []domain.Ride{*storedRide(1, domain.RideStatusActive, time.Now().Add(24*time.Hour))}

	mockCache.On("GetRides", ctx).Return(nil, nil).Once()
	mockRepo.On("Search", ctx, repository.RideSearchFilter{}).Return(stored, nil).Once()
	mockCache.On("SetRides", ctx, stored).Return(nil).Once()

	rides, err := service.Search(ctx, repository.RideSearchFilter{})
	assert.NoError(t, err)
	assert.Len(t, rides, 1)
	mockCache.AssertExpectations(t)
}

func TestRideService_Search_FilteredSkipsCache(t *testing.T) {
	mockRepo := &MockRideRepository{}
	mockCache := &MockRideCache{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, mockCache, nil, "")

	ctx := context.Background()
	filter := repository.RideSearchFilter{Origin: "Paris"}
	mockRepo.On("Search", ctx, filter).Return([]domain.Ride{}, nil).Once()

	_, err := service.Search(ctx, filter)
	assert.NoError(t, err)
	mockCache.AssertNotCalled(t, "GetRides")
	mockCache.AssertNotCalled(t, "SetRides")
}

func TestRideService_RemainingConfirmedSeats(t *testing.T) {
	mockRepo := &MockRideRepository{}
	service := NewRideService(mockRepo, &MockVehicleRepository{}, nil, nil, "")

	ctx := context.Background()
	ride := storedRide(1, domain.RideStatusActive, time.Now().Add(24*time.Hour))
	ride.SeatCapacity = 4
	mockRepo.On("GetByID", ctx, int64(1)).Return(ride, nil).Once()
	mockRepo.On("SeatsBookedConfirmed", ctx, int64(1)).Return(3, nil).Once()

	remaining, err := service.RemainingConfirmedSeats(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, remaining)
}
