package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/bootstrap"
	"github.com/Domenick1991/carpool/internal/cache"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrationsURL != "" {
		if err := repository.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsURL); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.RidesCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	rideRepo := repository.NewRideRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)

	rideService := rides.NewRideService(rideRepo, vehicleRepo, redisCache, producer, cfg.Kafka.RideEventsTopic)
	bookingService := booking.NewBookingService(
		bookingRepo,
		rideRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithBookingLockTTL(time.Duration(cfg.Booking.BookingLockTTLSeconds)*time.Second),
	)

	if err := bootstrap.Run(ctx, cfg, rideService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
