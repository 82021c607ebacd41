package main

import (
	bookinghandler "reservations/internal/bookings/handler"
	bookingrepo "reservations/internal/bookings/repository"
	bookingservice "reservations/internal/bookings/service"
	bookingvalidator "reservations/internal/bookings/validator"
	"reservations/internal/notifier"
	ridehandler "reservations/internal/rides/handler"
	riderepo "reservations/internal/rides/repository"
	rideservice "reservations/internal/rides/service"
	ridevalidator "reservations/internal/rides/validator"
	roomhandler "reservations/internal/rooms/handler"
	roomrepo "reservations/internal/rooms/repository"
	roomservice "reservations/internal/rooms/service"
	roomvalidator "reservations/internal/rooms/validator"
	"reservations/pkg/app"
	"reservations/pkg/config"
	"reservations/pkg/kafka"
	kafkaconfig "reservations/pkg/kafka/config"
	"reservations/pkg/lock"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Reservations service")
	serverApp := app.NewApplication(cfg)
	events := initNotifier(cfg, serverApp)
	rooms, bookings, rides := initServices(cfg, events)

	serverApp.SetApp(
		roomhandler.NewRoomHandler(rooms, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
		ridehandler.NewRideHandler(rides, cfg.Log),
	)
	serverApp.Run()
}

func initNotifier(cfg *config.Config, serverApp *app.Application) notifier.Notifier {
	if !cfg.NotifierEnabled {
		cfg.Log.Info("Event publishing disabled, status changes are logged only")
		return notifier.NewLogNotifier(cfg.Log)
	}

	kcfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log)
	producer, err := kafka.NewProducer(kcfg, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka.LoggingMiddleware(cfg.Log))
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Publishing status changes to Kafka", "topic", cfg.BookingEventsTopic)
	return notifier.NewKafkaNotifier(producer, ServiceName, cfg.Log)
}

func initServices(cfg *config.Config, events notifier.Notifier) (roomservice.RoomService, bookingservice.BookingService, rideservice.RideService) {
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)

	rooms := roomservice.NewRoomService(
		roomrepo.NewMongoRoomRepository(cfg),
		bookingRepo,
		roomvalidator.NewRoomValidator(cfg.Log),
		cfg,
	)

	bookings := bookingservice.NewBookingService(
		bookingRepo,
		rooms,
		lock.FromConfig(cfg),
		events,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	rides := rideservice.NewRideService(
		riderepo.NewMongoRideRepository(cfg),
		events,
		ridevalidator.NewRideValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName, "lock_backend", cfg.LockBackend)
	return rooms, bookings, rides
}
