package main

import (
	catalogrepo "yatranepal/internal/catalog/repository"
	"yatranepal/internal/reservations/events"
	"yatranepal/internal/reservations/handler"
	"yatranepal/internal/reservations/repository"
	"yatranepal/internal/reservations/service"
	"yatranepal/internal/reservations/validator"
	"yatranepal/pkg/app"
	"yatranepal/pkg/config"
	"yatranepal/pkg/kafka"
	kafka_config "yatranepal/pkg/kafka/config"
	kafka_middleware "yatranepal/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	reservationService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) *events.KafkaPublisher {
	kafkaCfg := kafka_config.Load()

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ReservationEventsTopic, cfg.ReservationEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	cfg.Log.Info("Event publisher initialized", "topic", cfg.ReservationEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}

func initServices(cfg *config.Config, publisher *events.KafkaPublisher) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log, cfg.MaxRoomsPerReservation, cfg.MaxDatesPerReservation)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	slotRepo := repository.NewSlotRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	catalogRepo := catalogrepo.NewMongoCatalogRepository(cfg)

	reservationService := service.NewReservationService(
		reservationRepo,
		slotRepo,
		lockRepo,
		catalogRepo,
		reservationValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}
