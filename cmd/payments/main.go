package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	catalogrepo "yatranepal/internal/catalog/repository"
	"yatranepal/internal/payments"
	"yatranepal/internal/reservations/events"
	"yatranepal/internal/reservations/repository"
	"yatranepal/internal/reservations/service"
	"yatranepal/internal/reservations/validator"
	"yatranepal/pkg/config"
	"yatranepal/pkg/kafka"
	kafka_config "yatranepal/pkg/kafka/config"
	kafka_middleware "yatranepal/pkg/kafka/middleware"
)

const ServiceName = "payments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Payments consumer")

	kafkaCfg := kafka_config.Load()

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ReservationEventsTopic, cfg.ReservationEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	publisher := events.NewKafkaPublisher(producer, cfg.Log)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	reservationService := initServices(cfg, publisher)
	eventHandler := payments.NewEventHandler(reservationService, cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.PaymentEventsTopic,
		cfg.PaymentConsumerGroup,
		cfg.PaymentEventsDLQTopic,
		eventHandler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	}()

	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		cfg.Log.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	cfg.Log.Info("Payments consumer started",
		"topic", cfg.PaymentEventsTopic,
		"group", cfg.PaymentConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Payments consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Payments consumer stopped")
}

func initServices(cfg *config.Config, publisher *events.KafkaPublisher) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log, cfg.MaxRoomsPerReservation, cfg.MaxDatesPerReservation)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	slotRepo := repository.NewSlotRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	catalogRepo := catalogrepo.NewMongoCatalogRepository(cfg)

	return service.NewReservationService(
		reservationRepo,
		slotRepo,
		lockRepo,
		catalogRepo,
		reservationValidator,
		publisher,
		cfg,
	)
}
