package events

import (
	"context"

	"yatranepal/pkg/kafka"
	"yatranepal/pkg/logger"
	"yatranepal/pkg/model"
)

// Event types emitted on the reservation lifecycle topic.
const (
	EventReservationCreated         = "reservation.created"
	EventReservationConfirmed       = "reservation.confirmed"
	EventReservationCancelRequested = "reservation.cancel_requested"
	EventReservationCancelled       = "reservation.cancelled"
	EventPaymentUpdated             = "reservation.payment_updated"
)

const sourceService = "reservations-service"

// Publisher emits reservation lifecycle events. Implementations must be
// safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType string, reservation *model.Reservation) error
	Close() error
}

// KafkaPublisher publishes lifecycle events keyed by reservation ID, so all
// events for one reservation land on the same partition in order.
type KafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, reservation *model.Reservation) error {
	msg := kafka.NewMessage().
		WithKey(reservation.ID).
		WithValue(reservation).
		WithEventType(eventType).
		WithSource(sourceService).
		WithSchemaVersion("1").
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
