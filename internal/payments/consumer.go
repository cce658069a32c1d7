package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yatranepal/internal/reservations/service"
	apperrors "yatranepal/pkg/errors"
	"yatranepal/pkg/kafka"
	"yatranepal/pkg/logger"
	"yatranepal/pkg/model"
)

// Outcomes reported by the payment gateways.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// PaymentEvent is the gateway webhook payload relayed onto the payment
// events topic. Exactly one of the reference fields identifies the
// reservation, depending on the provider.
type PaymentEvent struct {
	Provider      string `json:"provider"`
	TransactionID string `json:"transaction_id,omitempty"`
	Pidx          string `json:"pidx,omitempty"`
	ProductCode   string `json:"product_code,omitempty"`
	Outcome       string `json:"outcome"`
}

// EventHandler consumes payment events and applies them to reservations.
// Processing is idempotent: redelivered events land on a reservation whose
// payment status already matches and become no-ops.
type EventHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewEventHandler(service service.ReservationService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log,
	}
}

// Handle implements kafka.MessageHandler.
func (h *EventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event PaymentEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("invalid payment event format", err)
	}

	outcome := strings.ToLower(strings.TrimSpace(event.Outcome))
	if outcome != OutcomeSuccess && outcome != OutcomeFailed {
		return kafka.NewPermanentError(fmt.Sprintf("unknown payment outcome: %q", event.Outcome), nil)
	}

	reservation, err := h.resolveReservation(ctx, &event)
	if err != nil {
		return err
	}

	h.log.Info("Processing payment event",
		"provider", event.Provider,
		"outcome", outcome,
		"reservation_id", reservation.ID,
		"event_id", msg.GetEventID(),
	)

	switch outcome {
	case OutcomeSuccess:
		return h.applySuccess(ctx, reservation)
	default:
		return h.applyFailure(ctx, reservation)
	}
}

// resolveReservation finds the reservation bound to the event's reference.
// An unknown reference is permanent: redelivery cannot make a reservation
// appear that never bound this reference.
func (h *EventHandler) resolveReservation(ctx context.Context, event *PaymentEvent) (*model.Reservation, error) {
	var (
		reservation *model.Reservation
		err         error
	)

	switch {
	case event.TransactionID != "":
		reservation, err = h.service.GetByTransactionID(ctx, event.TransactionID)
	case event.Pidx != "":
		reservation, err = h.service.GetByPidx(ctx, event.Pidx)
	case event.ProductCode != "":
		reservation, err = h.service.GetByProductCode(ctx, event.ProductCode)
	default:
		return nil, kafka.NewPermanentError("payment event carries no reference", nil)
	}

	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case apperrors.CodeNotFound:
				return nil, kafka.NewPermanentError("no reservation bound to payment reference", err)
			case apperrors.CodeInvalidInput:
				return nil, kafka.NewPermanentError("invalid payment reference", err)
			case apperrors.CodeUnavailable:
				return nil, kafka.NewTransientError("reservation storage unavailable", err)
			}
		}
		return nil, kafka.NewTransientError("failed to resolve reservation", err)
	}

	return reservation, nil
}

// applySuccess marks the payment settled and confirms the reservation if
// it is still waiting on payment.
func (h *EventHandler) applySuccess(ctx context.Context, reservation *model.Reservation) error {
	if _, err := h.service.UpdatePaymentStatus(ctx, reservation.ID, model.PaymentSuccess); err != nil {
		return classifyServiceError("failed to update payment status", err)
	}

	if reservation.Status != model.StatusPending {
		return nil
	}

	if _, err := h.service.Confirm(ctx, reservation.ID); err != nil {
		var appErr *apperrors.AppError
		// A concurrent transition already moved the reservation; the
		// payment update above still stands.
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeInvalidTransition {
			h.log.Warn("Skipping confirmation after payment",
				"reservation_id", reservation.ID,
				"current_status", appErr.Details["current_status"],
			)
			return nil
		}
		return classifyServiceError("failed to confirm reservation after payment", err)
	}

	return nil
}

func (h *EventHandler) applyFailure(ctx context.Context, reservation *model.Reservation) error {
	if _, err := h.service.UpdatePaymentStatus(ctx, reservation.ID, model.PaymentFailed); err != nil {
		return classifyServiceError("failed to update payment status", err)
	}
	return nil
}

func classifyServiceError(message string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.CodeNotFound, apperrors.CodeInvalidInput, apperrors.CodeValidation:
			return kafka.NewPermanentError(message, err)
		case apperrors.CodeUnavailable, apperrors.CodeTimeout:
			return kafka.NewTransientError(message, err)
		}
	}
	return kafka.NewTransientError(message, err)
}
