package payments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"yatranepal/internal/reservations/service"
	apperrors "yatranepal/pkg/errors"
	"yatranepal/pkg/kafka"
	"yatranepal/pkg/logger"
	"yatranepal/pkg/model"
)

// ────────────────────────────────────────────────
// Mock reservation service
// ────────────────────────────────────────────────

type mockReservationService struct {
	getByTransactionIDFunc  func(ctx context.Context, transactionID string) (*model.Reservation, error)
	getByPidxFunc           func(ctx context.Context, pidx string) (*model.Reservation, error)
	updatePaymentStatusFunc func(ctx context.Context, id string, status model.PaymentStatus) (*model.Reservation, error)
	confirmFunc             func(ctx context.Context, id string) (*model.Reservation, error)

	confirmCalls int
	updateCalls  []model.PaymentStatus
}

var _ service.ReservationService = (*mockReservationService)(nil)

func (m *mockReservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	return nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockReservationService) GetByUser(ctx context.Context, userID string, status string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockReservationService) GetByHotel(ctx context.Context, hotelID string, status string, date *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockReservationService) GetCancellationRequests(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockReservationService) GetByTransactionID(ctx context.Context, transactionID string) (*model.Reservation, error) {
	if m.getByTransactionIDFunc != nil {
		return m.getByTransactionIDFunc(ctx, transactionID)
	}
	return nil, apperrors.NotFoundWithID("Reservation", transactionID)
}

func (m *mockReservationService) GetByPidx(ctx context.Context, pidx string) (*model.Reservation, error) {
	if m.getByPidxFunc != nil {
		return m.getByPidxFunc(ctx, pidx)
	}
	return nil, apperrors.NotFoundWithID("Reservation", pidx)
}

func (m *mockReservationService) GetByProductCode(ctx context.Context, productCode string) (*model.Reservation, error) {
	return nil, apperrors.NotFoundWithID("Reservation", productCode)
}

func (m *mockReservationService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	m.confirmCalls++
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id)
	}
	return &model.Reservation{ID: id, Status: model.StatusConfirmed}, nil
}

func (m *mockReservationService) RequestCancellation(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationService) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) (*model.Reservation, error) {
	m.updateCalls = append(m.updateCalls, status)
	if m.updatePaymentStatusFunc != nil {
		return m.updatePaymentStatusFunc(ctx, id, status)
	}
	return &model.Reservation{ID: id, PaymentStatus: status}, nil
}

func (m *mockReservationService) CheckAvailability(ctx context.Context, hotelID string, roomIDs []string, dates []time.Time) (*service.AvailabilityReport, error) {
	return nil, nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func paymentMessage(t *testing.T, event PaymentEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return kafka.Message{
		Key:     "test-key",
		Value:   payload,
		Headers: map[string]string{},
	}
}

func assertPermanent(t *testing.T, err error) {
	t.Helper()
	var kafkaErr *kafka.KafkaError
	if !errors.As(err, &kafkaErr) {
		t.Fatalf("expected *kafka.KafkaError, got %T: %v", err, err)
	}
	if !kafkaErr.IsPermanent() {
		t.Errorf("expected permanent error, got %v", kafkaErr.Type)
	}
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestHandle_SuccessConfirmsPendingReservation(t *testing.T) {
	svc := &mockReservationService{
		getByPidxFunc: func(ctx context.Context, pidx string) (*model.Reservation, error) {
			return &model.Reservation{
				ID:            "64b0c1f2a3d4e5f601234567",
				Status:        model.StatusPending,
				PaymentStatus: model.PaymentPending,
				Pidx:          pidx,
			}, nil
		},
	}
	handler := NewEventHandler(svc, testLogger())

	msg := paymentMessage(t, PaymentEvent{Provider: "khalti", Pidx: "pidx-001", Outcome: "success"})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(svc.updateCalls) != 1 || svc.updateCalls[0] != model.PaymentSuccess {
		t.Errorf("expected one SUCCESS update, got %v", svc.updateCalls)
	}
	if svc.confirmCalls != 1 {
		t.Errorf("expected confirmation for pending reservation, got %d calls", svc.confirmCalls)
	}
}

func TestHandle_SuccessLeavesNonPendingAlone(t *testing.T) {
	svc := &mockReservationService{
		getByTransactionIDFunc: func(ctx context.Context, transactionID string) (*model.Reservation, error) {
			return &model.Reservation{
				ID:            "64b0c1f2a3d4e5f601234567",
				Status:        model.StatusCancelRequested,
				TransactionID: transactionID,
			}, nil
		},
	}
	handler := NewEventHandler(svc, testLogger())

	msg := paymentMessage(t, PaymentEvent{Provider: "esewa", TransactionID: "txn-001", Outcome: "success"})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.confirmCalls != 0 {
		t.Errorf("expected no confirmation attempt, got %d calls", svc.confirmCalls)
	}
}

func TestHandle_FailureMarksPaymentFailed(t *testing.T) {
	svc := &mockReservationService{
		getByTransactionIDFunc: func(ctx context.Context, transactionID string) (*model.Reservation, error) {
			return &model.Reservation{
				ID:     "64b0c1f2a3d4e5f601234567",
				Status: model.StatusPending,
			}, nil
		},
	}
	handler := NewEventHandler(svc, testLogger())

	msg := paymentMessage(t, PaymentEvent{Provider: "esewa", TransactionID: "txn-002", Outcome: "failed"})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(svc.updateCalls) != 1 || svc.updateCalls[0] != model.PaymentFailed {
		t.Errorf("expected one FAILED update, got %v", svc.updateCalls)
	}
	if svc.confirmCalls != 0 {
		t.Errorf("expected no confirmation on failure, got %d calls", svc.confirmCalls)
	}
}

func TestHandle_UnknownReferenceIsPermanent(t *testing.T) {
	handler := NewEventHandler(&mockReservationService{}, testLogger())

	msg := paymentMessage(t, PaymentEvent{Provider: "khalti", Pidx: "never-bound", Outcome: "success"})
	assertPermanent(t, handler.Handle(context.Background(), msg))
}

func TestHandle_MissingReferenceIsPermanent(t *testing.T) {
	handler := NewEventHandler(&mockReservationService{}, testLogger())

	msg := paymentMessage(t, PaymentEvent{Provider: "esewa", Outcome: "success"})
	assertPermanent(t, handler.Handle(context.Background(), msg))
}

func TestHandle_MalformedPayloadIsPermanent(t *testing.T) {
	handler := NewEventHandler(&mockReservationService{}, testLogger())

	msg := kafka.Message{Key: "k", Value: []byte("{not json"), Headers: map[string]string{}}
	assertPermanent(t, handler.Handle(context.Background(), msg))
}

func TestHandle_UnknownOutcomeIsPermanent(t *testing.T) {
	handler := NewEventHandler(&mockReservationService{}, testLogger())

	msg := paymentMessage(t, PaymentEvent{Provider: "esewa", TransactionID: "txn-003", Outcome: "refunded"})
	assertPermanent(t, handler.Handle(context.Background(), msg))
}

func TestHandle_StorageUnavailableIsTransient(t *testing.T) {
	svc := &mockReservationService{
		getByTransactionIDFunc: func(ctx context.Context, transactionID string) (*model.Reservation, error) {
			return nil, apperrors.Unavailable("Reservation storage")
		},
	}
	handler := NewEventHandler(svc, testLogger())

	msg := paymentMessage(t, PaymentEvent{Provider: "esewa", TransactionID: "txn-004", Outcome: "success"})
	err := handler.Handle(context.Background(), msg)

	var kafkaErr *kafka.KafkaError
	if !errors.As(err, &kafkaErr) {
		t.Fatalf("expected *kafka.KafkaError, got %T: %v", err, err)
	}
	if !kafkaErr.IsTransient() {
		t.Errorf("expected transient error, got %v", kafkaErr.Type)
	}
}
