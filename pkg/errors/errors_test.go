package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NotFound("Reservation")
	if got := err.Error(); got != "NOT_FOUND: Reservation not found" {
		t.Errorf("unexpected message: %s", got)
	}

	cause := errors.New("connection refused")
	wrapped := Internal("Storage failed", cause)
	if !strings.Contains(wrapped.Error(), "caused by: connection refused") {
		t.Errorf("expected cause in message, got %s", wrapped.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Storage failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := Conflict("Reservation already exists").WithDetails(map[string]any{"id": "abc"})
	if err.Details["id"] != "abc" {
		t.Errorf("expected detail id=abc, got %v", err.Details["id"])
	}
}

func TestConstructorCodesAndStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Reservation"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad payload", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("empty hotel ID"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing signature"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("already exists"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("storage timed out"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Reservation storage"), CodeUnavailable, http.StatusServiceUnavailable},
		{"room unavailable", RoomUnavailable("room-1", "2026-09-01", "reserved"), CodeRoomUnavailable, http.StatusConflict},
		{"invalid transition", InvalidTransition("confirm", "CANCELLED"), CodeInvalidTransition, http.StatusConflict},
		{"duplicate reference", DuplicateReference("pidx"), CodeDuplicateReference, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Reservation", "64b0c1f2a3d4e5f601234567")
	if err.Details["resource"] != "Reservation" {
		t.Errorf("expected resource detail, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "64b0c1f2a3d4e5f601234567" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
}

func TestRoomUnavailable_Details(t *testing.T) {
	err := RoomUnavailable("room-1", "2026-09-01", "blackout")
	if err.Details["room_id"] != "room-1" {
		t.Errorf("expected room_id detail, got %v", err.Details["room_id"])
	}
	if err.Details["date"] != "2026-09-01" {
		t.Errorf("expected date detail, got %v", err.Details["date"])
	}
	if err.Details["reason"] != "blackout" {
		t.Errorf("expected reason detail, got %v", err.Details["reason"])
	}
	if !strings.Contains(err.Message, "room-1") || !strings.Contains(err.Message, "2026-09-01") {
		t.Errorf("expected pair in message, got %s", err.Message)
	}
}

func TestInvalidTransition_Details(t *testing.T) {
	err := InvalidTransition("cancel", "COMPLETED")
	if err.Details["operation"] != "cancel" {
		t.Errorf("expected operation detail, got %v", err.Details["operation"])
	}
	if err.Details["current_status"] != "COMPLETED" {
		t.Errorf("expected current_status detail, got %v", err.Details["current_status"])
	}
}

func TestDuplicateReference_Details(t *testing.T) {
	err := DuplicateReference("transaction_id")
	if err.Details["field"] != "transaction_id" {
		t.Errorf("expected field detail, got %v", err.Details["field"])
	}
	if !strings.Contains(err.Message, "transaction_id") {
		t.Errorf("expected field in message, got %s", err.Message)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(NotFound("Reservation")) {
		t.Error("expected AppError to be recognized")
	}
	if IsAppError(errors.New("plain")) {
		t.Error("expected plain error to be rejected")
	}
}

func TestNewAndWrap(t *testing.T) {
	err := New("CUSTOM", "custom failure", http.StatusTeapot)
	if err.Code != "CUSTOM" || err.HTTPStatus != http.StatusTeapot {
		t.Errorf("unexpected constructed error: %+v", err)
	}

	cause := errors.New("root cause")
	wrapped := Wrap(cause, "CUSTOM", "custom failure", http.StatusTeapot)
	if !errors.Is(wrapped, cause) {
		t.Error("expected wrapped cause to be reachable")
	}
}
