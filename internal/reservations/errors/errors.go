package errors

import (
	"errors"
	"fmt"
	"time"

	"yatranepal/pkg/model"
)

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrNoMatch = errors.New("no reservation matched the expected status")

	ErrDuplicateReference = errors.New("payment reference already bound to another reservation")

	ErrLockHeld = errors.New("slot lock held by another request")
)

// DuplicateReferenceError names the gateway reference field that is
// already bound to another reservation.
type DuplicateReferenceError struct {
	Field string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateReference, e.Field)
}

func (e *DuplicateReferenceError) Unwrap() error {
	return ErrDuplicateReference
}

// SlotConflictError reports the first (room, date) pair that could not be
// claimed. Rooms are walked in request order and dates chronologically, so
// the reported pair is stable for a given request.
type SlotConflictError struct {
	RoomID string
	Date   time.Time
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("room %s already reserved on %s", e.RoomID, model.DateKey(e.Date))
}
