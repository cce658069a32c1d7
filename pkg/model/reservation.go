package model

import (
	"time"
)

type ReservationStatus string

const (
	StatusPending         ReservationStatus = "PENDING"
	StatusConfirmed       ReservationStatus = "CONFIRMED"
	StatusCancelRequested ReservationStatus = "CANCEL_REQUESTED"
	StatusCancelled       ReservationStatus = "CANCELLED"
)

// IsActive reports whether the reservation still holds its dates.
// CANCELLED reservations free their dates and drop out of conflict checks.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelRequested
}

func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelRequested, StatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses returns the statuses counted by availability checks.
func ActiveStatuses() []ReservationStatus {
	return []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelRequested}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodEsewa  PaymentMethod = "ESEWA"
	MethodKhalti PaymentMethod = "KHALTI"
	MethodCash   PaymentMethod = "CASH"
)

// RoomDetail is the denormalized snapshot of a room captured at booking
// time, so later catalog edits do not rewrite historical reservations.
type RoomDetail struct {
	RoomID string `json:"room_id" bson:"room_id"`
	Number int    `json:"number" bson:"number"`
	Title  string `json:"title" bson:"title"`
}

type Reservation struct {
	ID            string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID        string            `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	HotelID       string            `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomIDs       []string          `json:"room_ids" bson:"room_ids" validate:"required,min=1,dive,mongodb"`
	RoomDetails   []RoomDetail      `json:"room_details" bson:"room_details" validate:"omitempty"`
	Dates         []time.Time       `json:"dates" bson:"dates" validate:"required,date_list"`
	TotalPrice    float64           `json:"total_price" bson:"total_price" validate:"gte=0"`
	PaymentMethod PaymentMethod     `json:"payment_method" bson:"payment_method" validate:"required,oneof=ESEWA KHALTI CASH"`
	PaymentStatus PaymentStatus     `json:"payment_status" bson:"payment_status" validate:"omitempty,oneof=PENDING SUCCESS FAILED"`
	Status        ReservationStatus `json:"status" bson:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCEL_REQUESTED CANCELLED"`

	// Gateway correlation keys. At most one reservation may hold a given
	// non-empty value of each.
	TransactionID string `json:"transaction_id,omitempty" bson:"transaction_id,omitempty" validate:"omitempty,max=128"`
	Pidx          string `json:"pidx,omitempty" bson:"pidx,omitempty" validate:"omitempty,max=128"`
	ProductCode   string `json:"product_code,omitempty" bson:"product_code,omitempty" validate:"omitempty,max=128"`

	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty" bson:"cancellation_requested_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt               time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// PaymentStatusUpdate is the payload for the payment-status endpoint.
type PaymentStatusUpdate struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required,oneof=PENDING SUCCESS FAILED"`
}

// NormalizeDate truncates a timestamp to its calendar day in UTC.
// All (room, date) comparisons are defined on this canonical form.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey renders a normalized date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return NormalizeDate(t).Format("2006-01-02")
}

// NormalizeDates deduplicates and sorts dates chronologically after
// truncating each to its UTC day.
func NormalizeDates(dates []time.Time) []time.Time {
	seen := make(map[string]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		n := NormalizeDate(d)
		key := n.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Before(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
