package model

import (
	"fmt"
	"time"
)

// ReservationSlot claims one (room, date) pair for an active reservation.
// The document id is the canonical slot key, so the collection's _id
// uniqueness is the storage-level guarantee that no two active
// reservations share a pair: the second insert fails with a duplicate key.
type ReservationSlot struct {
	ID            string    `json:"id" bson:"_id"`
	ReservationID string    `json:"reservation_id" bson:"reservation_id"`
	HotelID       string    `json:"hotel_id" bson:"hotel_id"`
	RoomID        string    `json:"room_id" bson:"room_id"`
	Date          time.Time `json:"date" bson:"date"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// SlotID builds the canonical key for a (room, date) pair.
func SlotID(roomID string, date time.Time) string {
	return fmt.Sprintf("slot_%s_%s", roomID, DateKey(date))
}

// NewReservationSlot builds the slot claim for one pair of a reservation.
func NewReservationSlot(reservationID, hotelID, roomID string, date time.Time) *ReservationSlot {
	return &ReservationSlot{
		ID:            SlotID(roomID, date),
		ReservationID: reservationID,
		HotelID:       hotelID,
		RoomID:        roomID,
		Date:          NormalizeDate(date),
	}
}

// SlotLock is a short-lived advisory lock serializing booking attempts on
// one (hotel, room). It keeps conflict reports deterministic under
// contention; the slot collection's unique keys backstop correctness if a
// lock expires mid-flight.
type SlotLock struct {
	ID        string    `json:"id" bson:"_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SlotLockID builds the advisory lock key for a (hotel, room).
func SlotLockID(hotelID, roomID string) string {
	return fmt.Sprintf("reservation_lock_%s_%s", hotelID, roomID)
}
