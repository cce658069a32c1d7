package model

import (
	"testing"
	"time"
)

func TestNormalizeDate_TruncatesToUTCDay(t *testing.T) {
	kathmandu := time.FixedZone("NPT", 5*3600+45*60)
	local := time.Date(2026, 9, 1, 2, 30, 0, 0, kathmandu)

	normalized := NormalizeDate(local)

	// 02:30 NPT is still August 31 in UTC.
	expected := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !normalized.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, normalized)
	}
}

func TestNormalizeDates_DedupesAndSorts(t *testing.T) {
	d1 := time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)
	d3 := time.Date(2026, 9, 3, 1, 0, 0, 0, time.UTC) // same day as d1
	d4 := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	out := NormalizeDates([]time.Time{d1, d2, d3, d4})

	if len(out) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(out))
	}
	keys := []string{"2026-09-01", "2026-09-02", "2026-09-03"}
	for i, key := range keys {
		if DateKey(out[i]) != key {
			t.Errorf("position %d: expected %s, got %s", i, key, DateKey(out[i]))
		}
	}
}

func TestNormalizeDates_Empty(t *testing.T) {
	if out := NormalizeDates(nil); len(out) != 0 {
		t.Errorf("expected empty result, got %v", out)
	}
}

func TestSlotID_StableForSameDay(t *testing.T) {
	roomID := "64b0c1f2a3d4e5f601234569"
	morning := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)

	if SlotID(roomID, morning) != SlotID(roomID, evening) {
		t.Error("expected identical slot IDs for the same calendar day")
	}

	expected := "slot_" + roomID + "_2026-09-01"
	if got := SlotID(roomID, morning); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestReservationStatus_IsActive(t *testing.T) {
	active := []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelRequested}
	for _, s := range active {
		if !s.IsActive() {
			t.Errorf("expected %s to be active", s)
		}
	}
	if StatusCancelled.IsActive() {
		t.Error("expected CANCELLED to be inactive")
	}
}

func TestReservationStatus_IsValid(t *testing.T) {
	if !StatusCancelRequested.IsValid() {
		t.Error("expected CANCEL_REQUESTED to be valid")
	}
	if ReservationStatus("ARCHIVED").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestRoom_IsBlackedOut(t *testing.T) {
	room := Room{
		ID:               "64b0c1f2a3d4e5f601234569",
		UnavailableDates: []time.Time{time.Date(2026, 9, 5, 14, 0, 0, 0, time.UTC)},
	}

	if !room.IsBlackedOut(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected blackout to match by calendar day")
	}
	if room.IsBlackedOut(time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected no blackout on a different day")
	}
}
