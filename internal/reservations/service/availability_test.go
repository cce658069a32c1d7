package service

import (
	"context"
	"testing"
	"time"

	apperrors "yatranepal/pkg/errors"
	"yatranepal/pkg/model"
)

func TestCheckAvailability_AllFree(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.CheckAvailability(context.Background(), f.hotelID, []string{f.roomA, f.roomB}, []time.Time{day(0), day(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Available {
		t.Error("expected available report")
	}
	if len(report.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", report.Conflicts)
	}
	if len(report.Dates) != 2 || report.Dates[0] != model.DateKey(day(0)) {
		t.Errorf("unexpected dates in report: %v", report.Dates)
	}
}

func TestCheckAvailability_ReportsAllConflictsInOrder(t *testing.T) {
	f := newFixture(t)
	f.catalog.rooms[f.roomA].UnavailableDates = []time.Time{day(0)}

	existing := f.newReservation([]string{f.roomB}, []time.Time{day(0), day(1)})
	if err := f.service.Create(context.Background(), existing); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	report, err := f.service.CheckAvailability(context.Background(), f.hotelID, []string{f.roomA, f.roomB}, []time.Time{day(1), day(0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Available {
		t.Error("expected unavailable report")
	}

	expected := []Conflict{
		{RoomID: f.roomA, Date: model.DateKey(day(0)), Reason: "blackout"},
		{RoomID: f.roomB, Date: model.DateKey(day(0)), Reason: "reserved"},
		{RoomID: f.roomB, Date: model.DateKey(day(1)), Reason: "reserved"},
	}
	if len(report.Conflicts) != len(expected) {
		t.Fatalf("expected %d conflicts, got %d: %v", len(expected), len(report.Conflicts), report.Conflicts)
	}
	for i, want := range expected {
		if report.Conflicts[i] != want {
			t.Errorf("conflict %d: expected %+v, got %+v", i, want, report.Conflicts[i])
		}
	}
}

func TestCheckAvailability_CancelledReservationIgnored(t *testing.T) {
	f := newFixture(t)

	existing := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), existing); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.Cancel(context.Background(), existing.ID); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	report, err := f.service.CheckAvailability(context.Background(), f.hotelID, []string{f.roomA}, []time.Time{day(0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Available {
		t.Errorf("expected cancelled reservation to free the slot, got %v", report.Conflicts)
	}
}

func TestCheckAvailability_InvalidRequests(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CheckAvailability(context.Background(), "", []string{f.roomA}, []time.Time{day(0)})
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)

	_, err = f.service.CheckAvailability(context.Background(), f.hotelID, nil, []time.Time{day(0)})
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)

	_, err = f.service.CheckAvailability(context.Background(), f.hotelID, []string{f.roomA}, nil)
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
}

func TestCheckAvailability_UnknownHotel(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CheckAvailability(context.Background(), "ffffffffffffffffffffffff", []string{f.roomA}, []time.Time{day(0)})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestCheckAvailability_WrongHotel(t *testing.T) {
	f := newFixture(t)

	otherHotel := "ffffffffffffffffffffffff"
	f.catalog.hotels[otherHotel] = &model.Hotel{ID: otherHotel, Name: "Lakeside Inn", City: "Pokhara"}

	_, err := f.service.CheckAvailability(context.Background(), otherHotel, []string{f.roomA}, []time.Time{day(0)})
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
}
