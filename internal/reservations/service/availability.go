package service

import (
	"context"
	"time"

	apperrors "yatranepal/pkg/errors"
	"yatranepal/pkg/model"
	"yatranepal/pkg/sanitizer"
)

// Conflict names one (room, date) pair that cannot be booked and why.
type Conflict struct {
	RoomID string `json:"room_id"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// AvailabilityReport is the read-only answer to an availability query. It
// carries no lock, so a reported free slot can still lose a subsequent
// booking race.
type AvailabilityReport struct {
	HotelID   string     `json:"hotel_id"`
	RoomIDs   []string   `json:"room_ids"`
	Dates     []string   `json:"dates"`
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

const (
	conflictReasonBlackout = "blackout"
	conflictReasonReserved = "reserved"
)

// CheckAvailability reports every conflicting (room, date) pair for the
// requested rooms and dates, rooms in request order and dates
// chronologically. Blackout conflicts come before reservation conflicts
// for the same pair.
func (s *reservationService) CheckAvailability(ctx context.Context, hotelID string, roomIDs []string, dates []time.Time) (*AvailabilityReport, error) {
	hotelID = sanitizer.TrimAndNormalize(hotelID)
	roomIDs = sanitizer.NormalizeIDs(roomIDs)
	dates = model.NormalizeDates(dates)

	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	if len(roomIDs) == 0 {
		return nil, apperrors.InvalidInput("At least one room ID is required")
	}
	if len(dates) == 0 {
		return nil, apperrors.InvalidInput("At least one date is required")
	}

	rooms, err := s.resolveHotelRooms(ctx, hotelID, roomIDs)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActiveByRoomsAndDates(ctx, roomIDs, dates)
	if err != nil {
		return nil, s.storageError("Failed to check existing reservations", err)
	}

	reserved := make(map[string]struct{})
	for _, r := range existing {
		for _, roomID := range r.RoomIDs {
			for _, date := range r.Dates {
				reserved[model.SlotID(roomID, date)] = struct{}{}
			}
		}
	}

	report := &AvailabilityReport{
		HotelID:   hotelID,
		RoomIDs:   roomIDs,
		Available: true,
	}
	for _, date := range dates {
		report.Dates = append(report.Dates, model.DateKey(date))
	}

	for _, room := range rooms {
		for _, date := range dates {
			switch {
			case room.IsBlackedOut(date):
				report.Conflicts = append(report.Conflicts, Conflict{
					RoomID: room.ID,
					Date:   model.DateKey(date),
					Reason: conflictReasonBlackout,
				})
			default:
				if _, ok := reserved[model.SlotID(room.ID, date)]; ok {
					report.Conflicts = append(report.Conflicts, Conflict{
						RoomID: room.ID,
						Date:   model.DateKey(date),
						Reason: conflictReasonReserved,
					})
				}
			}
		}
	}

	report.Available = len(report.Conflicts) == 0
	return report, nil
}
