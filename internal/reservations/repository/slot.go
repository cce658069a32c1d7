package repository

import (
	"context"
	"fmt"
	"time"

	reservationerrors "yatranepal/internal/reservations/errors"
	"yatranepal/pkg/config"
	"yatranepal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const SlotCollectionName = "Reservation_slots"

// SlotRepository manages the per-(room, date) claim documents. Each claim's
// _id is the canonical slot key, so a second claim on the same pair fails
// with a duplicate key error at the storage layer.
type SlotRepository interface {
	Claim(ctx context.Context, reservationID, hotelID string, roomIDs []string, dates []time.Time) error
	ReleaseByReservation(ctx context.Context, reservationID string) error
}

type mongoSlotRepository struct {
	collection *mongo.Collection
}

func NewSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		collection: db.Collection(SlotCollectionName),
	}
}

// Claim inserts one slot document per (room, date) pair, rooms in request
// order and dates chronologically. Inserts are sequential so the first
// duplicate key identifies the first conflicting pair in that order.
// Callers run this inside a transaction; a conflict aborts it and removes
// any slots claimed earlier in the walk.
func (r *mongoSlotRepository) Claim(ctx context.Context, reservationID, hotelID string, roomIDs []string, dates []time.Time) error {
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, roomID := range roomIDs {
		for _, date := range dates {
			slot := model.NewReservationSlot(reservationID, hotelID, roomID, date)
			slot.CreatedAt = now

			if _, err := r.collection.InsertOne(ctx, slot); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return &reservationerrors.SlotConflictError{
						RoomID: roomID,
						Date:   model.NormalizeDate(date),
					}
				}
				return fmt.Errorf("failed to claim slot %s: %w", slot.ID, err)
			}
		}
	}

	return nil
}

// ReleaseByReservation frees every slot held by a reservation. Run in the
// same transaction as the status change to CANCELLED so the dates become
// available atomically with the cancellation.
func (r *mongoSlotRepository) ReleaseByReservation(ctx context.Context, reservationID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"reservation_id": reservationID})
	if err != nil {
		return fmt.Errorf("failed to release slots for reservation %s: %w", reservationID, err)
	}
	return nil
}
