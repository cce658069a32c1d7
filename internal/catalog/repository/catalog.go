package repository

import (
	"context"
	"errors"
	"fmt"

	"yatranepal/pkg/config"
	"yatranepal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	RoomCollectionName  = "Rooms"
	HotelCollectionName = "Hotels"
)

var (
	ErrRoomNotFound = errors.New("room not found")

	ErrHotelNotFound = errors.New("hotel not found")

	ErrInvalidID = errors.New("invalid catalog ID format")
)

// CatalogRepository reads room and hotel documents. The reservation core
// never writes to these collections; hotel management owns them.
type CatalogRepository interface {
	FindRoomsByIDs(ctx context.Context, roomIDs []string) ([]*model.Room, error)
	FindHotelByID(ctx context.Context, hotelID string) (*model.Hotel, error)
}

type mongoCatalogRepository struct {
	cfg    *config.Config
	rooms  *mongo.Collection
	hotels *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:    cfg,
		rooms:  db.Collection(RoomCollectionName),
		hotels: db.Collection(HotelCollectionName),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

// FindRoomsByIDs resolves rooms preserving the order of the requested IDs.
// Returns ErrRoomNotFound wrapped with the first missing ID.
func (r *mongoCatalogRepository) FindRoomsByIDs(ctx context.Context, roomIDs []string) ([]*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	for _, id := range roomIDs {
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
		}
	}

	cursor, err := r.rooms.Find(ctx, bson.M{"_id": bson.M{"$in": roomIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var found []*model.Room
	if err = cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	byID := make(map[string]*model.Room, len(found))
	for _, room := range found {
		byID[room.ID] = room
	}

	ordered := make([]*model.Room, 0, len(roomIDs))
	for _, id := range roomIDs {
		room, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
		}
		ordered = append(ordered, room)
	}

	return ordered, nil
}

func (r *mongoCatalogRepository) FindHotelByID(ctx context.Context, hotelID string) (*model.Hotel, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(hotelID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, hotelID)
	}

	var hotel model.Hotel
	err := r.hotels.FindOne(ctx, bson.M{"_id": hotelID}).Decode(&hotel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrHotelNotFound, hotelID)
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}

	return &hotel, nil
}
