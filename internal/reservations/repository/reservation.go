package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	reservationerrors "yatranepal/internal/reservations/errors"
	"yatranepal/pkg/config"
	mongotx "yatranepal/pkg/db/mongo"
	"yatranepal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

// referenceFields are the unique sparse indexes on gateway correlation keys.
// Duplicate key errors on an insert are matched against these names.
var referenceFields = []string{"transaction_id", "pidx", "product_code"}

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, status model.ReservationStatus, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context, status model.ReservationStatus) (int64, error)
	FindByUser(ctx context.Context, userID string, status model.ReservationStatus, limit int, offset int64) ([]*model.Reservation, error)
	CountByUser(ctx context.Context, userID string, status model.ReservationStatus) (int64, error)
	FindByHotel(ctx context.Context, hotelID string, status model.ReservationStatus, date *time.Time, limit int, offset int64) ([]*model.Reservation, error)
	CountByHotel(ctx context.Context, hotelID string, status model.ReservationStatus, date *time.Time) (int64, error)
	FindCancellationRequests(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	CountCancellationRequests(ctx context.Context) (int64, error)
	FindByReference(ctx context.Context, field string, value string) (*model.Reservation, error)
	FindActiveByRoomsAndDates(ctx context.Context, roomIDs []string, dates []time.Time) ([]*model.Reservation, error)
	UpdateStatus(ctx context.Context, id string, from []model.ReservationStatus, to model.ReservationStatus, set bson.M) (int64, error)
	UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		// Inside transaction - cannot wrap SessionContext, return no-op cancel
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if reservation.ID == "" {
		reservation.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if field := duplicateReferenceField(err); field != "" {
				return &reservationerrors.DuplicateReferenceError{Field: field}
			}
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

// duplicateReferenceField maps a duplicate key error to the gateway
// reference index it violated.
func duplicateReferenceField(err error) string {
	msg := err.Error()
	for _, field := range referenceFields {
		if strings.Contains(msg, field) {
			return field
		}
	}
	return ""
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": id}

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, filter).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, status model.ReservationStatus, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.findMany(ctx, filter, opts)
}

func (r *mongoReservationRepository) Count(ctx context.Context, status model.ReservationStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) FindByUser(ctx context.Context, userID string, status model.ReservationStatus, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.findMany(ctx, r.buildUserFilter(userID, status), opts)
}

func (r *mongoReservationRepository) CountByUser(ctx context.Context, userID string, status model.ReservationStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildUserFilter(userID, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by user: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) buildUserFilter(userID string, status model.ReservationStatus) bson.M {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func (r *mongoReservationRepository) FindByHotel(ctx context.Context, hotelID string, status model.ReservationStatus, date *time.Time, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildHotelFilter(hotelID, status, date)

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.findMany(ctx, filter, opts)
}

func (r *mongoReservationRepository) CountByHotel(ctx context.Context, hotelID string, status model.ReservationStatus, date *time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildHotelFilter(hotelID, status, date))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by hotel: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) buildHotelFilter(hotelID string, status model.ReservationStatus, date *time.Time) bson.M {
	filter := bson.M{"hotel_id": hotelID}
	if status != "" {
		filter["status"] = status
	}
	if date != nil {
		filter["dates"] = model.NormalizeDate(*date)
	}
	return filter
}

func (r *mongoReservationRepository) FindCancellationRequests(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "cancellation_requested_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.findMany(ctx, bson.M{"status": model.StatusCancelRequested}, opts)
}

func (r *mongoReservationRepository) CountCancellationRequests(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": model.StatusCancelRequested})
	if err != nil {
		return 0, fmt.Errorf("failed to count cancellation requests: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) FindByReference(ctx context.Context, field string, value string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{field: value}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation by %s: %w", field, err)
	}

	return &reservation, nil
}

// FindActiveByRoomsAndDates returns active reservations touching any of the
// given rooms on any of the given dates. Used by availability checks and the
// pre-claim conflict recheck.
func (r *mongoReservationRepository) FindActiveByRoomsAndDates(ctx context.Context, roomIDs []string, dates []time.Time) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	normalized := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		normalized = append(normalized, model.NormalizeDate(d))
	}

	filter := bson.M{
		"room_ids": bson.M{"$in": roomIDs},
		"dates":    bson.M{"$in": normalized},
		"status":   bson.M{"$in": model.ActiveStatuses()},
	}

	return r.findMany(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// UpdateStatus performs a conditional status transition. The update matches
// only when the current status is one of the allowed source statuses, so
// concurrent transitions on the same reservation serialize correctly.
// Returns the matched count; zero means the document is missing or its
// status changed underneath us.
func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id string, from []model.ReservationStatus, to model.ReservationStatus, set bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return 0, fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}

	if set == nil {
		set = bson.M{}
	}
	set["status"] = to
	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return result.MatchedCount, nil
}

func (r *mongoReservationRepository) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return 0, fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": id}
	if status == model.PaymentPending {
		// A settled payment never goes back to PENDING, enforced at the
		// write so concurrent gateway callbacks cannot interleave past it.
		filter["payment_status"] = bson.M{"$ne": model.PaymentSuccess}
	}

	update := bson.M{
		"$set": bson.M{
			"payment_status": status,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to update payment status: %w", err)
	}

	return result.MatchedCount, nil
}

func (r *mongoReservationRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
