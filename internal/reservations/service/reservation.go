package service

import (
	"context"
	"errors"
	"sync"
	"time"

	catalogrepo "yatranepal/internal/catalog/repository"
	"yatranepal/internal/reservations/events"
	reservationerrors "yatranepal/internal/reservations/errors"
	"yatranepal/internal/reservations/repository"
	"yatranepal/internal/reservations/validator"
	"yatranepal/pkg/config"
	mongotx "yatranepal/pkg/db/mongo"
	apperrors "yatranepal/pkg/errors"
	"yatranepal/pkg/model"
	"yatranepal/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByUser(ctx context.Context, userID string, status string, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByHotel(ctx context.Context, hotelID string, status string, date *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetCancellationRequests(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Reservation, error)
	GetByPidx(ctx context.Context, pidx string) (*model.Reservation, error)
	GetByProductCode(ctx context.Context, productCode string) (*model.Reservation, error)
	Confirm(ctx context.Context, id string) (*model.Reservation, error)
	RequestCancellation(ctx context.Context, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) (*model.Reservation, error)
	UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) (*model.Reservation, error)
	CheckAvailability(ctx context.Context, hotelID string, roomIDs []string, dates []time.Time) (*AvailabilityReport, error)
}

type reservationService struct {
	repo        repository.ReservationRepository
	slotRepo    repository.SlotRepository
	lockRepo    repository.SlotLockRepository
	catalogRepo catalogrepo.CatalogRepository
	validator   *validator.ReservationValidator
	publisher   events.Publisher
	cfg         *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	slotRepo repository.SlotRepository,
	lockRepo repository.SlotLockRepository,
	catalogRepo catalogrepo.CatalogRepository,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:        repo,
		slotRepo:    slotRepo,
		lockRepo:    lockRepo,
		catalogRepo: catalogRepo,
		validator:   validator,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	s.sanitize(reservation)
	s.applyDefaults(reservation)

	if err := s.validate(reservation); err != nil {
		return err
	}

	rooms, err := s.resolveRooms(ctx, reservation)
	if err != nil {
		return err
	}

	// Blackout dates reject the request before any storage writes.
	for _, room := range rooms {
		for _, date := range reservation.Dates {
			if room.IsBlackedOut(date) {
				return apperrors.RoomUnavailable(room.ID, model.DateKey(date), "room is blacked out on this date")
			}
		}
	}

	s.snapshotRoomDetails(reservation, rooms)
	s.applyPriceFallback(reservation, rooms)

	// Advisory locks serialize concurrent attempts per (hotel, room) so
	// only one request at a time walks the claim sequence for a room.
	lockIDs, err := s.acquireRoomLocks(ctx, reservation.HotelID, reservation.RoomIDs, reservation.Dates)
	if err != nil {
		return err
	}
	defer s.releaseLocks(ctx, lockIDs)

	reservation.ID = primitive.NewObjectID().Hex()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoActiveConflict(sessCtx, reservation); err != nil {
			return err
		}
		if err := s.slotRepo.Claim(sessCtx, reservation.ID, reservation.HotelID, reservation.RoomIDs, reservation.Dates); err != nil {
			return err
		}
		return s.repo.Create(sessCtx, reservation)
	})
	if err != nil {
		var slotConflict *reservationerrors.SlotConflictError
		if errors.As(err, &slotConflict) {
			return apperrors.RoomUnavailable(slotConflict.RoomID, model.DateKey(slotConflict.Date), "room is already reserved on this date")
		}
		var dupRef *reservationerrors.DuplicateReferenceError
		if errors.As(err, &dupRef) {
			return apperrors.DuplicateReference(dupRef.Field)
		}
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return s.storageError("Failed to create reservation", err)
	}

	s.publishEvent(ctx, events.EventReservationCreated, reservation)

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"user_id", reservation.UserID,
		"hotel_id", reservation.HotelID,
		"rooms", len(reservation.RoomIDs),
		"dates", len(reservation.Dates),
	)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, s.storageError("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	statusFilter, err := parseStatusFilter(status)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, statusFilter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = s.storageError("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, statusFilter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = s.storageError("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetByUser(ctx context.Context, userID string, status string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	statusFilter, err := parseStatusFilter(status)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID, statusFilter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations by user", "user_id", userID, "error", errCount)
			errCount = s.storageError("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByUser(ctx, userID, statusFilter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations by user", "user_id", userID, "error", errFind)
			errFind = s.storageError("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetByHotel(ctx context.Context, hotelID string, status string, date *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if hotelID == "" {
		return nil, 0, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	statusFilter, err := parseStatusFilter(status)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByHotel(ctx, hotelID, statusFilter, date)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations by hotel", "hotel_id", hotelID, "error", errCount)
			errCount = s.storageError("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByHotel(ctx, hotelID, statusFilter, date, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations by hotel", "hotel_id", hotelID, "error", errFind)
			errFind = s.storageError("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetCancellationRequests(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountCancellationRequests(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count cancellation requests", "error", errCount)
			errCount = s.storageError("Failed to count cancellation requests", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindCancellationRequests(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list cancellation requests", "error", errFind)
			errFind = s.storageError("Failed to retrieve cancellation requests", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetByTransactionID(ctx context.Context, transactionID string) (*model.Reservation, error) {
	return s.getByReference(ctx, "transaction_id", transactionID)
}

func (s *reservationService) GetByPidx(ctx context.Context, pidx string) (*model.Reservation, error) {
	return s.getByReference(ctx, "pidx", pidx)
}

func (s *reservationService) GetByProductCode(ctx context.Context, productCode string) (*model.Reservation, error) {
	return s.getByReference(ctx, "product_code", productCode)
}

func (s *reservationService) getByReference(ctx context.Context, field, value string) (*model.Reservation, error) {
	value = sanitizer.NormalizeReference(value)
	if value == "" {
		return nil, apperrors.InvalidInput("Reference value cannot be empty")
	}

	reservation, err := s.repo.FindByReference(ctx, field, value)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", value)
		}
		return nil, s.storageError("Failed to retrieve reservation by reference", err)
	}

	return reservation, nil
}

// Confirm moves a PENDING reservation to CONFIRMED.
func (s *reservationService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	matched, err := s.repo.UpdateStatus(ctx, id, []model.ReservationStatus{model.StatusPending}, model.StatusConfirmed, nil)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, s.storageError("Failed to confirm reservation", err)
	}
	if matched == 0 {
		return nil, s.resolveTransitionFailure(ctx, id, "confirm")
	}

	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventReservationConfirmed, reservation)
	s.cfg.Log.Info("Reservation confirmed", "id", id)
	return reservation, nil
}

// RequestCancellation moves a PENDING or CONFIRMED reservation to
// CANCEL_REQUESTED and stamps the request time. The dates stay held until
// the cancellation is finalized.
func (s *reservationService) RequestCancellation(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	matched, err := s.repo.UpdateStatus(ctx, id,
		[]model.ReservationStatus{model.StatusPending, model.StatusConfirmed},
		model.StatusCancelRequested,
		bson.M{"cancellation_requested_at": now},
	)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, s.storageError("Failed to request cancellation", err)
	}
	if matched == 0 {
		return nil, s.resolveTransitionFailure(ctx, id, "request cancellation for")
	}

	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventReservationCancelRequested, reservation)
	s.cfg.Log.Info("Reservation cancellation requested", "id", id)
	return reservation, nil
}

// Cancel finalizes a cancellation from any active status. The status change
// and the slot release commit in one transaction, so the dates become
// bookable again atomically with the cancellation.
func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		matched, err := s.repo.UpdateStatus(sessCtx, id, model.ActiveStatuses(), model.StatusCancelled, nil)
		if err != nil {
			return err
		}
		if matched == 0 {
			return reservationerrors.ErrNoMatch
		}
		return s.slotRepo.ReleaseByReservation(sessCtx, id)
	})
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNoMatch) {
			return nil, s.resolveTransitionFailure(ctx, id, "cancel")
		}
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, s.storageError("Failed to cancel reservation", err)
	}

	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventReservationCancelled, reservation)
	s.cfg.Log.Info("Reservation cancelled", "id", id)
	return reservation, nil
}

// UpdatePaymentStatus sets the payment status independently of the
// reservation status. A SUCCESS to PENDING regression is ignored: gateways
// redeliver webhooks out of order and a settled payment never unsettles.
func (s *reservationService) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if err := s.validator.ValidatePaymentStatus(&model.PaymentStatusUpdate{PaymentStatus: status}); err != nil {
		return nil, apperrors.InvalidInput("Invalid payment status: " + string(status))
	}

	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if reservation.PaymentStatus == model.PaymentSuccess && status == model.PaymentPending {
		s.cfg.Log.Warn("Ignoring payment status regression",
			"id", id,
			"current", reservation.PaymentStatus,
			"requested", status,
		)
		return reservation, nil
	}

	if reservation.PaymentStatus == status {
		return reservation, nil
	}

	matched, err := s.repo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, s.storageError("Failed to update payment status", err)
	}
	if matched == 0 {
		// Either the reservation vanished, or the conditional write refused
		// a PENDING regression that raced past the read above.
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cfg.Log.Warn("Ignoring payment status regression",
			"id", id,
			"current", current.PaymentStatus,
			"requested", status,
		)
		return current, nil
	}

	reservation.PaymentStatus = status
	s.publishEvent(ctx, events.EventPaymentUpdated, reservation)
	s.cfg.Log.Info("Payment status updated", "id", id, "payment_status", status)
	return reservation, nil
}

// --- Helpers ---

func (s *reservationService) sanitize(r *model.Reservation) {
	r.UserID = sanitizer.TrimAndNormalize(r.UserID)
	r.HotelID = sanitizer.TrimAndNormalize(r.HotelID)
	r.RoomIDs = sanitizer.NormalizeIDs(r.RoomIDs)
	r.Dates = model.NormalizeDates(r.Dates)
	r.TransactionID = sanitizer.NormalizeReference(r.TransactionID)
	r.Pidx = sanitizer.NormalizeReference(r.Pidx)
	r.ProductCode = sanitizer.NormalizeReference(r.ProductCode)
}

func (s *reservationService) applyDefaults(r *model.Reservation) {
	// New reservations always start PENDING on both tracks, whatever the
	// client sent.
	r.Status = model.StatusPending
	if r.PaymentStatus == "" {
		r.PaymentStatus = model.PaymentPending
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = model.MethodCash
	}
	r.CancellationRequestedAt = nil
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) resolveRooms(ctx context.Context, reservation *model.Reservation) ([]*model.Room, error) {
	return s.resolveHotelRooms(ctx, reservation.HotelID, reservation.RoomIDs)
}

// resolveHotelRooms checks the hotel exists and loads the requested rooms,
// verifying each one belongs to that hotel.
func (s *reservationService) resolveHotelRooms(ctx context.Context, hotelID string, roomIDs []string) ([]*model.Room, error) {
	if _, err := s.catalogRepo.FindHotelByID(ctx, hotelID); err != nil {
		if errors.Is(err, catalogrepo.ErrHotelNotFound) {
			return nil, apperrors.NotFoundWithID("Hotel", hotelID)
		}
		if errors.Is(err, catalogrepo.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid hotel ID format")
		}
		return nil, s.storageError("Failed to resolve hotel", err)
	}

	rooms, err := s.catalogRepo.FindRoomsByIDs(ctx, roomIDs)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrRoomNotFound) {
			return nil, apperrors.NotFound("Room")
		}
		if errors.Is(err, catalogrepo.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, s.storageError("Failed to resolve rooms", err)
	}

	for _, room := range rooms {
		if room.HotelID != hotelID {
			return nil, apperrors.InvalidInput("Room " + room.ID + " does not belong to hotel " + hotelID)
		}
	}

	return rooms, nil
}

func (s *reservationService) snapshotRoomDetails(reservation *model.Reservation, rooms []*model.Room) {
	details := make([]model.RoomDetail, 0, len(rooms))
	for _, room := range rooms {
		details = append(details, room.Detail())
	}
	reservation.RoomDetails = details
}

// applyPriceFallback computes the total from the catalog when the request
// carries no price: sum of room prices, times the number of nights.
func (s *reservationService) applyPriceFallback(reservation *model.Reservation, rooms []*model.Room) {
	if reservation.TotalPrice > 0 {
		return
	}
	var perNight float64
	for _, room := range rooms {
		perNight += room.Price
	}
	reservation.TotalPrice = perNight * float64(len(reservation.Dates))
}

// acquireRoomLocks takes one advisory lock per room, in request order.
// When a lock is held by another request, the committed ledger decides:
// an existing conflicting pair is reported as-is, otherwise the claim
// proceeds without the advisory lock and the slot unique keys arbitrate
// the race.
func (s *reservationService) acquireRoomLocks(ctx context.Context, hotelID string, roomIDs []string, dates []time.Time) ([]string, error) {
	acquired := make([]string, 0, len(roomIDs))

	for _, roomID := range roomIDs {
		lock := &model.SlotLock{
			ID:        model.SlotLockID(hotelID, roomID),
			ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
		}

		if _, err := s.lockRepo.Create(ctx, lock); err != nil {
			if errors.Is(err, reservationerrors.ErrLockHeld) {
				conflict, checkErr := s.firstActiveConflict(ctx, []string{roomID}, dates)
				if checkErr != nil {
					s.releaseLocks(ctx, acquired)
					return nil, checkErr
				}
				if conflict != nil {
					s.releaseLocks(ctx, acquired)
					return nil, conflict
				}
				continue
			}
			s.releaseLocks(ctx, acquired)
			return nil, s.storageError("Failed to acquire slot lock", err)
		}

		acquired = append(acquired, lock.ID)
	}

	return acquired, nil
}

func (s *reservationService) releaseLocks(ctx context.Context, lockIDs []string) {
	for _, lockID := range lockIDs {
		if err := s.lockRepo.Delete(ctx, lockID); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
		}
	}
}

// firstActiveConflict reports the first committed (room, date) conflict in
// deterministic order, rooms as given and dates chronologically. Returns
// nil when the ledger holds no conflicting active reservation.
func (s *reservationService) firstActiveConflict(ctx context.Context, roomIDs []string, dates []time.Time) (*apperrors.AppError, error) {
	existing, err := s.repo.FindActiveByRoomsAndDates(ctx, roomIDs, dates)
	if err != nil {
		return nil, s.storageError("Failed to check existing reservations", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	taken := make(map[string]struct{})
	for _, r := range existing {
		for _, roomID := range r.RoomIDs {
			for _, date := range r.Dates {
				taken[model.SlotID(roomID, date)] = struct{}{}
			}
		}
	}

	for _, roomID := range roomIDs {
		for _, date := range dates {
			if _, ok := taken[model.SlotID(roomID, date)]; ok {
				return apperrors.RoomUnavailable(roomID, model.DateKey(date), "room is already reserved on this date"), nil
			}
		}
	}

	return nil, nil
}

// verifyNoActiveConflict rechecks the reservation collection inside the
// claim transaction. The slot claims are the hard guarantee; this pass
// exists to report the first conflicting pair in deterministic order.
func (s *reservationService) verifyNoActiveConflict(ctx context.Context, reservation *model.Reservation) error {
	conflict, err := s.firstActiveConflict(ctx, reservation.RoomIDs, reservation.Dates)
	if err != nil {
		return err
	}
	if conflict != nil {
		return conflict
	}
	return nil
}

// resolveTransitionFailure disambiguates a zero-match conditional update:
// the reservation either does not exist or sits in a status the operation
// does not accept.
func (s *reservationService) resolveTransitionFailure(ctx context.Context, id, operation string) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid reservation ID format")
		}
		return s.storageError("Failed to resolve reservation status", err)
	}
	return apperrors.InvalidTransition(operation, string(current.Status))
}

func (s *reservationService) publishEvent(ctx context.Context, eventType string, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, reservation); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"id", reservation.ID,
			"error", err,
		)
	}
}

func (s *reservationService) storageError(message string, err error) *apperrors.AppError {
	if mongotx.IsTransientError(err) {
		return apperrors.Unavailable("Reservation storage")
	}
	return apperrors.Internal(message, err)
}

func parseStatusFilter(status string) (model.ReservationStatus, error) {
	if status == "" {
		return "", nil
	}
	parsed := model.ReservationStatus(status)
	if !parsed.IsValid() {
		return "", apperrors.InvalidInput("Invalid status filter: " + status)
	}
	return parsed, nil
}
