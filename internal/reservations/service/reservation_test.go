package service

import (
	"context"
	"sync"
	"testing"
	"time"

	catalogrepo "yatranepal/internal/catalog/repository"
	reservationerrors "yatranepal/internal/reservations/errors"
	"yatranepal/internal/reservations/validator"
	"yatranepal/pkg/config"
	mongotx "yatranepal/pkg/db/mongo"
	apperrors "yatranepal/pkg/errors"
	"yatranepal/pkg/logger"
	"yatranepal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mock repositories for testing
// ────────────────────────────────────────────────

type mockReservationRepository struct {
	mu           sync.Mutex
	stored       map[string]*model.Reservation
	createFunc   func(ctx context.Context, reservation *model.Reservation) error
	findByIDFunc func(ctx context.Context, id string) (*model.Reservation, error)

	paymentUpdates int
}

func newMockReservationRepository() *mockReservationRepository {
	return &mockReservationRepository{stored: make(map[string]*model.Reservation)}
}

func (m *mockReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *reservation
	m.stored[reservation.ID] = &copied
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.stored[id]
	if !ok {
		return nil, reservationerrors.ErrNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (m *mockReservationRepository) FindAll(ctx context.Context, status model.ReservationStatus, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepository) Count(ctx context.Context, status model.ReservationStatus) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepository) FindByUser(ctx context.Context, userID string, status model.ReservationStatus, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepository) CountByUser(ctx context.Context, userID string, status model.ReservationStatus) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepository) FindByHotel(ctx context.Context, hotelID string, status model.ReservationStatus, date *time.Time, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepository) CountByHotel(ctx context.Context, hotelID string, status model.ReservationStatus, date *time.Time) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepository) FindCancellationRequests(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepository) CountCancellationRequests(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepository) FindByReference(ctx context.Context, field string, value string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.stored {
		switch field {
		case "transaction_id":
			if r.TransactionID == value {
				copied := *r
				return &copied, nil
			}
		case "pidx":
			if r.Pidx == value {
				copied := *r
				return &copied, nil
			}
		case "product_code":
			if r.ProductCode == value {
				copied := *r
				return &copied, nil
			}
		}
	}
	return nil, reservationerrors.ErrNotFound
}

func (m *mockReservationRepository) FindActiveByRoomsAndDates(ctx context.Context, roomIDs []string, dates []time.Time) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wantRoom := make(map[string]struct{})
	for _, id := range roomIDs {
		wantRoom[id] = struct{}{}
	}
	wantDate := make(map[string]struct{})
	for _, d := range dates {
		wantDate[model.DateKey(d)] = struct{}{}
	}

	var matches []*model.Reservation
	for _, r := range m.stored {
		if !r.Status.IsActive() {
			continue
		}
		hit := false
		for _, roomID := range r.RoomIDs {
			if _, ok := wantRoom[roomID]; ok {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		hit = false
		for _, d := range r.Dates {
			if _, ok := wantDate[model.DateKey(d)]; ok {
				hit = true
				break
			}
		}
		if hit {
			copied := *r
			matches = append(matches, &copied)
		}
	}
	return matches, nil
}

func (m *mockReservationRepository) UpdateStatus(ctx context.Context, id string, from []model.ReservationStatus, to model.ReservationStatus, set bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.stored[id]
	if !ok {
		return 0, nil
	}
	allowed := false
	for _, s := range from {
		if reservation.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return 0, nil
	}
	reservation.Status = to
	if raw, ok := set["cancellation_requested_at"]; ok {
		if ts, ok := raw.(time.Time); ok {
			reservation.CancellationRequestedAt = &ts
		}
	}
	return 1, nil
}

func (m *mockReservationRepository) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.stored[id]
	if !ok {
		return 0, nil
	}
	if status == model.PaymentPending && reservation.PaymentStatus == model.PaymentSuccess {
		return 0, nil
	}
	m.paymentUpdates++
	reservation.PaymentStatus = status
	return 1, nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotRepository struct {
	mu     sync.Mutex
	slots  map[string]string // slot ID -> reservation ID
	claims int
}

func newMockSlotRepository() *mockSlotRepository {
	return &mockSlotRepository{slots: make(map[string]string)}
}

func (m *mockSlotRepository) Claim(ctx context.Context, reservationID, hotelID string, roomIDs []string, dates []time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims++

	claimed := make([]string, 0, len(roomIDs)*len(dates))
	for _, roomID := range roomIDs {
		for _, date := range dates {
			id := model.SlotID(roomID, date)
			if _, taken := m.slots[id]; taken {
				for _, c := range claimed {
					delete(m.slots, c)
				}
				return &reservationerrors.SlotConflictError{RoomID: roomID, Date: model.NormalizeDate(date)}
			}
			m.slots[id] = reservationID
			claimed = append(claimed, id)
		}
	}
	return nil
}

func (m *mockSlotRepository) ReleaseByReservation(ctx context.Context, reservationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, owner := range m.slots {
		if owner == reservationID {
			delete(m.slots, id)
		}
	}
	return nil
}

type mockSlotLockRepository struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

func newMockSlotLockRepository() *mockSlotLockRepository {
	return &mockSlotLockRepository{locks: make(map[string]struct{})}
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[lock.ID]; held {
		return nil, reservationerrors.ErrLockHeld
	}
	m.locks[lock.ID] = struct{}{}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
}

type mockCatalogRepository struct {
	rooms  map[string]*model.Room
	hotels map[string]*model.Hotel
}

func (m *mockCatalogRepository) FindRoomsByIDs(ctx context.Context, roomIDs []string) ([]*model.Room, error) {
	ordered := make([]*model.Room, 0, len(roomIDs))
	for _, id := range roomIDs {
		room, ok := m.rooms[id]
		if !ok {
			return nil, catalogrepo.ErrRoomNotFound
		}
		ordered = append(ordered, room)
	}
	return ordered, nil
}

func (m *mockCatalogRepository) FindHotelByID(ctx context.Context, hotelID string) (*model.Hotel, error) {
	hotel, ok := m.hotels[hotelID]
	if !ok {
		return nil, catalogrepo.ErrHotelNotFound
	}
	return hotel, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []string
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

// ────────────────────────────────────────────────
// Test fixtures
// ────────────────────────────────────────────────

type fixture struct {
	repo      *mockReservationRepository
	slotRepo  *mockSlotRepository
	lockRepo  *mockSlotLockRepository
	catalog   *mockCatalogRepository
	publisher *mockPublisher
	service   ReservationService

	hotelID string
	roomA   string
	roomB   string
	userID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		SlotLockTTL:  10 * time.Second,
	}

	f := &fixture{
		repo:      newMockReservationRepository(),
		slotRepo:  newMockSlotRepository(),
		lockRepo:  newMockSlotLockRepository(),
		publisher: &mockPublisher{},
		hotelID:   primitive.NewObjectID().Hex(),
		roomA:     primitive.NewObjectID().Hex(),
		roomB:     primitive.NewObjectID().Hex(),
		userID:    primitive.NewObjectID().Hex(),
	}

	f.catalog = &mockCatalogRepository{
		rooms: map[string]*model.Room{
			f.roomA: {ID: f.roomA, HotelID: f.hotelID, Number: 101, Title: "Deluxe Room", Price: 4500},
			f.roomB: {ID: f.roomB, HotelID: f.hotelID, Number: 102, Title: "Standard Room", Price: 3000},
		},
		hotels: map[string]*model.Hotel{
			f.hotelID: {ID: f.hotelID, Name: "Everest View", City: "Pokhara"},
		},
	}

	reservationValidator := validator.NewReservationValidator(log, 10, 90)
	f.service = NewReservationService(
		f.repo,
		f.slotRepo,
		f.lockRepo,
		f.catalog,
		reservationValidator,
		f.publisher,
		cfg,
	)

	return f
}

func (f *fixture) newReservation(roomIDs []string, dates []time.Time) *model.Reservation {
	return &model.Reservation{
		UserID:        f.userID,
		HotelID:       f.hotelID,
		RoomIDs:       roomIDs,
		Dates:         dates,
		PaymentMethod: model.MethodKhalti,
	}
}

func day(offset int) time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func assertAppErrorCode(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *apperrors.AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, appErr)
	}
	return appErr
}

// ────────────────────────────────────────────────
// Tests for Create()
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA, f.roomB}, []time.Time{day(0), day(1)})

	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reservation.ID == "" {
		t.Error("expected reservation ID to be assigned")
	}
	if reservation.Status != model.StatusPending {
		t.Errorf("expected status PENDING, got %s", reservation.Status)
	}
	if reservation.PaymentStatus != model.PaymentPending {
		t.Errorf("expected payment status PENDING, got %s", reservation.PaymentStatus)
	}
	if len(reservation.RoomDetails) != 2 {
		t.Fatalf("expected 2 room details, got %d", len(reservation.RoomDetails))
	}
	if reservation.RoomDetails[0].RoomID != f.roomA || reservation.RoomDetails[0].Number != 101 {
		t.Errorf("unexpected first room detail: %+v", reservation.RoomDetails[0])
	}

	// Price fallback: (4500 + 3000) per night, two nights.
	if reservation.TotalPrice != 15000 {
		t.Errorf("expected total price 15000, got %f", reservation.TotalPrice)
	}

	if len(f.slotRepo.slots) != 4 {
		t.Errorf("expected 4 claimed slots, got %d", len(f.slotRepo.slots))
	}
	if len(f.lockRepo.locks) != 0 {
		t.Errorf("expected all locks released, got %d held", len(f.lockRepo.locks))
	}

	events := f.publisher.published()
	if len(events) != 1 || events[0] != "reservation.created" {
		t.Errorf("expected [reservation.created], got %v", events)
	}
}

func TestCreate_ClientStatusIgnored(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	reservation.Status = model.StatusConfirmed
	reservation.TotalPrice = 9999

	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reservation.Status != model.StatusPending {
		t.Errorf("expected forced PENDING status, got %s", reservation.Status)
	}
	if reservation.TotalPrice != 9999 {
		t.Errorf("expected client price to be honored, got %f", reservation.TotalPrice)
	}
}

func TestCreate_EmptyRoomIDs(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation(nil, []time.Time{day(0)})

	err := f.service.Create(context.Background(), reservation)
	assertAppErrorCode(t, err, apperrors.CodeValidation)

	if len(f.repo.stored) != 0 {
		t.Error("expected no reservation to be stored")
	}
	if len(f.slotRepo.slots) != 0 {
		t.Error("expected no slots to be claimed")
	}
}

func TestCreate_DuplicateDatesCollapse(t *testing.T) {
	f := newFixture(t)
	sameDay := day(0)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{
		sameDay.Add(3 * time.Hour),
		sameDay.Add(20 * time.Hour),
		sameDay,
	})

	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reservation.Dates) != 1 {
		t.Fatalf("expected duplicate dates to collapse to 1, got %d", len(reservation.Dates))
	}
	if !reservation.Dates[0].Equal(sameDay) {
		t.Errorf("expected normalized date %v, got %v", sameDay, reservation.Dates[0])
	}
}

func TestCreate_Blackout(t *testing.T) {
	f := newFixture(t)
	f.catalog.rooms[f.roomA].UnavailableDates = []time.Time{day(1)}

	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0), day(1)})

	err := f.service.Create(context.Background(), reservation)
	appErr := assertAppErrorCode(t, err, apperrors.CodeRoomUnavailable)

	if appErr.Details["room_id"] != f.roomA {
		t.Errorf("expected room %s in details, got %v", f.roomA, appErr.Details["room_id"])
	}
	if appErr.Details["date"] != model.DateKey(day(1)) {
		t.Errorf("expected date %s, got %v", model.DateKey(day(1)), appErr.Details["date"])
	}
	if len(f.slotRepo.slots) != 0 {
		t.Error("expected no slots to be claimed")
	}
}

func TestCreate_ConflictReportsFirstPairDeterministically(t *testing.T) {
	f := newFixture(t)

	// Existing reservation holds roomB on days 1 and 2.
	existing := f.newReservation([]string{f.roomB}, []time.Time{day(1), day(2)})
	if err := f.service.Create(context.Background(), existing); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// New request asks for roomA and roomB across days 0..2. The first
	// conflicting pair in request order is (roomB, day 1), even though
	// (roomB, day 2) also conflicts.
	conflicting := f.newReservation([]string{f.roomA, f.roomB}, []time.Time{day(2), day(0), day(1)})

	err := f.service.Create(context.Background(), conflicting)
	appErr := assertAppErrorCode(t, err, apperrors.CodeRoomUnavailable)

	if appErr.Details["room_id"] != f.roomB {
		t.Errorf("expected conflict on room %s, got %v", f.roomB, appErr.Details["room_id"])
	}
	if appErr.Details["date"] != model.DateKey(day(1)) {
		t.Errorf("expected conflict date %s, got %v", model.DateKey(day(1)), appErr.Details["date"])
	}

	// The loser must leave no partial claims behind.
	for id, owner := range f.slotRepo.slots {
		if owner == conflicting.ID {
			t.Errorf("slot %s still held by failed reservation", id)
		}
	}
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
			errs[i] = f.service.Create(context.Background(), reservation)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		appErr, ok := err.(*apperrors.AppError)
		if !ok {
			t.Fatalf("unexpected error type %T: %v", err, err)
		}
		if appErr.Code != apperrors.CodeRoomUnavailable {
			t.Errorf("expected ROOM_UNAVAILABLE for losers, got %s", appErr.Code)
		}
	}

	if successes != 1 {
		t.Fatalf("expected exactly 1 successful booking, got %d", successes)
	}
	if len(f.slotRepo.slots) != 1 {
		t.Errorf("expected exactly 1 claimed slot, got %d", len(f.slotRepo.slots))
	}
}

func TestCreate_LockContentionWithFreeCalendarProceeds(t *testing.T) {
	f := newFixture(t)
	lockID := model.SlotLockID(f.hotelID, f.roomA)
	f.lockRepo.locks[lockID] = struct{}{}

	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("expected booking to proceed past a held lock, got %v", err)
	}

	if len(f.slotRepo.slots) != 1 {
		t.Errorf("expected 1 claimed slot, got %d", len(f.slotRepo.slots))
	}
	if _, held := f.lockRepo.locks[lockID]; !held {
		t.Error("expected the foreign lock to stay held")
	}
}

func TestCreate_LockContentionReportsCommittedConflict(t *testing.T) {
	f := newFixture(t)
	existing := f.newReservation([]string{f.roomA}, []time.Time{day(1)})
	if err := f.service.Create(context.Background(), existing); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	f.lockRepo.locks[model.SlotLockID(f.hotelID, f.roomA)] = struct{}{}

	conflicting := f.newReservation([]string{f.roomA}, []time.Time{day(0), day(1)})
	err := f.service.Create(context.Background(), conflicting)
	appErr := assertAppErrorCode(t, err, apperrors.CodeRoomUnavailable)

	// The reported pair must come from the committed reservation, not
	// from the contended lock.
	if appErr.Details["room_id"] != f.roomA {
		t.Errorf("expected conflict on room %s, got %v", f.roomA, appErr.Details["room_id"])
	}
	if appErr.Details["date"] != model.DateKey(day(1)) {
		t.Errorf("expected conflict date %s, got %v", model.DateKey(day(1)), appErr.Details["date"])
	}
}

func TestCreate_DuplicateReference(t *testing.T) {
	f := newFixture(t)
	f.repo.createFunc = func(ctx context.Context, reservation *model.Reservation) error {
		return &reservationerrors.DuplicateReferenceError{Field: "pidx"}
	}

	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	reservation.Pidx = "pidx-abc-123"

	err := f.service.Create(context.Background(), reservation)
	appErr := assertAppErrorCode(t, err, apperrors.CodeDuplicateReference)

	if appErr.Details["field"] != "pidx" {
		t.Errorf("expected field pidx, got %v", appErr.Details["field"])
	}
}

func TestCreate_RoomFromAnotherHotel(t *testing.T) {
	f := newFixture(t)
	otherHotel := primitive.NewObjectID().Hex()
	f.catalog.rooms[f.roomB].HotelID = otherHotel

	reservation := f.newReservation([]string{f.roomA, f.roomB}, []time.Time{day(0)})

	err := f.service.Create(context.Background(), reservation)
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
}

func TestCreate_UnknownHotel(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	reservation.HotelID = primitive.NewObjectID().Hex()

	err := f.service.Create(context.Background(), reservation)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

// ────────────────────────────────────────────────
// Tests for lifecycle transitions
// ────────────────────────────────────────────────

func TestConfirm_FromPending(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	confirmed, err := f.service.Confirm(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", confirmed.Status)
	}
}

func TestConfirm_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Confirm(context.Background(), primitive.NewObjectID().Hex())
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestConfirm_AlreadyConfirmed(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.Confirm(context.Background(), reservation.ID); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err := f.service.Confirm(context.Background(), reservation.ID)
	appErr := assertAppErrorCode(t, err, apperrors.CodeInvalidTransition)
	if appErr.Details["current_status"] != string(model.StatusConfirmed) {
		t.Errorf("expected current_status CONFIRMED, got %v", appErr.Details["current_status"])
	}
}

func TestRequestCancellation_StampsTimestamp(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	updated, err := f.service.RequestCancellation(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelRequested {
		t.Errorf("expected CANCEL_REQUESTED, got %s", updated.Status)
	}
	if updated.CancellationRequestedAt == nil {
		t.Error("expected cancellation_requested_at to be set")
	}

	// Dates stay held while the request is pending.
	if len(f.slotRepo.slots) != 1 {
		t.Errorf("expected slot still held, got %d slots", len(f.slotRepo.slots))
	}
}

func TestCancel_FreesDatesImmediately(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cancelled, err := f.service.Cancel(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if len(f.slotRepo.slots) != 0 {
		t.Fatalf("expected slots released, got %d", len(f.slotRepo.slots))
	}

	// The same slot must be bookable again right away.
	rebooked := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), rebooked); err != nil {
		t.Fatalf("expected rebooking to succeed, got %v", err)
	}
}

func TestCancel_FromCancelRequested(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.RequestCancellation(context.Background(), reservation.ID); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cancelled, err := f.service.Cancel(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
}

func TestCancel_TerminalStateRejected(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.Cancel(context.Background(), reservation.ID); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err := f.service.Cancel(context.Background(), reservation.ID)
	appErr := assertAppErrorCode(t, err, apperrors.CodeInvalidTransition)
	if appErr.Details["current_status"] != string(model.StatusCancelled) {
		t.Errorf("expected current_status CANCELLED, got %v", appErr.Details["current_status"])
	}

	_, err = f.service.RequestCancellation(context.Background(), reservation.ID)
	assertAppErrorCode(t, err, apperrors.CodeInvalidTransition)

	_, err = f.service.Confirm(context.Background(), reservation.ID)
	assertAppErrorCode(t, err, apperrors.CodeInvalidTransition)
}

// ────────────────────────────────────────────────
// Tests for payment status
// ────────────────────────────────────────────────

func TestUpdatePaymentStatus_IndependentOfLifecycle(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.Cancel(context.Background(), reservation.ID); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// Payment can still settle on a cancelled reservation; the tracks
	// are independent.
	updated, err := f.service.UpdatePaymentStatus(context.Background(), reservation.ID, model.PaymentSuccess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PaymentStatus != model.PaymentSuccess {
		t.Errorf("expected SUCCESS, got %s", updated.PaymentStatus)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("expected lifecycle status untouched, got %s", updated.Status)
	}
}

func TestUpdatePaymentStatus_RegressionIgnored(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.UpdatePaymentStatus(context.Background(), reservation.ID, model.PaymentSuccess); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	updatesBefore := f.repo.paymentUpdates

	updated, err := f.service.UpdatePaymentStatus(context.Background(), reservation.ID, model.PaymentPending)
	if err != nil {
		t.Fatalf("expected regression to be a no-op, got %v", err)
	}
	if updated.PaymentStatus != model.PaymentSuccess {
		t.Errorf("expected SUCCESS preserved, got %s", updated.PaymentStatus)
	}
	if f.repo.paymentUpdates != updatesBefore {
		t.Error("expected no storage write for ignored regression")
	}
}

func TestUpdatePaymentStatus_StaleReadCannotRegressSettledPayment(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.UpdatePaymentStatus(context.Background(), reservation.ID, model.PaymentSuccess); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	updatesBefore := f.repo.paymentUpdates

	// First read serves a stale FAILED view, as if a SUCCESS callback
	// committed between this caller's read and its write.
	var reads int
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		stored, ok := f.repo.stored[id]
		if !ok {
			return nil, reservationerrors.ErrNotFound
		}
		copied := *stored
		reads++
		if reads == 1 {
			copied.PaymentStatus = model.PaymentFailed
		}
		return &copied, nil
	}

	updated, err := f.service.UpdatePaymentStatus(context.Background(), reservation.ID, model.PaymentPending)
	if err != nil {
		t.Fatalf("expected refused regression to be a no-op, got %v", err)
	}
	if updated.PaymentStatus != model.PaymentSuccess {
		t.Errorf("expected SUCCESS preserved, got %s", updated.PaymentStatus)
	}
	if f.repo.paymentUpdates != updatesBefore {
		t.Error("expected the conditional write to refuse the regression")
	}

	f.repo.findByIDFunc = nil
	stored, err := f.repo.FindByID(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.PaymentStatus != model.PaymentSuccess {
		t.Errorf("expected stored SUCCESS, got %s", stored.PaymentStatus)
	}
}

func TestUpdatePaymentStatus_SuccessToFailed(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := f.service.UpdatePaymentStatus(context.Background(), reservation.ID, model.PaymentSuccess); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// Chargebacks move a settled payment to FAILED.
	updated, err := f.service.UpdatePaymentStatus(context.Background(), reservation.ID, model.PaymentFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PaymentStatus != model.PaymentFailed {
		t.Errorf("expected FAILED, got %s", updated.PaymentStatus)
	}
}

func TestUpdatePaymentStatus_InvalidValue(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.UpdatePaymentStatus(context.Background(), primitive.NewObjectID().Hex(), model.PaymentStatus("SETTLED"))
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
}

// ────────────────────────────────────────────────
// Tests for reference lookups
// ────────────────────────────────────────────────

func TestGetByReference_RoundTrip(t *testing.T) {
	f := newFixture(t)
	reservation := f.newReservation([]string{f.roomA}, []time.Time{day(0)})
	reservation.TransactionID = "txn-0001"
	reservation.Pidx = "pidx-0001"
	if err := f.service.Create(context.Background(), reservation); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	byTxn, err := f.service.GetByTransactionID(context.Background(), "txn-0001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byTxn.ID != reservation.ID {
		t.Errorf("expected reservation %s, got %s", reservation.ID, byTxn.ID)
	}

	byPidx, err := f.service.GetByPidx(context.Background(), " pidx-0001 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byPidx.ID != reservation.ID {
		t.Errorf("expected reservation %s, got %s", reservation.ID, byPidx.ID)
	}
}

func TestGetByReference_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.GetByProductCode(context.Background(), "missing-code")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestGetByReference_Empty(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.GetByTransactionID(context.Background(), "   ")
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
}
