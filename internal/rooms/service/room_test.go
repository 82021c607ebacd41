package service

import (
	"context"
	"errors"
	"net/http"
	roomserrors "reservations/internal/rooms/errors"
	"reservations/internal/rooms/validator"
	"reservations/pkg/config"
	mongotx "reservations/pkg/db/mongo"
	apperrors "reservations/pkg/errors"
	"reservations/pkg/logger"
	"reservations/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mock repositories
// ────────────────────────────────────────────────

type mockRoomRepository struct {
	rooms       map[string]*model.Room
	deleteFunc  func(ctx context.Context, id string) error
	txCommitted bool
}

func newMockRoomRepository(rooms ...*model.Room) *mockRoomRepository {
	m := &mockRoomRepository{rooms: map[string]*model.Room{}}
	for _, r := range rooms {
		m.rooms[r.ID] = r
	}
	return m
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	room.ID = "65f1c2a9e4b0a1b2c3d4e5f6"
	m.rooms[room.ID] = room
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	var out []*model.Room
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.rooms)), nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	if _, ok := m.rooms[id]; !ok {
		return roomserrors.ErrNotFound
	}
	m.rooms[id] = room
	return nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	if _, ok := m.rooms[id]; !ok {
		return roomserrors.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepository) Claim(ctx context.Context, id string) (*model.Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	r.UpdatedAt = time.Now().UTC()
	cp := *r
	return &cp, nil
}

func (m *mockRoomRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	err := fn(mongo.NewSessionContext(ctx, nil))
	m.txCommitted = err == nil
	return err
}

type mockBookingStore struct {
	bookings  []*model.Booking
	deleteErr error
}

func (m *mockBookingStore) FindActiveByRoomAndDate(ctx context.Context, roomID, date string) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.Date == date && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingStore) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.bookings[:0]
	var n int64
	for _, b := range m.bookings {
		if b.RoomID == roomID {
			n++
			continue
		}
		kept = append(kept, b)
	}
	m.bookings = kept
	return n, nil
}

func newTestService(repo *mockRoomRepository, store *mockBookingStore) RoomService {
	log := logger.NewNop()
	cfg := &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
	return NewRoomService(repo, store, validator.NewRoomValidator(log), cfg)
}

var (
	admin = model.Principal{ID: "admin-1", Role: model.RoleAdmin}
	user  = model.Principal{ID: "user-1", Role: model.RoleUser}
)

const roomID = "65f1c2a9e4b0a1b2c3d4e5f6"

func statusOf(err error) int {
	return apperrors.AsAppError(err).StatusCode()
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestCreate_DefaultsAndSanitizes(t *testing.T) {
	svc := newTestService(newMockRoomRepository(), &mockBookingStore{})

	room, err := svc.Create(context.Background(), admin, &model.CreateRoomRequest{
		Name:     "  Board    Room ",
		Capacity: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.Name != "Board Room" {
		t.Errorf("expected sanitized name, got %q", room.Name)
	}
	if !room.IsBookable || room.Status != model.RoomAvailable {
		t.Errorf("expected bookable/available defaults, got %v/%s", room.IsBookable, room.Status)
	}
}

func TestCreate_NonAdminForbidden(t *testing.T) {
	repo := newMockRoomRepository()
	svc := newTestService(repo, &mockBookingStore{})

	_, err := svc.Create(context.Background(), user, &model.CreateRoomRequest{Name: "Board Room", Capacity: 10})
	if statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if len(repo.rooms) != 0 {
		t.Error("room must not be created")
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(newMockRoomRepository(), &mockBookingStore{})

	_, err := svc.Create(context.Background(), admin, &model.CreateRoomRequest{Name: "B", Capacity: 0})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := apperrors.AsAppError(err).Details
	if _, ok := details["capacity"]; !ok {
		t.Errorf("expected capacity in details, got %v", details)
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	repo := newMockRoomRepository(&model.Room{ID: roomID, Name: "Board Room", Capacity: 10, IsBookable: true, Status: model.RoomAvailable})
	svc := newTestService(repo, &mockBookingStore{})

	off := false
	room, err := svc.Update(context.Background(), admin, roomID, &model.RoomUpdate{IsBookable: &off, Status: model.RoomMaintenance})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.IsBookable || room.Status != model.RoomMaintenance || room.Name != "Board Room" {
		t.Errorf("unexpected merge result: %+v", room)
	}
	if room.Admits() {
		t.Error("room under maintenance must not admit bookings")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newMockRoomRepository(), &mockBookingStore{})

	_, err := svc.Update(context.Background(), admin, roomID, &model.RoomUpdate{Name: "New Name"})
	if statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestDelete_CascadesBookings(t *testing.T) {
	repo := newMockRoomRepository(&model.Room{ID: roomID, Name: "Board Room", Capacity: 10})
	store := &mockBookingStore{bookings: []*model.Booking{
		{ID: "b1", RoomID: roomID, Status: model.BookingConfirmed},
		{ID: "b2", RoomID: roomID, Status: model.BookingCancelled},
		{ID: "b3", RoomID: "other", Status: model.BookingPending},
	}}
	svc := newTestService(repo, store)

	if err := svc.Delete(context.Background(), admin, roomID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.bookings) != 1 || store.bookings[0].ID != "b3" {
		t.Errorf("expected only the other room's booking to remain, got %d", len(store.bookings))
	}
	if !repo.txCommitted {
		t.Error("expected delete to run in a transaction")
	}
}

func TestDelete_BookingPurgeFailureAbortsTransaction(t *testing.T) {
	repo := newMockRoomRepository(&model.Room{ID: roomID, Name: "Board Room", Capacity: 10})
	store := &mockBookingStore{deleteErr: errors.New("write conflict")}
	svc := newTestService(repo, store)

	err := svc.Delete(context.Background(), admin, roomID)
	if statusOf(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	if repo.txCommitted {
		t.Error("transaction must not commit when the cascade fails")
	}
}

func TestDelete_RequiresAdmin(t *testing.T) {
	repo := newMockRoomRepository(&model.Room{ID: roomID, Name: "Board Room", Capacity: 10})
	svc := newTestService(repo, &mockBookingStore{})

	if err := svc.Delete(context.Background(), user, roomID); statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if _, ok := repo.rooms[roomID]; !ok {
		t.Error("room must survive an unauthorized delete")
	}
}

func TestAvailability(t *testing.T) {
	repo := newMockRoomRepository(&model.Room{ID: roomID, Name: "Board Room", Capacity: 10})
	store := &mockBookingStore{bookings: []*model.Booking{
		{ID: "b1", RoomID: roomID, Date: "2024-03-01", Status: model.BookingConfirmed},
		{ID: "b2", RoomID: roomID, Date: "2024-03-01", Status: model.BookingRejected},
		{ID: "b3", RoomID: roomID, Date: "2024-03-02", Status: model.BookingPending},
	}}
	svc := newTestService(repo, store)

	bookings, err := svc.Availability(context.Background(), roomID, "2024-03-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != "b1" {
		t.Errorf("expected only the active booking on that date, got %v", bookings)
	}

	if _, err := svc.Availability(context.Background(), roomID, "03/01/2024"); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error for bad date, got %v", err)
	}
}

func TestClaimForBooking(t *testing.T) {
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMockRoomRepository(&model.Room{ID: roomID, Name: "Board Room", Capacity: 10, UpdatedAt: stale})
	svc := newTestService(repo, &mockBookingStore{})

	room, err := svc.ClaimForBooking(context.Background(), roomID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !room.UpdatedAt.After(stale) {
		t.Errorf("expected claim to write updated_at, got %v", room.UpdatedAt)
	}

	delete(repo.rooms, roomID)
	if _, err := svc.ClaimForBooking(context.Background(), roomID); statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404 for a deleted room, got %v", err)
	}
	if _, err := svc.ClaimForBooking(context.Background(), ""); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for an empty id, got %v", err)
	}
}
