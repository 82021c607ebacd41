package service

import (
	"context"
	"errors"
	"reservations/internal/bookings/conflict"
	"reservations/internal/policy"
	roomserrors "reservations/internal/rooms/errors"
	"reservations/internal/rooms/repository"
	"reservations/internal/rooms/validator"
	"reservations/pkg/config"
	apperrors "reservations/pkg/errors"
	"reservations/pkg/model"
	"reservations/pkg/sanitizer"
	"reservations/pkg/validation"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingStore is the part of the booking repository the registry needs:
// reading a day's active bookings and purging a deleted room's bookings.
type BookingStore interface {
	conflict.BookingSource
	DeleteByRoom(ctx context.Context, roomID string) (int64, error)
}

type RoomService interface {
	Create(ctx context.Context, actor model.Principal, req *model.CreateRoomRequest) (*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	ClaimForBooking(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, actor model.Principal, id string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, actor model.Principal, id string) error
	Availability(ctx context.Context, id string, date string) ([]*model.Booking, error)
}

type roomService struct {
	repo      repository.RoomRepository
	bookings  BookingStore
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	bookings BookingStore,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, actor model.Principal, req *model.CreateRoomRequest) (*model.Room, error) {
	if err := policy.Authorize(actor, policy.Target{}, policy.CreateRoom); err != nil {
		return nil, err
	}

	req.Name = sanitizer.SanitizeName(req.Name)
	req.Location = sanitizer.SanitizeName(req.Location)
	req.ManagedBy = sanitizer.SanitizeID(req.ManagedBy)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Room validation failed", "name", req.Name, "error", err)
		return nil, validation.ToAppError("Room validation failed", err)
	}

	room := &model.Room{
		Name:       req.Name,
		Location:   req.Location,
		Capacity:   req.Capacity,
		IsBookable: true,
		Status:     model.RoomAvailable,
		ManagedBy:  req.ManagedBy,
	}
	if req.IsBookable != nil {
		room.IsBookable = *req.IsBookable
	}
	if req.Status != "" {
		room.Status = req.Status
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "name", room.Name, "error", err)
		return nil, apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "name", room.Name, "capacity", room.Capacity)
	return room, nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve room")
	}
	return room, nil
}

// ClaimForBooking loads the room through a write on its document, so a
// booking transaction using it aborts if the room is deleted concurrently.
func (s *roomService) ClaimForBooking(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.Claim(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to claim room")
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, actor model.Principal, id string, updates *model.RoomUpdate) (*model.Room, error) {
	if err := policy.Authorize(actor, policy.Target{}, policy.UpdateRoom); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to check room existence")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid update input", err)
	}

	merged := mergeRoomUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Room validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Room validation failed", err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.translate(err, id, "Failed to update room")
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "status", merged.Status, "is_bookable", merged.IsBookable)
	return merged, nil
}

// Delete removes the room and every booking that references it in one
// transaction, so no booking outlives its room.
func (s *roomService) Delete(ctx context.Context, actor model.Principal, id string) error {
	if err := policy.Authorize(actor, policy.Target{}, policy.DeleteRoom); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	var purged int64
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return s.translate(err, id, "Failed to delete room")
		}
		n, err := s.bookings.DeleteByRoom(sessCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to delete room bookings", err)
		}
		purged = n
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.Internal("Failed to delete room", err)
		}
		s.cfg.Log.Error("Failed to delete room", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id, "bookings_deleted", purged)
	return nil
}

// Availability lists the bookings currently holding slots on date.
func (s *roomService) Availability(ctx context.Context, id string, date string) ([]*model.Booking, error) {
	if _, err := conflict.ValidateInterval(date, "00:00", "23:59"); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindActiveByRoomAndDate(ctx, id, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load room availability", "id", id, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load room availability", err)
	}

	s.cfg.Log.Debug("Room availability loaded", "id", id, "date", date, "count", len(bookings))
	return bookings, nil
}

func (s *roomService) translate(err error, id string, msg string) error {
	if errors.Is(err, roomserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Room", id)
	}
	if errors.Is(err, roomserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid room ID format")
	}
	s.cfg.Log.Error(msg, "id", id, "error", err)
	return apperrors.Internal(msg, err)
}

func mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.SanitizeName(updates.Name)
	}
	if updates.Location != nil {
		merged.Location = sanitizer.SanitizeName(*updates.Location)
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.IsBookable != nil {
		merged.IsBookable = *updates.IsBookable
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.ManagedBy != nil {
		merged.ManagedBy = sanitizer.SanitizeID(*updates.ManagedBy)
	}

	return &merged
}

