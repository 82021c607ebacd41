package service

import (
	"context"
	"errors"
	"fmt"
	"reservations/internal/bookings/conflict"
	bookingserrors "reservations/internal/bookings/errors"
	"reservations/internal/bookings/repository"
	"reservations/internal/bookings/validator"
	"reservations/internal/notifier"
	"reservations/internal/policy"
	"reservations/pkg/config"
	apperrors "reservations/pkg/errors"
	"reservations/pkg/lock"
	"reservations/pkg/model"
	"reservations/pkg/sanitizer"
	"reservations/pkg/validation"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// RoomFinder resolves the room a booking targets. Errors are returned to
// the caller unchanged, so implementations should return AppErrors.
// ClaimForBooking must write the room document so a booking transaction
// conflicts with a concurrent room delete.
type RoomFinder interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
	ClaimForBooking(ctx context.Context, id string) (*model.Room, error)
}

type BookingService interface {
	Create(ctx context.Context, actor model.Principal, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, actor model.Principal, id string) (*model.Booking, error)
	ListMine(ctx context.Context, actor model.Principal, limit int, offset int64) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, actor model.Principal, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
	Delete(ctx context.Context, actor model.Principal, id string) error
}

// transitions is the booking state machine. Statuses without an entry are
// terminal.
var transitions = map[string][]string{
	model.BookingPending:   {model.BookingConfirmed, model.BookingRejected, model.BookingCancelled},
	model.BookingConfirmed: {model.BookingCancelled, model.BookingCompleted},
}

func canTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type bookingService struct {
	repo      repository.BookingRepository
	rooms     RoomFinder
	checker   *conflict.Checker
	locker    lock.Locker
	notifier  notifier.Notifier
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	rooms RoomFinder,
	locker lock.Locker,
	notifier notifier.Notifier,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		rooms:     rooms,
		checker:   conflict.NewChecker(repo),
		locker:    locker,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, actor model.Principal, req *model.CreateBookingRequest) (*model.Booking, error) {
	if err := policy.Authorize(actor, policy.Target{}, policy.CreateBooking); err != nil {
		return nil, err
	}

	req.RoomID = sanitizer.SanitizeID(req.RoomID)
	req.Notes = sanitizer.SanitizeNotes(req.Notes)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "room_id", req.RoomID, "error", err)
		return nil, validation.ToAppError("Booking validation failed", err)
	}
	if _, err := conflict.ValidateInterval(req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if err := admit(room, req.Attendees); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		RoomID:      req.RoomID,
		RequesterID: actor.ID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Attendees:   req.Attendees,
		Status:      model.BookingPending,
		Notes:       req.Notes,
	}
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking record validation failed", "room_id", booking.RoomID, "requester_id", booking.RequesterID, "error", err)
		return nil, validation.ToAppError("Booking validation failed", err)
	}

	// Cheap rejection before queueing on the lock.
	if err := s.checkSlot(ctx, booking); err != nil {
		return nil, err
	}

	err = s.withSlotLock(ctx, booking.RoomID, booking.Date, func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			booking.ID = ""

			room, err := s.rooms.ClaimForBooking(sessCtx, booking.RoomID)
			if err != nil {
				return err
			}
			if err := admit(room, booking.Attendees); err != nil {
				return err
			}
			if err := s.checkSlot(sessCtx, booking); err != nil {
				return err
			}
			if err := s.repo.Create(sessCtx, booking); err != nil {
				s.cfg.Log.Error("Failed to create booking", "room_id", booking.RoomID, "error", err)
				return apperrors.Internal("Failed to create booking", err)
			}
			return nil
		})
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Booking transaction failed", "room_id", booking.RoomID, "error", err)
			return nil, apperrors.Internal("Failed to create booking", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"requester_id", booking.RequesterID,
		"date", booking.Date,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.notify(ctx, actor, booking, "")
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor model.Principal, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, s.targetOf(ctx, booking), policy.ViewBooking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListMine(ctx context.Context, actor model.Principal, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor.ID == "" {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByRequester(ctx, actor.ID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "requester_id", actor.ID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByRequester(ctx, actor.ID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"requester_id", actor.ID,
				"limit", limit,
				"offset", offset,
				"error", errFind,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// UpdateStatus moves a booking through the state machine. Reviewers (admins
// and the room manager) may apply any legal transition; the requester may
// only cancel. Confirming re-runs the conflict check under the slot lock,
// excluding the booking itself.
func (s *bookingService) UpdateStatus(ctx context.Context, actor model.Principal, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if actor.ID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	update.Notes = sanitizer.SanitizeNotes(update.Notes)
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking status update validation failed", "id", id, "error", err)
		return nil, validation.ToAppError("Invalid status update", err)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	target := s.targetOf(ctx, booking)
	if err := policy.Authorize(actor, target, policy.ReviewBooking); err != nil {
		if update.Status != model.BookingCancelled {
			s.cfg.Log.Warn("Booking status change denied", "id", id, "actor_id", actor.ID, "status", update.Status)
			return nil, err
		}
		if err := policy.Authorize(actor, target, policy.CancelOwnBooking); err != nil {
			s.cfg.Log.Warn("Booking cancellation denied", "id", id, "actor_id", actor.ID)
			return nil, err
		}
	}

	from := booking.Status
	if !canTransition(from, update.Status) {
		return nil, apperrors.InvalidTransition(from, update.Status).WithDetails(map[string]any{"booking_id": id})
	}

	change := repository.StatusChange{
		From:  from,
		To:    update.Status,
		Notes: update.Notes,
	}

	var updated *model.Booking
	apply := func(ctx context.Context) error {
		var err error
		updated, err = s.repo.UpdateStatus(ctx, id, change)
		if err != nil {
			return s.translate(err, id, "Failed to update booking status")
		}
		return nil
	}

	if update.Status == model.BookingConfirmed {
		change.ApproverID = actor.ID
		err = s.withSlotLock(ctx, booking.RoomID, booking.Date, func(ctx context.Context) error {
			if err := s.checkSlot(ctx, booking); err != nil {
				return err
			}
			return apply(ctx)
		})
	} else {
		err = apply(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"actor_id", actor.ID,
		"from", from,
		"to", updated.Status,
	)
	s.notify(ctx, actor, updated, from)
	return updated, nil
}

func (s *bookingService) Delete(ctx context.Context, actor model.Principal, id string) error {
	if err := policy.Authorize(actor, policy.Target{}, policy.DeleteBooking); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id, "Failed to delete booking")
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id, "actor_id", actor.ID)
	return nil
}

// --- Helpers ---

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

// targetOf resolves the booking's owner and its room's manager. A room that
// cannot be loaded contributes no manager.
func (s *bookingService) targetOf(ctx context.Context, booking *model.Booking) policy.Target {
	target := policy.Target{OwnerID: booking.RequesterID}
	room, err := s.rooms.GetByID(ctx, booking.RoomID)
	if err != nil {
		s.cfg.Log.Warn("Could not resolve room manager", "booking_id", booking.ID, "room_id", booking.RoomID, "error", err)
		return target
	}
	target.ManagerID = room.ManagedBy
	return target
}

// checkSlot fails with SlotUnavailable when booking's interval collides with
// another active booking on the same room and date.
func (s *bookingService) checkSlot(ctx context.Context, booking *model.Booking) error {
	existing, err := s.checker.FindConflict(ctx, booking.RoomID, booking.Date, booking.StartTime, booking.EndTime, booking.ID)
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Conflict check failed", "room_id", booking.RoomID, "date", booking.Date, "error", err)
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if existing != nil {
		return apperrors.SlotUnavailable(fmt.Sprintf(
			"Requested time overlaps with an existing booking (%s - %s)",
			existing.StartTime,
			existing.EndTime,
		)).WithDetails(map[string]any{
			"room_id":        booking.RoomID,
			"date":           booking.Date,
			"start_time":     booking.StartTime,
			"end_time":       booking.EndTime,
			"conflicting_id": existing.ID,
		})
	}
	return nil
}

// withSlotLock runs fn while holding the lock for the room's date. fn's
// context expires before the lease does.
func (s *bookingService) withSlotLock(ctx context.Context, roomID, date string, fn func(ctx context.Context) error) error {
	key := SlotKey(roomID, date)

	lease, err := s.locker.Acquire(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, lock.ErrLockBusy):
			s.cfg.Log.Warn("Slot lock busy", "key", key)
			return apperrors.SlotUnavailable("slot is being booked by another request").WithDetails(map[string]any{
				"room_id": roomID,
				"date":    date,
			})
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return apperrors.Timeout("Timed out waiting for the booking slot")
		default:
			s.cfg.Log.Error("Failed to acquire slot lock", "key", key, "error", err)
			return apperrors.Internal("Failed to acquire slot lock", err)
		}
	}
	defer func() {
		if releaseErr := lease.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "key", key, "error", releaseErr)
		}
	}()

	if budget := s.cfg.LockHoldBudget(); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	if err := fn(ctx); err != nil {
		if ctx.Err() != nil && (!apperrors.IsAppError(err) || apperrors.HasCode(err, apperrors.CodeInternal)) {
			s.cfg.Log.Warn("Slot lock hold budget exhausted", "key", key)
			return apperrors.Timeout("Booking took too long while holding the slot")
		}
		return err
	}
	return nil
}

// admit fails unless room accepts bookings of the given size.
func admit(room *model.Room, attendees int) error {
	if !room.Admits() {
		return apperrors.Validation("Room is not accepting bookings", map[string]any{
			"room_id":     room.ID,
			"is_bookable": room.IsBookable,
			"status":      room.Status,
		})
	}
	if attendees > room.Capacity {
		return apperrors.CapacityExceeded("Attendees exceed room capacity", map[string]any{
			"room_id":   room.ID,
			"attendees": attendees,
			"capacity":  room.Capacity,
		})
	}
	return nil
}

// SlotKey is the lock key serializing admission for one room and date.
func SlotKey(roomID, date string) string {
	return "room:" + roomID + ":" + date
}

func (s *bookingService) translate(err error, id string, msg string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	if errors.Is(err, bookingserrors.ErrStatusChanged) {
		return apperrors.Conflict("Booking status changed by another request, reload and retry").WithDetails(map[string]any{"booking_id": id})
	}
	s.cfg.Log.Error(msg, "id", id, "error", err)
	return apperrors.Internal(msg, err)
}

func (s *bookingService) notify(ctx context.Context, actor model.Principal, booking *model.Booking, from string) {
	s.notifier.Notify(ctx, model.StatusChangedEvent{
		Type:       model.EventBookingStatusChanged,
		ResourceID: booking.RoomID,
		EntityID:   booking.ID,
		ActorID:    actor.ID,
		UserID:     booking.RequesterID,
		From:       from,
		To:         booking.Status,
	})
}
