package service

import (
	"context"
	"errors"
	"reservations/internal/notifier"
	"reservations/internal/policy"
	rideserrors "reservations/internal/rides/errors"
	"reservations/internal/rides/ledger"
	"reservations/internal/rides/repository"
	"reservations/internal/rides/validator"
	"reservations/pkg/config"
	apperrors "reservations/pkg/errors"
	"reservations/pkg/model"
	"reservations/pkg/sanitizer"
	"reservations/pkg/validation"
	"slices"
	"sync"
	"time"
)

type RideService interface {
	Create(ctx context.Context, actor model.Principal, req *model.CreateRideRequest) (*model.Ride, error)
	GetByID(ctx context.Context, id string) (*model.Ride, error)
	GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Ride, int64, error)
	UpdateStatus(ctx context.Context, actor model.Principal, id string, update *model.RideStatusUpdate) (*model.Ride, error)
	Delete(ctx context.Context, actor model.Principal, id string) error
	Capacity(ctx context.Context, id string) (*ledger.Ledger, error)

	BookSeats(ctx context.Context, actor model.Principal, id string, req *model.BookSeatsRequest) (*model.PassengerBooking, error)
	ManageBooking(ctx context.Context, actor model.Principal, id string, passengerID string, update *model.PassengerStatusUpdate) (*model.Ride, error)
	CancelOwnBooking(ctx context.Context, actor model.Principal, id string) (*model.Ride, error)
}

var rideStatuses = []string{model.RideActive, model.RideFull, model.RideCompleted, model.RideCancelled}

type rideService struct {
	repo      repository.RideRepository
	notifier  notifier.Notifier
	validator *validator.RideValidator
	cfg       *config.Config
}

func NewRideService(
	repo repository.RideRepository,
	notifier notifier.Notifier,
	validator *validator.RideValidator,
	cfg *config.Config,
) RideService {
	return &rideService{
		repo:      repo,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *rideService) Create(ctx context.Context, actor model.Principal, req *model.CreateRideRequest) (*model.Ride, error) {
	if err := policy.Authorize(actor, policy.Target{}, policy.CreateRide); err != nil {
		return nil, err
	}

	req.Origin = sanitizer.SanitizeName(req.Origin)
	req.Destination = sanitizer.SanitizeName(req.Destination)
	req.Car = sanitizer.SanitizeName(req.Car)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Ride validation failed", "owner_id", actor.ID, "error", err)
		return nil, validation.ToAppError("Ride validation failed", err)
	}

	ride := &model.Ride{
		Type:           req.Type,
		OwnerID:        actor.ID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime.UTC(),
		AvailableSeats: req.AvailableSeats,
		SeatsNeeded:    req.SeatsNeeded,
		Car:            req.Car,
		Status:         model.RideActive,
		Passengers:     []model.PassengerBooking{},
	}

	if err := s.repo.Create(ctx, ride); err != nil {
		s.cfg.Log.Error("Failed to create ride", "owner_id", actor.ID, "error", err)
		return nil, apperrors.Internal("Failed to create ride", err)
	}

	s.cfg.Log.Info("Ride created successfully",
		"id", ride.ID,
		"type", ride.Type,
		"owner_id", ride.OwnerID,
		"available_seats", ride.AvailableSeats,
		"seats_needed", ride.SeatsNeeded,
	)
	return ride, nil
}

func (s *rideService) GetByID(ctx context.Context, id string) (*model.Ride, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Ride ID cannot be empty")
	}
	ride, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve ride")
	}
	return ride, nil
}

func (s *rideService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Ride, int64, error) {
	if status != "" && !slices.Contains(rideStatuses, status) {
		return nil, 0, apperrors.InvalidInput("Invalid ride status filter").WithDetails(map[string]any{
			"status":  status,
			"allowed": rideStatuses,
		})
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rides []*model.Ride
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rides", "status", status, "error", errCount)
			errCount = apperrors.Internal("Failed to count rides", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rides, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rides", "status", status, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rides", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rides, count, nil
}

// UpdateStatus lets the owner close a ride as completed or cancelled.
func (s *rideService) UpdateStatus(ctx context.Context, actor model.Principal, id string, update *model.RideStatusUpdate) (*model.Ride, error) {
	if err := s.validator.ValidateRideStatus(update); err != nil {
		return nil, validation.ToAppError("Invalid ride status", err)
	}

	var from string
	ride, err := s.mutate(ctx, id, func(ride *model.Ride) error {
		if err := policy.Authorize(actor, policy.Target{OwnerID: ride.OwnerID}, policy.ManageRide); err != nil {
			return err
		}
		if ride.IsClosed() {
			return apperrors.InvalidTransition(ride.Status, update.Status)
		}
		from = ride.Status
		ride.Status = update.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Ride status updated", "id", id, "from", from, "to", ride.Status)
	s.notifyRide(ctx, actor, ride, from)
	return ride, nil
}

func (s *rideService) Delete(ctx context.Context, actor model.Principal, id string) error {
	ride, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Target{OwnerID: ride.OwnerID}, policy.ManageRide); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id, "Failed to delete ride")
	}

	s.cfg.Log.Info("Ride deleted successfully", "id", id, "passengers", len(ride.Passengers))
	return nil
}

func (s *rideService) Capacity(ctx context.Context, id string) (*ledger.Ledger, error) {
	ride, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ride.IsOffer() {
		return nil, apperrors.InvalidInput("Only ride offers have seat capacity")
	}
	l := ledger.Compute(ride)
	return &l, nil
}

// BookSeats appends a pending passenger entry for the caller. Capacity is
// checked against confirmed seats only; pending claims do not hold seats.
func (s *rideService) BookSeats(ctx context.Context, actor model.Principal, id string, req *model.BookSeatsRequest) (*model.PassengerBooking, error) {
	if err := policy.Authorize(actor, policy.Target{}, policy.BookSeats); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateBookSeats(req); err != nil {
		return nil, validation.ToAppError("Invalid seat count", err)
	}

	var booked model.PassengerBooking
	_, err := s.mutate(ctx, id, func(ride *model.Ride) error {
		if !ride.IsOffer() {
			return apperrors.InvalidInput("Seats can only be booked on ride offers")
		}
		if ride.Status != model.RideActive {
			return apperrors.InvalidInput("Ride is not accepting bookings").WithDetails(map[string]any{"status": ride.Status})
		}
		if ride.OwnerID == actor.ID {
			return apperrors.InvalidInput("Ride owners cannot book their own ride")
		}

		idx := ride.Passenger(actor.ID)
		if idx >= 0 && ride.Passengers[idx].BookingStatus != model.PassengerCancelled {
			return apperrors.InvalidInput("Seats already booked on this ride, cancel first to rebook").WithDetails(map[string]any{
				"booking_status": ride.Passengers[idx].BookingStatus,
			})
		}
		if !ledger.Fits(ride, actor.ID, req.Seats) {
			return capacityExceeded(ride, actor.ID, req.Seats)
		}

		booked = model.PassengerBooking{
			UserID:        actor.ID,
			SeatsBooked:   req.Seats,
			BookingStatus: model.PassengerPending,
			BookedAt:      time.Now().UTC().Truncate(time.Millisecond),
		}
		if idx >= 0 {
			ride.Passengers[idx] = booked
		} else {
			ride.Passengers = append(ride.Passengers, booked)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Seats booked", "ride_id", id, "user_id", actor.ID, "seats", req.Seats)
	s.notifier.Notify(ctx, model.StatusChangedEvent{
		Type:       model.EventPassengerStatusChanged,
		ResourceID: id,
		EntityID:   actor.ID,
		ActorID:    actor.ID,
		UserID:     actor.ID,
		To:         model.PassengerPending,
	})
	return &booked, nil
}

// ManageBooking lets the owner confirm or cancel a passenger. Confirming
// re-checks capacity without the passenger's own prior seats, so
// re-confirming an already confirmed passenger never fails on capacity.
func (s *rideService) ManageBooking(ctx context.Context, actor model.Principal, id string, passengerID string, update *model.PassengerStatusUpdate) (*model.Ride, error) {
	if err := s.validator.ValidatePassengerStatus(update); err != nil {
		return nil, validation.ToAppError("Invalid passenger status", err)
	}

	var from, rideFrom string
	ride, err := s.mutate(ctx, id, func(ride *model.Ride) error {
		if err := policy.Authorize(actor, policy.Target{OwnerID: ride.OwnerID}, policy.ManageRideBooking); err != nil {
			return err
		}
		if !ride.IsOffer() {
			return apperrors.InvalidInput("Only ride offers have passengers")
		}
		if ride.IsClosed() {
			return apperrors.InvalidInput("Ride is closed").WithDetails(map[string]any{"status": ride.Status})
		}

		idx := ride.Passenger(passengerID)
		if idx < 0 {
			return apperrors.NotFoundWithID("Passenger booking", passengerID)
		}
		p := &ride.Passengers[idx]
		from, rideFrom = p.BookingStatus, ride.Status

		switch update.Status {
		case model.PassengerConfirmed:
			if p.BookingStatus == model.PassengerCancelled {
				return apperrors.InvalidTransition(p.BookingStatus, update.Status)
			}
			if !ledger.Fits(ride, passengerID, p.SeatsBooked) {
				return capacityExceeded(ride, passengerID, p.SeatsBooked)
			}
		case model.PassengerCancelled:
			if p.BookingStatus == model.PassengerCancelled {
				return apperrors.InvalidTransition(p.BookingStatus, update.Status)
			}
		}
		p.BookingStatus = update.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Passenger booking updated",
		"ride_id", id,
		"passenger_id", passengerID,
		"from", from,
		"to", update.Status,
		"ride_status", ride.Status,
	)
	s.notifier.Notify(ctx, model.StatusChangedEvent{
		Type:       model.EventPassengerStatusChanged,
		ResourceID: id,
		EntityID:   passengerID,
		ActorID:    actor.ID,
		UserID:     passengerID,
		From:       from,
		To:         update.Status,
	})
	s.notifyRide(ctx, actor, ride, rideFrom)
	return ride, nil
}

// CancelOwnBooking removes the caller's passenger entry.
func (s *rideService) CancelOwnBooking(ctx context.Context, actor model.Principal, id string) (*model.Ride, error) {
	if err := policy.Authorize(actor, policy.Target{}, policy.CancelOwnSeat); err != nil {
		return nil, err
	}

	var from, rideFrom string
	ride, err := s.mutate(ctx, id, func(ride *model.Ride) error {
		if ride.IsClosed() {
			return apperrors.InvalidInput("Ride is closed").WithDetails(map[string]any{"status": ride.Status})
		}
		idx := ride.Passenger(actor.ID)
		if idx < 0 {
			return apperrors.NotFound("Ride booking")
		}
		from, rideFrom = ride.Passengers[idx].BookingStatus, ride.Status
		if from != model.PassengerPending && from != model.PassengerConfirmed {
			return apperrors.InvalidTransition(from, model.PassengerCancelled)
		}
		ride.Passengers = slices.Delete(ride.Passengers, idx, idx+1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Passenger cancelled own booking", "ride_id", id, "user_id", actor.ID, "from", from)
	s.notifier.Notify(ctx, model.StatusChangedEvent{
		Type:       model.EventPassengerStatusChanged,
		ResourceID: id,
		EntityID:   actor.ID,
		ActorID:    actor.ID,
		UserID:     actor.ID,
		From:       from,
		To:         model.PassengerCancelled,
	})
	s.notifyRide(ctx, actor, ride, rideFrom)
	return ride, nil
}

// --- Helpers ---

// mutate loads the ride, applies fn, recomputes the derived status and
// writes it back conditioned on the version that was read. A lost race is
// retried against a fresh read so fn always validates current state.
func (s *rideService) mutate(ctx context.Context, id string, fn func(ride *model.Ride) error) (*model.Ride, error) {
	attempts := max(1, s.cfg.RideMaxWriteAttempts)

	for attempt := 1; attempt <= attempts; attempt++ {
		ride, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(ride); err != nil {
			return nil, err
		}
		if ride.IsOffer() {
			ledger.Recompute(ride)
		}

		err = s.repo.UpdateIfVersion(ctx, ride)
		if err == nil {
			return ride, nil
		}
		if !errors.Is(err, rideserrors.ErrVersionConflict) {
			return nil, s.translate(err, id, "Failed to update ride")
		}
		s.cfg.Log.Debug("Ride version conflict, retrying", "id", id, "attempt", attempt, "version", ride.Version)
	}

	s.cfg.Log.Warn("Ride write attempts exhausted", "id", id, "attempts", attempts)
	return nil, apperrors.Conflict("Ride is being modified by other requests, please retry").WithDetails(map[string]any{"ride_id": id})
}

func capacityExceeded(ride *model.Ride, userID string, seats int) error {
	confirmed := ledger.ConfirmedSeats(ride.Passengers, userID)
	return apperrors.CapacityExceeded("Not enough seats available", map[string]any{
		"ride_id":         ride.ID,
		"requested":       seats,
		"confirmed_seats": confirmed,
		"available_seats": ride.AvailableSeats,
		"remaining_seats": max(0, ride.AvailableSeats-confirmed),
	})
}

func (s *rideService) translate(err error, id string, msg string) error {
	if errors.Is(err, rideserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Ride", id)
	}
	if errors.Is(err, rideserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid ride ID format")
	}
	s.cfg.Log.Error(msg, "id", id, "error", err)
	return apperrors.Internal(msg, err)
}

// notifyRide emits a ride status event when the status moved away from from.
func (s *rideService) notifyRide(ctx context.Context, actor model.Principal, ride *model.Ride, from string) {
	if from == "" || from == ride.Status {
		return
	}
	s.notifier.Notify(ctx, model.StatusChangedEvent{
		Type:       model.EventRideStatusChanged,
		ResourceID: ride.ID,
		EntityID:   ride.ID,
		ActorID:    actor.ID,
		UserID:     ride.OwnerID,
		From:       from,
		To:         ride.Status,
	})
}
