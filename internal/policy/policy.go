// Package policy holds every role and ownership rule. Services call
// Authorize before touching state and never inspect roles themselves.
package policy

import (
	"fmt"
	apperrors "reservations/pkg/errors"
	"reservations/pkg/model"
)

type Action string

const (
	CreateRoom Action = "room:create"
	UpdateRoom Action = "room:update"
	DeleteRoom Action = "room:delete"

	CreateBooking    Action = "booking:create"
	ViewBooking      Action = "booking:view"
	CancelOwnBooking Action = "booking:cancel_own"
	ReviewBooking    Action = "booking:review"
	DeleteBooking    Action = "booking:delete"

	CreateRide        Action = "ride:create"
	ManageRide        Action = "ride:manage"
	ManageRideBooking Action = "ride:manage_booking"
	BookSeats         Action = "ride:book_seats"
	CancelOwnSeat     Action = "ride:cancel_own_seat"
)

// Target describes the relations of the entity being acted on. OwnerID is
// the booking requester or ride owner; ManagerID is the room manager.
type Target struct {
	OwnerID   string
	ManagerID string
}

// Authorize returns nil when actor may perform action on target. An empty
// actor id is unauthenticated (401); any other denial is 403.
func Authorize(actor model.Principal, target Target, action Action) error {
	if actor.ID == "" {
		return apperrors.Unauthorized("Authentication required")
	}

	owner := target.OwnerID != "" && actor.ID == target.OwnerID
	manager := target.ManagerID != "" && actor.ID == target.ManagerID

	var allowed bool
	switch action {
	case CreateBooking, CreateRide, BookSeats, CancelOwnSeat:
		allowed = true
	case CreateRoom, UpdateRoom, DeleteRoom, DeleteBooking:
		allowed = actor.IsAdmin()
	case ViewBooking:
		allowed = owner || manager || actor.IsAdmin()
	case CancelOwnBooking:
		allowed = owner
	case ReviewBooking:
		allowed = manager || actor.IsAdmin()
	case ManageRide, ManageRideBooking:
		allowed = owner
	default:
		return apperrors.Internal(fmt.Sprintf("unknown action %q", action), nil)
	}

	if !allowed {
		return apperrors.Forbidden("Not authorized to perform this action").WithDetails(map[string]any{
			"action":   string(action),
			"actor_id": actor.ID,
		})
	}
	return nil
}
