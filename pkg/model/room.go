package model

import "time"

const (
	RoomAvailable   = "available"
	RoomMaintenance = "maintenance"
	RoomUnavailable = "unavailable"
)

// Room is a single-occupancy resource: at most one active booking per
// interval on a given date.
type Room struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name       string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location   string    `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Capacity   int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=10000"`
	IsBookable bool      `json:"is_bookable" bson:"is_bookable"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=available maintenance unavailable"`
	ManagedBy  string    `json:"managed_by,omitempty" bson:"managed_by,omitempty" validate:"omitempty,max=128"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// Admits reports whether new bookings may be taken against the room.
func (r *Room) Admits() bool {
	return r.IsBookable && r.Status == RoomAvailable
}

type RoomUpdate struct {
	Name       string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location   *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Capacity   *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=10000"`
	IsBookable *bool   `json:"is_bookable,omitempty"`
	Status     string  `json:"status,omitempty" validate:"omitempty,oneof=available maintenance unavailable"`
	ManagedBy  *string `json:"managed_by,omitempty" validate:"omitempty,max=128"`
}

// CreateRoomRequest is the admin payload for a new room. IsBookable and
// Status default to true and available.
type CreateRoomRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Location   string `json:"location,omitempty" validate:"omitempty,max=200"`
	Capacity   int    `json:"capacity" validate:"required,min=1,max=10000"`
	IsBookable *bool  `json:"is_bookable,omitempty"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=available maintenance unavailable"`
	ManagedBy  string `json:"managed_by,omitempty" validate:"omitempty,max=128"`
}
