package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
	BookingRejected  = "rejected"
)

// ActiveBookingStatuses are the statuses that hold a slot.
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed}

// Booking is a time-bounded claim on a room. Date is YYYY-MM-DD and the
// interval [StartTime, EndTime) is expressed as HH:MM on that date.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID      string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	RequesterID string    `json:"requester_id" bson:"requester_id" validate:"required,max=128"`
	Date        string    `json:"date" bson:"date" validate:"required,calendar_date"`
	StartTime   string    `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime     string    `json:"end_time" bson:"end_time" validate:"required,clock"`
	Attendees   int       `json:"attendees,omitempty" bson:"attendees,omitempty" validate:"omitempty,min=1"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed rejected"`
	ApproverID  string    `json:"approver_id,omitempty" bson:"approver_id,omitempty"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// IsActive reports whether the booking currently holds its slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// CreateBookingRequest is the client payload for a new room booking.
// The requester always comes from the authenticated principal.
type CreateBookingRequest struct {
	RoomID    string `json:"room_id" validate:"required,mongodb"`
	Date      string `json:"date" validate:"required,calendar_date"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Attendees int    `json:"attendees,omitempty" validate:"omitempty,min=1"`
	Notes     string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type BookingStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed rejected"`
	Notes  string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
