package model

import "time"

const (
	EventBookingStatusChanged   = "booking.status_changed"
	EventPassengerStatusChanged = "ride.passenger_status_changed"
	EventRideStatusChanged      = "ride.status_changed"
)

// StatusChangedEvent is published after a committed status transition.
type StatusChangedEvent struct {
	Type       string    `json:"type"`
	ResourceID string    `json:"resource_id"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id"`
	UserID     string    `json:"user_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}
