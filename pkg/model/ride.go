package model

import "time"

const (
	RideTypeOffer   = "offer"
	RideTypeRequest = "request"

	RideActive    = "active"
	RideFull      = "full"
	RideCompleted = "completed"
	RideCancelled = "cancelled"

	PassengerPending   = "pending"
	PassengerConfirmed = "confirmed"
	PassengerCancelled = "cancelled"
)

// Ride is either an offer (seats for passengers) or a request (a user
// looking for seats). Only offers carry bookable seats and passengers.
type Ride struct {
	ID             string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Type           string             `json:"type" bson:"type" validate:"required,oneof=offer request"`
	OwnerID        string             `json:"owner_id" bson:"owner_id" validate:"required,max=128"`
	Origin         string             `json:"origin" bson:"origin" validate:"required,min=2,max=200"`
	Destination    string             `json:"destination" bson:"destination" validate:"required,min=2,max=200"`
	DepartureTime  time.Time          `json:"departure_time" bson:"departure_time" validate:"required"`
	AvailableSeats int                `json:"available_seats,omitempty" bson:"available_seats,omitempty" validate:"omitempty,min=1,max=100"`
	SeatsNeeded    int                `json:"seats_needed,omitempty" bson:"seats_needed,omitempty" validate:"omitempty,min=1,max=100"`
	Car            string             `json:"car,omitempty" bson:"car,omitempty" validate:"omitempty,max=200"`
	Status         string             `json:"status" bson:"status" validate:"required,oneof=active full completed cancelled"`
	Passengers     []PassengerBooking `json:"passengers" bson:"passengers"`
	Version        int64              `json:"version" bson:"version"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// PassengerBooking is a seat claim embedded in a ride offer.
type PassengerBooking struct {
	UserID        string    `json:"user_id" bson:"user_id"`
	SeatsBooked   int       `json:"seats_booked" bson:"seats_booked"`
	BookingStatus string    `json:"booking_status" bson:"booking_status"`
	BookedAt      time.Time `json:"booked_at" bson:"booked_at"`
}

// Passenger returns the index of userID's booking, or -1.
func (r *Ride) Passenger(userID string) int {
	for i := range r.Passengers {
		if r.Passengers[i].UserID == userID {
			return i
		}
	}
	return -1
}

type BookSeatsRequest struct {
	Seats int `json:"seats" validate:"required,min=1,max=100"`
}

type PassengerStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}

type RideStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

// CreateRideRequest is the client payload for a new ride. Offers carry
// AvailableSeats; requests carry SeatsNeeded. The owner is the caller.
type CreateRideRequest struct {
	Type           string    `json:"type" validate:"required,oneof=offer request"`
	Origin         string    `json:"origin" validate:"required,min=2,max=200"`
	Destination    string    `json:"destination" validate:"required,min=2,max=200"`
	DepartureTime  time.Time `json:"departure_time" validate:"required"`
	AvailableSeats int       `json:"available_seats,omitempty" validate:"omitempty,min=1,max=100"`
	SeatsNeeded    int       `json:"seats_needed,omitempty" validate:"omitempty,min=1,max=100"`
	Car            string    `json:"car,omitempty" validate:"omitempty,max=200"`
}

// IsOffer reports whether the ride carries bookable seats.
func (r *Ride) IsOffer() bool {
	return r.Type == RideTypeOffer
}

// IsClosed reports whether the ride reached a terminal status.
func (r *Ride) IsClosed() bool {
	return r.Status == RideCompleted || r.Status == RideCancelled
}
