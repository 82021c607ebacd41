// Package ledger derives seat consumption for a ride offer from its
// passenger list. Nothing here is stored; every figure is recomputed.
package ledger

import "reservations/pkg/model"

type Ledger struct {
	AvailableSeats int    `json:"available_seats"`
	ConfirmedSeats int    `json:"confirmed_seats"`
	PendingSeats   int    `json:"pending_seats"`
	RemainingSeats int    `json:"remaining_seats"`
	Status         string `json:"status"`
}

func Compute(ride *model.Ride) Ledger {
	confirmed := ConfirmedSeats(ride.Passengers, "")
	pending := 0
	for _, p := range ride.Passengers {
		if p.BookingStatus == model.PassengerPending {
			pending += p.SeatsBooked
		}
	}

	return Ledger{
		AvailableSeats: ride.AvailableSeats,
		ConfirmedSeats: confirmed,
		PendingSeats:   pending,
		RemainingSeats: max(0, ride.AvailableSeats-confirmed),
		Status:         DeriveStatus(ride.Status, confirmed, ride.AvailableSeats),
	}
}

// ConfirmedSeats sums seats of confirmed passengers, skipping excludeUserID
// when it is non-empty.
func ConfirmedSeats(passengers []model.PassengerBooking, excludeUserID string) int {
	total := 0
	for _, p := range passengers {
		if excludeUserID != "" && p.UserID == excludeUserID {
			continue
		}
		if p.BookingStatus == model.PassengerConfirmed {
			total += p.SeatsBooked
		}
	}
	return total
}

// Fits reports whether seats more confirmed seats fit, not counting
// excludeUserID's current contribution.
func Fits(ride *model.Ride, excludeUserID string, seats int) bool {
	return ConfirmedSeats(ride.Passengers, excludeUserID)+seats <= ride.AvailableSeats
}

// DeriveStatus maps a confirmed-seat total to active or full. Terminal
// statuses are never changed by seat movement.
func DeriveStatus(current string, confirmed, available int) string {
	switch current {
	case model.RideCompleted, model.RideCancelled:
		return current
	}
	if confirmed >= available {
		return model.RideFull
	}
	return model.RideActive
}

// Recompute writes the derived status back onto ride.
func Recompute(ride *model.Ride) {
	ride.Status = DeriveStatus(ride.Status, ConfirmedSeats(ride.Passengers, ""), ride.AvailableSeats)
}
