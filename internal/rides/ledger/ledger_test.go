package ledger

import (
	"reservations/pkg/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func passenger(id string, seats int, status string) model.PassengerBooking {
	return model.PassengerBooking{UserID: id, SeatsBooked: seats, BookingStatus: status}
}

func TestCompute(t *testing.T) {
	ride := &model.Ride{
		Type:           model.RideTypeOffer,
		AvailableSeats: 4,
		Status:         model.RideActive,
		Passengers: []model.PassengerBooking{
			passenger("a", 2, model.PassengerConfirmed),
			passenger("b", 1, model.PassengerPending),
			passenger("c", 3, model.PassengerCancelled),
		},
	}

	l := Compute(ride)
	assert.Equal(t, 4, l.AvailableSeats)
	assert.Equal(t, 2, l.ConfirmedSeats)
	assert.Equal(t, 1, l.PendingSeats)
	assert.Equal(t, 2, l.RemainingSeats)
	assert.Equal(t, model.RideActive, l.Status)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		confirmed int
		available int
		want      string
	}{
		{"active with room", model.RideActive, 1, 3, model.RideActive},
		{"reaches capacity", model.RideActive, 3, 3, model.RideFull},
		{"full frees a seat", model.RideFull, 2, 3, model.RideActive},
		{"completed untouched", model.RideCompleted, 0, 3, model.RideCompleted},
		{"cancelled untouched", model.RideCancelled, 3, 3, model.RideCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.current, tt.confirmed, tt.available))
		})
	}
}

func TestFits_TwoPlusTwoExceedsThree(t *testing.T) {
	ride := &model.Ride{
		AvailableSeats: 3,
		Passengers:     []model.PassengerBooking{passenger("a", 2, model.PassengerConfirmed)},
	}

	assert.False(t, Fits(ride, "", 2))
	assert.True(t, Fits(ride, "", 1))
}

func TestFits_ReconfirmExcludesOwnSeats(t *testing.T) {
	ride := &model.Ride{
		AvailableSeats: 3,
		Passengers: []model.PassengerBooking{
			passenger("a", 2, model.PassengerConfirmed),
			passenger("b", 1, model.PassengerConfirmed),
		},
	}

	assert.True(t, Fits(ride, "a", 2), "re-confirming the same seats must not count them twice")
	assert.False(t, Fits(ride, "a", 3))
}

func TestRecompute_CancellationRevertsFull(t *testing.T) {
	ride := &model.Ride{
		AvailableSeats: 3,
		Status:         model.RideFull,
		Passengers: []model.PassengerBooking{
			passenger("a", 2, model.PassengerCancelled),
			passenger("b", 1, model.PassengerConfirmed),
		},
	}

	Recompute(ride)
	assert.Equal(t, model.RideActive, ride.Status)
	assert.Equal(t, 1, ConfirmedSeats(ride.Passengers, ""))
}
