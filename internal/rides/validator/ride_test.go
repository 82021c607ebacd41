package validator

import (
	"errors"
	"reservations/pkg/logger"
	"reservations/pkg/model"
	"reservations/pkg/validation"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRideValidator_ValidateCreate(t *testing.T) {
	v := NewRideValidator(logger.NewNop())
	tomorrow := time.Now().Add(24 * time.Hour)

	base := func(kind string) model.CreateRideRequest {
		return model.CreateRideRequest{Type: kind, Origin: "Haifa", Destination: "Tel Aviv", DepartureTime: tomorrow}
	}

	tests := []struct {
		name      string
		req       func() model.CreateRideRequest
		wantField string
	}{
		{"offer with seats", func() model.CreateRideRequest { r := base(model.RideTypeOffer); r.AvailableSeats = 3; return r }, ""},
		{"request with need", func() model.CreateRideRequest { r := base(model.RideTypeRequest); r.SeatsNeeded = 1; return r }, ""},
		{"offer without seats", func() model.CreateRideRequest { return base(model.RideTypeOffer) }, "available_seats"},
		{"request without need", func() model.CreateRideRequest { return base(model.RideTypeRequest) }, "seats_needed"},
		{"offer with need", func() model.CreateRideRequest {
			r := base(model.RideTypeOffer)
			r.AvailableSeats = 3
			r.SeatsNeeded = 1
			return r
		}, "seats_needed"},
		{"past departure", func() model.CreateRideRequest {
			r := base(model.RideTypeOffer)
			r.AvailableSeats = 3
			r.DepartureTime = time.Now().Add(-time.Hour)
			return r
		}, "departure_time"},
		{"unknown type", func() model.CreateRideRequest { return base("shuttle") }, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req()
			err := v.ValidateCreate(&req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validation.ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Contains(t, verrs.Fields(), tt.wantField)
		})
	}
}

func TestRideValidator_StatusUpdates(t *testing.T) {
	v := NewRideValidator(logger.NewNop())

	assert.Error(t, v.ValidatePassengerStatus(&model.PassengerStatusUpdate{Status: model.PassengerPending}))
	assert.NoError(t, v.ValidatePassengerStatus(&model.PassengerStatusUpdate{Status: model.PassengerConfirmed}))
	assert.Error(t, v.ValidateRideStatus(&model.RideStatusUpdate{Status: model.RideFull}))
	assert.NoError(t, v.ValidateRideStatus(&model.RideStatusUpdate{Status: model.RideCancelled}))
	assert.Error(t, v.ValidateBookSeats(&model.BookSeatsRequest{Seats: 0}))
}
