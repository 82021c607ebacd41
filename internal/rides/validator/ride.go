package validator

import (
	"reservations/pkg/logger"
	"reservations/pkg/model"
	"reservations/pkg/validation"
	"time"

	"github.com/go-playground/validator/v10"
)

type RideValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewRideValidator(log *logger.Logger) *RideValidator {
	v := validation.New(log)
	rv := &RideValidator{
		validate: v,
		logger:   log,
		now:      time.Now,
	}

	v.RegisterStructValidation(rv.validateSeatsForType, model.CreateRideRequest{})

	log.Info("Ride validator initialized successfully")
	return rv
}

// validateSeatsForType enforces that offers carry available_seats and
// requests carry seats_needed, never both.
func (v *RideValidator) validateSeatsForType(sl validator.StructLevel) {
	req := sl.Current().Interface().(model.CreateRideRequest)

	switch req.Type {
	case model.RideTypeOffer:
		if req.AvailableSeats == 0 {
			sl.ReportError(req.AvailableSeats, "available_seats", "AvailableSeats", "required", "")
		}
		if req.SeatsNeeded != 0 {
			sl.ReportError(req.SeatsNeeded, "seats_needed", "SeatsNeeded", "excluded", "")
		}
	case model.RideTypeRequest:
		if req.SeatsNeeded == 0 {
			sl.ReportError(req.SeatsNeeded, "seats_needed", "SeatsNeeded", "required", "")
		}
		if req.AvailableSeats != 0 {
			sl.ReportError(req.AvailableSeats, "available_seats", "AvailableSeats", "excluded", "")
		}
	}

	if !req.DepartureTime.IsZero() && req.DepartureTime.Before(v.now()) {
		sl.ReportError(req.DepartureTime, "departure_time", "DepartureTime", "future", "")
	}
}

func (v *RideValidator) ValidateCreate(req *model.CreateRideRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *RideValidator) ValidateBookSeats(req *model.BookSeatsRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *RideValidator) ValidatePassengerStatus(update *model.PassengerStatusUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *RideValidator) ValidateRideStatus(update *model.RideStatusUpdate) error {
	return validation.Struct(v.validate, update)
}
