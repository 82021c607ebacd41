package validator

import (
	"reservations/pkg/logger"
	"reservations/pkg/model"
	"reservations/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type RoomValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	return &RoomValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *RoomValidator) Validate(room *model.Room) error {
	return validation.Struct(v.validate, room)
}

func (v *RoomValidator) ValidateCreate(req *model.CreateRoomRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *RoomValidator) ValidateUpdate(update *model.RoomUpdate) error {
	return validation.Struct(v.validate, update)
}
