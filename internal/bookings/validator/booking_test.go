package validator

import (
	"reservations/pkg/logger"
	"reservations/pkg/model"
	"testing"
)

const roomID = "65f1c2a9e4b0a1b2c3d4e5f6"

func TestBookingValidator_ValidateCreate(t *testing.T) {
	v := NewBookingValidator(logger.NewNop())

	valid := model.CreateBookingRequest{RoomID: roomID, Date: "2024-03-01", StartTime: "09:00", EndTime: "10:00"}

	tests := []struct {
		name    string
		mutate  func(r *model.CreateBookingRequest)
		wantErr bool
	}{
		{"valid", func(r *model.CreateBookingRequest) {}, false},
		{"bad room id", func(r *model.CreateBookingRequest) { r.RoomID = "room-1" }, true},
		{"bad date", func(r *model.CreateBookingRequest) { r.Date = "2024-02-30" }, true},
		{"bad clock", func(r *model.CreateBookingRequest) { r.StartTime = "9am" }, true},
		{"negative attendees", func(r *model.CreateBookingRequest) { r.Attendees = -1 }, true},
		{"with attendees", func(r *model.CreateBookingRequest) { r.Attendees = 4 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.ValidateCreate(&req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCreate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookingValidator_ValidateStatusUpdate(t *testing.T) {
	v := NewBookingValidator(logger.NewNop())

	if err := v.ValidateStatusUpdate(&model.BookingStatusUpdate{Status: "approved"}); err == nil {
		t.Error("expected unknown status to be rejected")
	}
	if err := v.ValidateStatusUpdate(&model.BookingStatusUpdate{Status: model.BookingConfirmed, Notes: "ok"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
