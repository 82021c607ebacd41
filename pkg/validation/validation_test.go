package validation

import (
	"errors"
	"reservations/pkg/logger"
	"testing"
)

type sample struct {
	Date  string `json:"date" validate:"required,calendar_date"`
	Start string `json:"start_time" validate:"required,clock"`
	Seats int    `json:"seats" validate:"min=1,max=10"`
}

func TestStruct_CustomTags(t *testing.T) {
	v := New(logger.NewNop())

	tests := []struct {
		name       string
		input      sample
		wantFields []string
	}{
		{"valid", sample{Date: "2024-03-01", Start: "09:30", Seats: 2}, nil},
		{"bad date", sample{Date: "2024-02-30", Start: "09:30", Seats: 2}, []string{"date"}},
		{"bad clock", sample{Date: "2024-03-01", Start: "9:30", Seats: 2}, []string{"start_time"}},
		{"hour out of range", sample{Date: "2024-03-01", Start: "24:00", Seats: 2}, []string{"start_time"}},
		{"several", sample{Date: "", Start: "", Seats: 11}, []string{"date", "start_time", "seats"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, &tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			fields := verrs.Fields()
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("expected error on %q, got %v", f, fields)
				}
			}
		})
	}
}
