package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_CodeAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Room"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "b1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusBadRequest},
		{"invalid interval", InvalidInterval("2030-01-01", "10:00", "09:00"), CodeInvalidInterval, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad body"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("changed"), CodeConflict, http.StatusConflict},
		{"slot unavailable", SlotUnavailable("taken"), CodeSlotUnavailable, http.StatusConflict},
		{"capacity exceeded", CapacityExceeded("full", nil), CodeCapacityExceeded, http.StatusBadRequest},
		{"invalid transition", InvalidTransition("completed", "pending"), CodeInvalidTransition, http.StatusBadRequest},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Slot lock store"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestAppError_ErrorString(t *testing.T) {
	plain := SlotUnavailable("slot is being booked by another request")
	if got := plain.Error(); got != "SLOT_UNAVAILABLE: slot is being booked by another request" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("server selection timeout")
	wrapped := Wrap(cause, CodeUnavailable, "bookings store", http.StatusServiceUnavailable)
	if got := wrapped.Error(); got != "SERVICE_UNAVAILABLE: bookings store (caused by: server selection timeout)" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, cause) {
		t.Errorf("wrapped AppError should unwrap to its cause")
	}
}

func TestDetails(t *testing.T) {
	interval := InvalidInterval("2030-01-01", "10:00", "09:00")
	if interval.Details["start_time"] != "10:00" || interval.Details["end_time"] != "09:00" {
		t.Errorf("expected attempted interval in details, got %v", interval.Details)
	}

	transition := InvalidTransition("cancelled", "confirmed")
	if transition.Message != "cannot transition from cancelled to confirmed" {
		t.Errorf("unexpected message %q", transition.Message)
	}

	capacity := CapacityExceeded("not enough seats", map[string]any{"remaining": 1}).
		WithDetails(map[string]any{"requested": 2})
	if capacity.Details["remaining"] != 1 || capacity.Details["requested"] != 2 {
		t.Errorf("WithDetails should merge, got %v", capacity.Details)
	}

	withID := NotFoundWithID("Ride", "r1")
	if withID.Details["resource"] != "Ride" || withID.Details["id"] != "r1" {
		t.Errorf("unexpected details %v", withID.Details)
	}
}

func TestAsAppError(t *testing.T) {
	forbidden := Forbidden("only the ride owner can manage bookings")
	if got := AsAppError(fmt.Errorf("manage: %w", forbidden)); got != forbidden {
		t.Errorf("AsAppError should find a wrapped AppError")
	}

	plain := errors.New("cursor closed")
	got := AsAppError(plain)
	if got.Code != CodeInternal || got.Err != plain {
		t.Errorf("AsAppError should wrap a plain error as INTERNAL_ERROR, got %+v", got)
	}
	if !IsAppError(forbidden) || IsAppError(plain) {
		t.Errorf("IsAppError mismatch")
	}
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", SlotUnavailable("taken"))

	if !HasCode(wrapped, CodeSlotUnavailable) {
		t.Errorf("HasCode() should see through wrapping")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Errorf("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("HasCode() should be false for non-AppError")
	}
}

func TestToJSON(t *testing.T) {
	var body ErrorResponse
	if err := json.Unmarshal(CapacityExceeded("full", map[string]any{"remaining": 0}).ToJSON(), &body); err != nil {
		t.Fatalf("ToJSON produced invalid JSON: %v", err)
	}
	if body.Code != CodeCapacityExceeded || body.Message != "full" {
		t.Errorf("unexpected body %+v", body)
	}
	if _, ok := body.Details["remaining"]; !ok {
		t.Errorf("details should be serialized, got %v", body.Details)
	}
}
