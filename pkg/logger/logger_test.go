package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "reservations"})

	log.With("booking_id", "b1").Info("Booking created")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record[SERVICE] != "reservations" || record["booking_id"] != "b1" {
		t.Errorf("missing attributes in %v", record)
	}
}

func TestNew_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Format: TEXT, Level: WARN})

	log.Info("dropped")
	log.Warn("slot lock contended", "key", "room:r1:2030-01-01")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "key=room:r1:2030-01-01") {
		t.Errorf("expected text attributes, got %q", out)
	}
}
