package conflict

import (
	"context"
	"fmt"
	apperrors "reservations/pkg/errors"
	"reservations/pkg/model"
	"reservations/pkg/timeslot"
)

// BookingSource lists bookings holding a slot (pending or confirmed) on a
// room for one date.
type BookingSource interface {
	FindActiveByRoomAndDate(ctx context.Context, roomID string, date string) ([]*model.Booking, error)
}

// Checker answers whether a candidate interval collides with an active
// booking. It only reads, so it is safe to call concurrently; callers that
// act on a negative answer must hold the slot lock.
type Checker struct {
	source BookingSource
}

func NewChecker(source BookingSource) *Checker {
	return &Checker{source: source}
}

// HasConflict reports whether [start, end) on date overlaps any active
// booking of roomID other than excludeID.
func (c *Checker) HasConflict(ctx context.Context, roomID, date, start, end, excludeID string) (bool, error) {
	conflicting, err := c.FindConflict(ctx, roomID, date, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return conflicting != nil, nil
}

// FindConflict is HasConflict returning the first colliding booking.
func (c *Checker) FindConflict(ctx context.Context, roomID, date, start, end, excludeID string) (*model.Booking, error) {
	candidate, err := ValidateInterval(date, start, end)
	if err != nil {
		return nil, err
	}

	existing, err := c.source.FindActiveByRoomAndDate(ctx, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for room %s on %s: %w", roomID, date, err)
	}

	for _, b := range existing {
		if b.ID != "" && b.ID == excludeID {
			continue
		}
		if !b.IsActive() {
			continue
		}
		iv, ok, err := timeslot.NewInterval(b.StartTime, b.EndTime)
		if err != nil || !ok {
			// A stored booking with a broken interval cannot be compared;
			// treat it as blocking rather than silently admitting.
			return b, nil
		}
		if iv.Overlaps(candidate) {
			return b, nil
		}
	}
	return nil, nil
}

// ValidateInterval parses date and times, returning InvalidInterval when the
// interval is empty or reversed and a validation error when malformed.
func ValidateInterval(date, start, end string) (timeslot.Interval, error) {
	if _, err := timeslot.ParseDate(date); err != nil {
		return timeslot.Interval{}, apperrors.Validation("Invalid booking date", map[string]any{"date": date, "error": err.Error()})
	}
	iv, ok, err := timeslot.NewInterval(start, end)
	if err != nil {
		return timeslot.Interval{}, apperrors.Validation("Invalid booking time", map[string]any{
			"start_time": start,
			"end_time":   end,
			"error":      err.Error(),
		})
	}
	if !ok {
		return timeslot.Interval{}, apperrors.InvalidInterval(date, start, end)
	}
	return iv, nil
}
