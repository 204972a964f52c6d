package schedule

import (
	"context"
	"fmt"
	"time"
)

// Ledger guards the seat-count invariant: 0 <= booked <= total, even under
// concurrent reservations. The reserve path is a single conditional update
// in the store, so two racing reserves can never jointly exceed capacity;
// the classification below only runs on the losing side.
type Ledger struct {
	Store Store
	Now   func() time.Time
}

func (l Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Reserve books count seats on the trip and returns the booked total the
// increment itself produced. Fails with NotBookableError when booking is
// disabled or the deadline has passed at the instant of the call, and with
// InsufficientCapacityError when the increment would exceed total seats.
func (l Ledger) Reserve(ctx context.Context, scheduleID uint, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("seat count must be positive, got %d", count)
	}
	now := l.now()

	newBooked, ok, err := l.Store.TryReserveSeats(ctx, scheduleID, count, now)
	if err != nil {
		return 0, err
	}
	if ok {
		return newBooked, nil
	}

	// The guarded update missed; re-read to say why.
	trip, err := l.Store.GetTrip(ctx, scheduleID)
	if err != nil {
		return 0, err
	}
	if !trip.BookingEnabled {
		return 0, NotBookableError{ScheduleID: scheduleID, Reason: "booking is not enabled"}
	}
	if trip.BookingDeadline != nil && !trip.BookingDeadline.After(now) {
		return 0, NotBookableError{ScheduleID: scheduleID, Reason: "booking deadline has passed"}
	}
	return 0, InsufficientCapacityError{
		ScheduleID: scheduleID,
		Requested:  count,
		Available:  trip.AvailableSeats(),
	}
}

// Release returns count seats to the trip, floored at zero. Used by booking
// cancellation; releasing on a trip with no booked seats is a no-op.
func (l Ledger) Release(ctx context.Context, scheduleID uint, count int) error {
	if count <= 0 {
		return fmt.Errorf("seat count must be positive, got %d", count)
	}
	return l.Store.ReleaseSeats(ctx, scheduleID, count)
}
