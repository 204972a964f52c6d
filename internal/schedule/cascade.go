package schedule

import (
	"context"

	"github.com/sirupsen/logrus"

	"shule_transit/internal/models"
	"shule_transit/internal/notify"
)

// cascadeCancel cancels every confirmed booking on the trip, releases one
// seat per booking, and emits one booking_cancelled event per rider. It is
// idempotent: on a trip with no confirmed bookings it does nothing and
// reports zero. Notification delivery failures are logged, never fatal.
func (e *Engine) cascadeCancel(ctx context.Context, trip models.TripSchedule, reason string, actorID uint) (int, error) {
	bookings, err := e.Store.ConfirmedBookings(ctx, trip.ID)
	if err != nil {
		return 0, err
	}
	if len(bookings) == 0 {
		return 0, nil
	}

	cancelled := 0
	for _, booking := range bookings {
		ok, err := e.Store.CancelBooking(ctx, booking.ID)
		if err != nil {
			return cancelled, err
		}
		if !ok {
			// Already cancelled by a concurrent path; nothing to release.
			continue
		}

		seats := booking.SeatCount
		if seats <= 0 {
			seats = 1
		}
		if err := e.Store.ReleaseSeats(ctx, trip.ID, seats); err != nil {
			return cancelled, err
		}
		cancelled++

		ev := notify.NewEvent(notify.EventBookingCancelled, trip.ID, trip.RouteID)
		ev.StudentID = booking.StudentID
		ev.Reason = reason
		ev.ActorID = actorID
		if err := e.Notifier.Emit(ctx, ev); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"schedule_id": trip.ID,
				"booking_id":  booking.ID,
				"student_id":  booking.StudentID,
			}).Warn("Failed to deliver booking cancellation notification.")
		}
	}

	logrus.WithFields(logrus.Fields{
		"schedule_id": trip.ID,
		"cancelled":   cancelled,
		"reason":      reason,
		"actor_id":    actorID,
	}).Info("Cascading cancellation finished.")
	return cancelled, nil
}
