package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	EventBookingCancelled = "booking_cancelled"
	EventTripCancelled    = "trip_cancelled"
	EventTripCompleted    = "trip_completed"
)

// Event is the payload handed to the notification collaborator. Delivery is
// fire-and-forget: a failed emit never rolls back the state change that
// produced it.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	StudentID  uint      `json:"student_id,omitempty"`
	ScheduleID uint      `json:"schedule_id"`
	RouteID    uint      `json:"route_id"`
	Reason     string    `json:"reason,omitempty"`
	ActorID    uint      `json:"actor_id,omitempty"`
	At         time.Time `json:"at"`
}

// NewEvent stamps an event with a fresh id and timestamp.
func NewEvent(eventType string, scheduleID, routeID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ScheduleID: scheduleID,
		RouteID:    routeID,
		At:         time.Now().UTC(),
	}
}

type Notifier interface {
	Emit(ctx context.Context, ev Event) error
}

// LogEmitter writes every event to the application log. It is the default
// delivery target and also serves as the audit trail for cancellations.
type LogEmitter struct{}

func (LogEmitter) Emit(_ context.Context, ev Event) error {
	logrus.WithFields(logrus.Fields{
		"event_id":    ev.ID,
		"type":        ev.Type,
		"student_id":  ev.StudentID,
		"schedule_id": ev.ScheduleID,
		"route_id":    ev.RouteID,
		"reason":      ev.Reason,
		"actor_id":    ev.ActorID,
	}).Info("notification event emitted")
	return nil
}

// Fanout delivers each event to every wrapped notifier. The first failure is
// returned but later notifiers still run.
type Fanout []Notifier

func (f Fanout) Emit(ctx context.Context, ev Event) error {
	var firstErr error
	for _, n := range f {
		if err := n.Emit(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
