package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"shule_transit/internal/models"
	"shule_transit/internal/notify"
)

// transitionRetries bounds the optimistic-guard retry loop for one trip.
const transitionRetries = 3

// Engine owns trip schedule lifecycle, seat inventory and the calendar read
// model. It is identity-agnostic: callers pass the acting user's id for
// audit and notification purposes only.
type Engine struct {
	Store    Store
	Policy   DatePolicy
	Notifier notify.Notifier
	Now      func() time.Time
}

func NewEngine(store Store, policy DatePolicy, notifier notify.Notifier) *Engine {
	return &Engine{
		Store:    store,
		Policy:   policy,
		Notifier: notifier,
		Now:      time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Ledger returns the seat ledger bound to this engine's store and clock.
// The external booking path reserves seats through it.
func (e *Engine) Ledger() Ledger {
	return Ledger{Store: e.Store, Now: e.Now}
}

// CreateRequest describes a multi-route, multi-date batch creation.
type CreateRequest struct {
	RouteIDs            []uint
	Dates               []time.Time
	DepartureTime       string
	ArrivalTime         string
	VehicleID           uint // optional; its capacity overrides the route's
	BookingDeadline     *time.Time
	SpecialInstructions string
}

// CreateResult reports a batch creation outcome.
type CreateResult struct {
	Created       []models.TripSchedule `json:"created"`
	RejectedDates []string              `json:"rejected_dates"`
}

// CreateInstances creates one trip schedule per (route, date) pair. Every
// requested date is validated against the date policy first; if any date is
// invalid the whole request is rejected before anything is created.
func (e *Engine) CreateInstances(ctx context.Context, req CreateRequest, actorID uint) (CreateResult, error) {
	if len(req.RouteIDs) == 0 {
		return CreateResult{}, fmt.Errorf("at least one route is required")
	}
	if len(req.Dates) == 0 {
		return CreateResult{}, fmt.Errorf("at least one date is required")
	}
	if req.DepartureTime == "" || req.ArrivalTime == "" || req.ArrivalTime <= req.DepartureTime {
		return CreateResult{}, fmt.Errorf("arrival time must be after departure time")
	}

	now := e.now()
	var rejected []string
	var firstReason string
	for _, date := range req.Dates {
		if ok, reason := e.Policy.CanEnableForDate(date, now); !ok {
			rejected = append(rejected, truncateToDay(date).Format("2006-01-02"))
			if firstReason == "" {
				firstReason = reason
			}
		}
	}
	if len(rejected) > 0 {
		return CreateResult{RejectedDates: rejected}, InvalidDateError{Date: rejected[0], Reason: firstReason}
	}

	// Seat totals come from the vehicle when one is assigned, otherwise
	// from the route's capacity at creation time.
	var vehicleSeats int
	if req.VehicleID != 0 {
		vehicle, err := e.Store.GetVehicle(ctx, req.VehicleID)
		if err != nil {
			return CreateResult{}, err
		}
		vehicleSeats = vehicle.Capacity
	}

	routes := make(map[uint]models.Route, len(req.RouteIDs))
	for _, routeID := range req.RouteIDs {
		route, err := e.Store.GetRoute(ctx, routeID)
		if err != nil {
			return CreateResult{}, err
		}
		routes[routeID] = route
	}

	result := CreateResult{}
	for _, routeID := range req.RouteIDs {
		route := routes[routeID]
		seats := route.Capacity
		if vehicleSeats > 0 {
			seats = vehicleSeats
		}
		for _, date := range req.Dates {
			trip := models.TripSchedule{
				RouteID:             routeID,
				VehicleID:           req.VehicleID,
				ScheduleDate:        truncateToDay(date),
				DepartureTime:       req.DepartureTime,
				ArrivalTime:         req.ArrivalTime,
				TotalSeats:          seats,
				BookingDeadline:     req.BookingDeadline,
				Status:              models.TripStatusScheduled,
				SpecialInstructions: req.SpecialInstructions,
			}
			if err := e.Store.CreateTrip(ctx, &trip); err != nil {
				return result, err
			}
			result.Created = append(result.Created, trip)
		}
	}

	logrus.WithFields(logrus.Fields{
		"routes":   len(req.RouteIDs),
		"dates":    len(req.Dates),
		"created":  len(result.Created),
		"actor_id": actorID,
	}).Info("Trip schedules created.")
	return result, nil
}

// TransitionResult reports the state after a lifecycle action and how many
// bookings its cascade cancelled.
type TransitionResult struct {
	State             State `json:"state"`
	CancelledBookings int   `json:"cancelled_bookings"`
}

// Transition applies one lifecycle action to one trip. The state change is
// computed purely, persisted with a guard on the pre-transition values, and
// only then are the returned effects executed. A guard miss means a
// concurrent transition won; the read-apply-persist loop retries on fresh
// state a bounded number of times.
func (e *Engine) Transition(ctx context.Context, scheduleID uint, action Transition, reason string, actorID uint) (TransitionResult, error) {
	now := e.now()

	for attempt := 0; attempt < transitionRetries; attempt++ {
		trip, err := e.Store.GetTrip(ctx, scheduleID)
		if err != nil {
			return TransitionResult{}, err
		}

		change, effects, err := Apply(trip, action, e.Policy, now)
		if err != nil {
			return TransitionResult{}, err
		}

		applied, err := e.Store.ApplyChange(ctx, scheduleID, changeFrom(trip), change)
		if err != nil {
			return TransitionResult{}, err
		}
		if !applied {
			continue
		}

		cancelled := 0
		for _, effect := range effects {
			if cc, ok := effect.(CascadeCancel); ok {
				effectReason := cc.Reason
				if reason != "" {
					effectReason = reason
				}
				n, err := e.cascadeCancel(ctx, trip, effectReason, actorID)
				cancelled += n
				if err != nil {
					return TransitionResult{CancelledBookings: cancelled}, err
				}
			}
		}

		trip.AdminSchedulingEnabled = change.AdminSchedulingEnabled
		trip.BookingEnabled = change.BookingEnabled
		trip.Status = change.Status
		trip.ApprovedAt = change.ApprovedAt
		trip.DisabledAt = change.DisabledAt

		logrus.WithFields(logrus.Fields{
			"schedule_id": scheduleID,
			"action":      action,
			"state":       CurrentState(trip),
			"cancelled":   cancelled,
			"actor_id":    actorID,
		}).Info("Trip schedule transition applied.")
		return TransitionResult{State: CurrentState(trip), CancelledBookings: cancelled}, nil
	}

	return TransitionResult{}, fmt.Errorf("trip schedule %d is being modified concurrently, retry", scheduleID)
}

// DeleteInstance hard-deletes a trip schedule. Deletion is distinct from
// cancellation and is refused while any booking, of any status, still
// references the trip.
func (e *Engine) DeleteInstance(ctx context.Context, scheduleID uint, actorID uint) error {
	if _, err := e.Store.GetTrip(ctx, scheduleID); err != nil {
		return err
	}
	n, err := e.Store.CountBookings(ctx, scheduleID)
	if err != nil {
		return err
	}
	if n > 0 {
		return DeletionBlockedError{ScheduleID: scheduleID, Bookings: n}
	}
	if err := e.Store.DeleteTrip(ctx, scheduleID); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"actor_id":    actorID,
	}).Info("Trip schedule deleted.")
	return nil
}
