package schedule

import (
	"time"

	"shule_transit/internal/models"
)

// State is the lifecycle position of a trip schedule, derived from its
// persisted flags and status rather than stored as a separate column.
type State string

const (
	StatePendingApproval State = "pending_approval"
	StateApproved        State = "approved"
	StateOpenForBooking  State = "open_for_booking"
	StateDisabled        State = "disabled"
	StateInProgress      State = "in_progress"
	StateCancelled       State = "cancelled"
	StateCompleted       State = "completed"
)

// Transition is an administrator (or system) action on a trip schedule.
type Transition string

const (
	TransitionApprove        Transition = "approve"
	TransitionEnableBooking  Transition = "enable_booking"
	TransitionDisableBooking Transition = "disable_booking"
	TransitionDisableAll     Transition = "disable_all"
	TransitionReEnable       Transition = "re_enable"
	TransitionCancel         Transition = "cancel"
	TransitionComplete       Transition = "complete"
)

// ParseTransition maps an API action string onto a known transition.
func ParseTransition(s string) (Transition, bool) {
	switch Transition(s) {
	case TransitionApprove, TransitionEnableBooking, TransitionDisableBooking,
		TransitionDisableAll, TransitionReEnable, TransitionCancel, TransitionComplete:
		return Transition(s), true
	}
	return "", false
}

// CurrentState derives the lifecycle state. A trip is Disabled while its
// DisabledAt marker is set; a trip that was approved at some point but has
// its admin flag off again is likewise Disabled rather than pending.
func CurrentState(t models.TripSchedule) State {
	switch t.Status {
	case models.TripStatusCancelled:
		return StateCancelled
	case models.TripStatusCompleted:
		return StateCompleted
	case models.TripStatusInProgress:
		return StateInProgress
	}
	switch {
	case t.BookingEnabled:
		return StateOpenForBooking
	case t.AdminSchedulingEnabled:
		return StateApproved
	case t.DisabledAt != nil:
		return StateDisabled
	case t.ApprovedAt != nil:
		return StateDisabled
	default:
		return StatePendingApproval
	}
}

func (s State) Terminal() bool {
	return s == StateCancelled || s == StateCompleted
}

// Effect is a post-transition side effect the orchestration layer must
// execute. Transitions themselves are pure and perform no I/O.
type Effect interface{ effect() }

// CascadeCancel instructs the caller to cancel every confirmed booking on
// the trip, release its seats, and emit one notification event per rider.
type CascadeCancel struct {
	Reason string
}

func (CascadeCancel) effect() {}

// Change is the flag/status delta a successful transition produces. The
// store applies it conditionally on the pre-transition values so concurrent
// transitions on the same trip serialize instead of clobbering each other.
type Change struct {
	AdminSchedulingEnabled bool
	BookingEnabled         bool
	Status                 models.TripStatus
	ApprovedAt             *time.Time
	DisabledAt             *time.Time
}

func changeFrom(t models.TripSchedule) Change {
	return Change{
		AdminSchedulingEnabled: t.AdminSchedulingEnabled,
		BookingEnabled:         t.BookingEnabled,
		Status:                 t.Status,
		ApprovedAt:             t.ApprovedAt,
		DisabledAt:             t.DisabledAt,
	}
}

// Apply computes the outcome of running action against the trip as read at
// "now". It returns the resulting change and any effects to execute, or a
// typed error when a precondition fails. It never mutates its input and
// never touches storage, so a failed precondition cannot leave a partial
// write behind.
func Apply(t models.TripSchedule, action Transition, policy DatePolicy, now time.Time) (Change, []Effect, error) {
	state := CurrentState(t)
	next := changeFrom(t)

	if state.Terminal() {
		return Change{}, nil, InvalidTransitionError{ScheduleID: t.ID, From: state, Action: action}
	}

	switch action {
	case TransitionApprove:
		// Approving an already-open trip refreshes the approval stamp and
		// leaves booking untouched; closing booking is disableBooking's job.
		approvedAt := now
		next.AdminSchedulingEnabled = true
		next.ApprovedAt = &approvedAt
		next.DisabledAt = nil
		return next, nil, nil

	case TransitionReEnable:
		if state != StateDisabled {
			return Change{}, nil, InvalidTransitionError{ScheduleID: t.ID, From: state, Action: action}
		}
		approvedAt := now
		next.AdminSchedulingEnabled = true
		next.BookingEnabled = false
		next.ApprovedAt = &approvedAt
		next.DisabledAt = nil
		return next, nil, nil

	case TransitionEnableBooking:
		if !t.AdminSchedulingEnabled {
			return Change{}, nil, NotApprovedError{ScheduleID: t.ID}
		}
		if ok, reason := policy.CanEnableForDate(t.ScheduleDate, now); !ok {
			return Change{}, nil, InvalidDateError{Date: t.ScheduleDate.Format("2006-01-02"), Reason: reason}
		}
		if t.BookingDeadline != nil && !t.BookingDeadline.After(now) {
			return Change{}, nil, DeadlinePassedError{ScheduleID: t.ID}
		}
		next.BookingEnabled = true
		return next, nil, nil

	case TransitionDisableBooking:
		if state != StateOpenForBooking {
			return Change{}, nil, InvalidTransitionError{ScheduleID: t.ID, From: state, Action: action}
		}
		next.BookingEnabled = false
		return next, []Effect{CascadeCancel{Reason: "booking closed by administrator"}}, nil

	case TransitionDisableAll:
		disabledAt := now
		next.AdminSchedulingEnabled = false
		next.BookingEnabled = false
		next.DisabledAt = &disabledAt
		return next, []Effect{CascadeCancel{Reason: "trip disabled by administrator"}}, nil

	case TransitionCancel:
		next.AdminSchedulingEnabled = false
		next.BookingEnabled = false
		next.Status = models.TripStatusCancelled
		return next, []Effect{CascadeCancel{Reason: "trip cancelled"}}, nil

	case TransitionComplete:
		if state != StateApproved && state != StateOpenForBooking && state != StateInProgress {
			return Change{}, nil, InvalidTransitionError{ScheduleID: t.ID, From: state, Action: action}
		}
		if !truncateToDay(t.ScheduleDate).Before(truncateToDay(now)) {
			return Change{}, nil, InvalidTransitionError{ScheduleID: t.ID, From: state, Action: action}
		}
		next.BookingEnabled = false
		next.Status = models.TripStatusCompleted
		return next, nil, nil

	default:
		return Change{}, nil, InvalidTransitionError{ScheduleID: t.ID, From: state, Action: action}
	}
}
