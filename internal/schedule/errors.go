package schedule

import (
	"fmt"
)

// The error types below are the expected, recoverable outcomes of engine
// operations. Each carries enough detail to render a user-facing message.
// Storage failures are returned as-is and are the caller's to retry.

// InvalidDateError reports a schedule date rejected by the date policy.
type InvalidDateError struct {
	Date   string
	Reason string
}

func (e InvalidDateError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("date %s is not schedulable", e.Date)
}

// NotApprovedError reports a booking-enable attempt on an unapproved trip.
type NotApprovedError struct {
	ScheduleID uint
}

func (e NotApprovedError) Error() string {
	return fmt.Sprintf("trip schedule %d must be approved before booking can be enabled", e.ScheduleID)
}

// DeadlinePassedError reports an operation blocked by an expired booking
// deadline.
type DeadlinePassedError struct {
	ScheduleID uint
}

func (e DeadlinePassedError) Error() string {
	return fmt.Sprintf("booking deadline for trip schedule %d has passed", e.ScheduleID)
}

// InsufficientCapacityError reports a seat reservation that would exceed the
// trip's total seats.
type InsufficientCapacityError struct {
	ScheduleID uint
	Requested  int
	Available  int
}

func (e InsufficientCapacityError) Error() string {
	return fmt.Sprintf("trip schedule %d has %d seats available, %d requested", e.ScheduleID, e.Available, e.Requested)
}

// NotBookableError reports a reservation against a trip that is not open for
// booking at the instant of the call.
type NotBookableError struct {
	ScheduleID uint
	Reason     string
}

func (e NotBookableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("trip schedule %d is not bookable: %s", e.ScheduleID, e.Reason)
	}
	return fmt.Sprintf("trip schedule %d is not bookable", e.ScheduleID)
}

// DeletionBlockedError reports a delete attempt on a trip that bookings still
// reference, whatever their status.
type DeletionBlockedError struct {
	ScheduleID uint
	Bookings   int64
}

func (e DeletionBlockedError) Error() string {
	return fmt.Sprintf("trip schedule %d cannot be deleted: %d booking(s) reference it", e.ScheduleID, e.Bookings)
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidTransitionError reports a lifecycle action that is not permitted
// from the trip's current state.
type InvalidTransitionError struct {
	ScheduleID uint
	From       State
	Action     Transition
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s trip schedule %d in state %s", e.Action, e.ScheduleID, e.From)
}
