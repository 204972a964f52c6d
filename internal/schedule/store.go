package schedule

import (
	"context"
	"time"

	"shule_transit/internal/models"
)

// TripFilter narrows ListTrips. Zero fields are ignored.
type TripFilter struct {
	RouteID  uint
	DateFrom *time.Time // inclusive, date component only
	DateTo   *time.Time // inclusive
	Status   models.TripStatus
	Bookable bool // only trips with booking currently enabled
}

// Store is the persistence port of the engine. Every write is conditional
// on what the caller last read, which is how single-trip operations
// serialize without in-process locks: a guard that no longer matches means
// someone else got there first, and the caller re-reads and retries.
type Store interface {
	GetTrip(ctx context.Context, id uint) (models.TripSchedule, error)
	ListTrips(ctx context.Context, f TripFilter) ([]models.TripSchedule, error)
	CreateTrip(ctx context.Context, t *models.TripSchedule) error
	DeleteTrip(ctx context.Context, id uint) error

	// ApplyChange updates the lifecycle columns from prev to next only if
	// the row still matches prev. Returns false when the guard missed.
	ApplyChange(ctx context.Context, id uint, prev, next Change) (bool, error)

	// TryReserveSeats atomically increments booked seats by count when the
	// trip is bookable at "now" and capacity allows, returning the booked
	// total that exact increment produced; ok is false otherwise.
	TryReserveSeats(ctx context.Context, id uint, count int, now time.Time) (newBooked int, ok bool, err error)
	// ReleaseSeats atomically decrements booked seats by count, floored at 0.
	ReleaseSeats(ctx context.Context, id uint, count int) error

	CountBookings(ctx context.Context, scheduleID uint) (int64, error)
	ConfirmedBookings(ctx context.Context, scheduleID uint) ([]models.Booking, error)
	// CancelBooking flips a booking to cancelled only if it is still
	// confirmed; returns false when it already was not.
	CancelBooking(ctx context.Context, bookingID uint) (bool, error)
	CreateBooking(ctx context.Context, b *models.Booking) error

	GetRoute(ctx context.Context, id uint) (models.Route, error)
	GetVehicle(ctx context.Context, id uint) (models.Vehicle, error)
}
