package models

import (
	"time"

	"gorm.io/gorm"
)

type TripStatus string

const (
	TripStatusScheduled  TripStatus = "scheduled"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

// TripSchedule is one concrete, dated occurrence of a route.
//
// BookedSeats is owned by the seat ledger and must only change through its
// guarded updates. Available seats are always derived as
// TotalSeats - BookedSeats and never persisted on their own.
type TripSchedule struct {
	gorm.Model
	RouteID   uint  `json:"route_id" gorm:"index;not null"`
	Route     Route `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	VehicleID uint  `json:"vehicle_id" gorm:"index"` // optional assignment

	ScheduleDate  time.Time `json:"schedule_date" gorm:"type:date;index"`
	DepartureTime string    `json:"departure_time"` // wall clock, "07:15"
	ArrivalTime   string    `json:"arrival_time"`   // strictly after departure

	TotalSeats  int `json:"total_seats"`  // immutable after creation
	BookedSeats int `json:"booked_seats"` // 0 <= BookedSeats <= TotalSeats

	AdminSchedulingEnabled bool       `json:"admin_scheduling_enabled"`
	BookingEnabled         bool       `json:"booking_enabled"` // implies AdminSchedulingEnabled
	BookingDeadline        *time.Time `json:"booking_deadline,omitempty"`
	ApprovedAt             *time.Time `json:"approved_at,omitempty"`
	DisabledAt             *time.Time `json:"disabled_at,omitempty"` // set while explicitly disabled

	Status              TripStatus `json:"status" gorm:"type:varchar(20);default:'scheduled';index"`
	SpecialInstructions string     `json:"special_instructions"`

	Bookings []Booking `gorm:"foreignKey:ScheduleID" json:"bookings,omitempty"`
}

// AvailableSeats is computed at read time so it can never drift from the
// persisted pair.
func (t TripSchedule) AvailableSeats() int {
	return t.TotalSeats - t.BookedSeats
}
