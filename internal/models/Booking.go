package models

import (
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	gorm.Model
	ScheduleID uint          `json:"schedule_id" gorm:"index;not null"`
	StudentID  uint          `json:"student_id" gorm:"index;not null"`
	Status     BookingStatus `json:"status" gorm:"type:varchar(20);default:'confirmed';index"`
	SeatCount  int           `json:"seat_count" gorm:"default:1"`

	Schedule TripSchedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
}
