package models

import (
	"gorm.io/gorm"
)

// Route represents a service path between two locations.
// Routes are master data: the scheduling engine reads them to seed trip
// schedules but never mutates them.
type Route struct {
	gorm.Model

	RouteNumber   string  `json:"route_number" binding:"required" gorm:"uniqueIndex"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	StartLocation string  `json:"start_location"`
	EndLocation   string  `json:"end_location"`
	Capacity      int     `json:"capacity"` // default seat total for new trip schedules
	Fare          float64 `json:"fare"`

	// Associations
	Vehicles      []Vehicle      `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"vehicles,omitempty"`
	TripSchedules []TripSchedule `gorm:"foreignKey:RouteID" json:"trip_schedules,omitempty"`
}
