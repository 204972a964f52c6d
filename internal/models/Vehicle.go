// internal/models/vehicle.go
package models

import (
	"gorm.io/gorm"
)

type Vehicle struct {
	gorm.Model
	VehicleNo           string `json:"vehicle_no"`
	VehicleRegistration string `json:"vehicle_registration"`
	Capacity            int    `json:"capacity"` // overrides route capacity when assigned to a trip
	DriverID            uint   `json:"driver_id"` // link to the driver user
	InService           bool   `json:"in_service" gorm:"default:true"`
	RouteID             uint   `json:"route_id"`
}
