package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shule_transit/internal/config"
	"shule_transit/internal/models"
)

// ListDrivers is for administrative use.
func ListDrivers(c *gin.Context) {
	var drivers []models.Driver
	if err := config.DB.Preload("User").Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

// GetMyDriverProfile returns the driver record for the authenticated user.
func GetMyDriverProfile(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	var driver models.Driver
	if err := config.DB.Where("user_id = ?", userID).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching driver: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// AssignDriverToVehicle links a driver to a vehicle. Admin only.
func AssignDriverToVehicle(c *gin.Context) {
	var input struct {
		DriverID  uint `json:"driver_id" binding:"required"`
		VehicleID uint `json:"vehicle_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, input.DriverID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}
	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, input.VehicleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	driver.VehicleID = vehicle.ID
	vehicle.DriverID = driver.ID
	if err := config.DB.Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not assign driver: " + err.Error()})
		return
	}
	if err := config.DB.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not assign driver: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"driver": driver, "vehicle": vehicle})
}
