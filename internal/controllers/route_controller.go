package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shule_transit/internal/config"
	"shule_transit/internal/models"
)

// CreateRoute registers a new route. Admin only.
func CreateRoute(c *gin.Context) {
	var input struct {
		RouteNumber   string  `json:"route_number" binding:"required"`
		Name          string  `json:"name" binding:"required"`
		Description   string  `json:"description"`
		StartLocation string  `json:"start_location" binding:"required"`
		EndLocation   string  `json:"end_location" binding:"required"`
		Capacity      int     `json:"capacity" binding:"required,gt=0"`
		Fare          float64 `json:"fare"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	route := models.Route{
		RouteNumber:   input.RouteNumber,
		Name:          input.Name,
		Description:   input.Description,
		StartLocation: input.StartLocation,
		EndLocation:   input.EndLocation,
		Capacity:      input.Capacity,
		Fare:          input.Fare,
	}
	if err := config.DB.Create(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create route failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"route": route})
}

func GetRoute(c *gin.Context) {
	id := c.Param("id")

	var route models.Route
	if err := config.DB.Preload("Vehicles").First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching route: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"route": route})
}

func ListRoutes(c *gin.Context) {
	var routes []models.Route
	if err := config.DB.Order("route_number").Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing routes: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": routes})
}

func UpdateRoute(c *gin.Context) {
	id := c.Param("id")

	var route models.Route
	if err := config.DB.First(&route, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var input struct {
		Name          *string  `json:"name"`
		Description   *string  `json:"description"`
		StartLocation *string  `json:"start_location"`
		EndLocation   *string  `json:"end_location"`
		Capacity      *int     `json:"capacity"`
		Fare          *float64 `json:"fare"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}

	if input.Name != nil {
		route.Name = *input.Name
	}
	if input.Description != nil {
		route.Description = *input.Description
	}
	if input.StartLocation != nil {
		route.StartLocation = *input.StartLocation
	}
	if input.EndLocation != nil {
		route.EndLocation = *input.EndLocation
	}
	if input.Capacity != nil && *input.Capacity > 0 {
		route.Capacity = *input.Capacity
	}
	if input.Fare != nil {
		route.Fare = *input.Fare
	}

	config.DB.Save(&route)
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// DeleteRoute removes a route. Refused while trip schedules still reference
// it; those must be deleted or cancelled first.
func DeleteRoute(c *gin.Context) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route id"})
		return
	}

	var route models.Route
	if err := config.DB.First(&route, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var trips int64
	if err := config.DB.Model(&models.TripSchedule{}).Where("route_id = ?", uint(id)).Count(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking trip schedules: " + err.Error()})
		return
	}
	if trips > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Route has trip schedules and cannot be deleted"})
		return
	}

	config.DB.Delete(&route)
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}
