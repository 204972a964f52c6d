package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shule_transit/internal/config"
	"shule_transit/internal/models"
	"shule_transit/internal/schedule"
)

// ListOpenTrips returns the trips a student can currently book: booking
// enabled, date within the policy window, deadline not yet passed.
func ListOpenTrips(c *gin.Context) {
	filter := schedule.TripFilter{Bookable: true}
	if v := c.Query("route_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route_id"})
			return
		}
		filter.RouteID = uint(id)
	}
	minDate := Scheduler.Policy.MinimumScheduleDate(time.Now())
	filter.DateFrom = &minDate

	trips, err := Scheduler.Store.ListTrips(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing open trips: " + err.Error()})
		return
	}

	now := time.Now()
	open := make([]models.TripSchedule, 0, len(trips))
	for _, trip := range trips {
		if trip.BookingDeadline != nil && !trip.BookingDeadline.After(now) {
			continue
		}
		open = append(open, trip)
	}

	c.JSON(http.StatusOK, gin.H{"data": open})
}

// CreateBooking reserves one seat on a trip for the authenticated student.
// The seat ledger's guarded update is what makes overbooking impossible; the
// booking row is only written after the reservation holds.
func CreateBooking(c *gin.Context) {
	studentID := uint(c.MustGet("user_id").(float64))

	var input struct {
		ScheduleID uint `json:"schedule_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var existing models.Booking
	err := config.DB.Where("schedule_id = ? AND student_id = ? AND status = ?",
		input.ScheduleID, studentID, models.BookingStatusConfirmed).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a confirmed booking on this trip"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking bookings: " + err.Error()})
		return
	}

	ledger := Scheduler.Ledger()
	booked, err := ledger.Reserve(c.Request.Context(), input.ScheduleID, 1)
	if err != nil {
		c.JSON(scheduleErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	booking := models.Booking{
		ScheduleID: input.ScheduleID,
		StudentID:  studentID,
		Status:     models.BookingStatusConfirmed,
		SeatCount:  1,
	}
	if err := Scheduler.Store.CreateBooking(c.Request.Context(), &booking); err != nil {
		// The seat was reserved but the row failed; give the seat back.
		if relErr := ledger.Release(c.Request.Context(), input.ScheduleID, 1); relErr != nil {
			logrus.WithError(relErr).WithField("schedule_id", input.ScheduleID).
				Error("Failed to release seat after booking insert failure.")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create booking: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking, "booked_seats": booked})
}

// CancelMyBooking cancels the student's own confirmed booking and releases
// its seat.
func CancelMyBooking(c *gin.Context) {
	studentID := uint(c.MustGet("user_id").(float64))
	id := c.Param("id")

	var booking models.Booking
	if err := config.DB.Where("id = ? AND student_id = ?", id, studentID).First(&booking).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	ok, err := Scheduler.Store.CancelBooking(c.Request.Context(), booking.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not cancel booking: " + err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is already cancelled"})
		return
	}

	seats := booking.SeatCount
	if seats <= 0 {
		seats = 1
	}
	if err := Scheduler.Ledger().Release(c.Request.Context(), booking.ScheduleID, seats); err != nil {
		logrus.WithError(err).WithField("booking_id", booking.ID).Error("Failed to release seat on cancellation.")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// ListMyBookings returns the authenticated student's bookings.
func ListMyBookings(c *gin.Context) {
	studentID := uint(c.MustGet("user_id").(float64))

	var bookings []models.Booking
	if err := config.DB.Where("student_id = ?", studentID).Preload("Schedule").Order("id desc").Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing bookings: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bookings})
}
