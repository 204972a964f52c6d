package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shule_transit/internal/models"
	"shule_transit/internal/schedule"
)

// Scheduler is the engine instance the handlers delegate to, wired in main.
var Scheduler *schedule.Engine

const dateLayout = "2006-01-02"

// scheduleErrorStatus maps the engine's typed errors onto HTTP status codes.
func scheduleErrorStatus(err error) int {
	var (
		invalidDate   schedule.InvalidDateError
		notApproved   schedule.NotApprovedError
		deadline      schedule.DeadlinePassedError
		capacity      schedule.InsufficientCapacityError
		notBookable   schedule.NotBookableError
		delBlocked    schedule.DeletionBlockedError
		notFound      schedule.NotFoundError
		badTransition schedule.InvalidTransitionError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalidDate), errors.As(err, &notApproved),
		errors.As(err, &deadline), errors.As(err, &badTransition):
		return http.StatusBadRequest
	case errors.As(err, &capacity), errors.As(err, &notBookable), errors.As(err, &delBlocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func actorID(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if f, ok := v.(float64); ok {
			return uint(f)
		}
	}
	return 0
}

// CreateTripSchedules creates one trip per (route, date) pair. All requested
// dates are validated up front; a single bad date rejects the whole batch.
func CreateTripSchedules(c *gin.Context) {
	var input struct {
		RouteIDs            []uint   `json:"route_ids" binding:"required"`
		Dates               []string `json:"dates" binding:"required"`
		DepartureTime       string   `json:"departure_time" binding:"required"`
		ArrivalTime         string   `json:"arrival_time" binding:"required"`
		VehicleID           uint     `json:"vehicle_id"`
		BookingDeadline     string   `json:"booking_deadline"`
		SpecialInstructions string   `json:"special_instructions"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateTripSchedules: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	req := schedule.CreateRequest{
		RouteIDs:            input.RouteIDs,
		DepartureTime:       input.DepartureTime,
		ArrivalTime:         input.ArrivalTime,
		VehicleID:           input.VehicleID,
		SpecialInstructions: input.SpecialInstructions,
	}
	for _, raw := range input.Dates {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + raw})
			return
		}
		req.Dates = append(req.Dates, date)
	}
	if input.BookingDeadline != "" {
		deadline, err := time.Parse(time.RFC3339, input.BookingDeadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking_deadline: " + input.BookingDeadline})
			return
		}
		req.BookingDeadline = &deadline
	}

	result, err := Scheduler.CreateInstances(c.Request.Context(), req, actorID(c))
	if err != nil {
		c.JSON(scheduleErrorStatus(err), gin.H{"error": err.Error(), "rejected_dates": result.RejectedDates})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": result.Created})
}

// ListTripSchedules lists trips with optional date-range, route and status
// filters.
func ListTripSchedules(c *gin.Context) {
	filter := schedule.TripFilter{}
	if v := c.Query("route_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route_id"})
			return
		}
		filter.RouteID = uint(id)
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		filter.DateFrom = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		filter.DateTo = &to
	}
	if v := c.Query("status"); v != "" {
		filter.Status = models.TripStatus(v)
	}

	trips, err := Scheduler.Store.ListTrips(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing trip schedules: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": trips})
}

// TransitionTripSchedule applies one lifecycle action to one trip.
func TransitionTripSchedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule id"})
		return
	}

	var input struct {
		Action string `json:"action" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	action, ok := schedule.ParseTransition(input.Action)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action: " + input.Action})
		return
	}

	result, err := Scheduler.Transition(c.Request.Context(), uint(id), action, input.Reason, actorID(c))
	if err != nil {
		c.JSON(scheduleErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":              result.State,
		"cancelled_bookings": result.CancelledBookings,
	})
}

// BulkTransitionTripSchedules applies one action to many trips, best-effort.
func BulkTransitionTripSchedules(c *gin.Context) {
	var input struct {
		ScheduleIDs []uint `json:"schedule_ids" binding:"required,min=1"`
		Action      string `json:"action" binding:"required"`
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	action, ok := schedule.ParseTransition(input.Action)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action: " + input.Action})
		return
	}

	result := Scheduler.BulkTransition(c.Request.Context(), input.ScheduleIDs, action, input.Reason, actorID(c))
	c.JSON(http.StatusOK, gin.H{
		"succeeded":                result.Succeeded,
		"failed":                   result.Failed,
		"cancelled_bookings_total": result.CancelledBookingsTotal,
	})
}

// DeleteTripSchedule hard-deletes a trip with no bookings.
func DeleteTripSchedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule id"})
		return
	}

	if err := Scheduler.DeleteInstance(c.Request.Context(), uint(id), actorID(c)); err != nil {
		c.JSON(scheduleErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trip schedule deleted"})
}

// GetScheduleCalendar returns per-day summaries for the inclusive range.
func GetScheduleCalendar(c *gin.Context) {
	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing start date"})
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing end date"})
		return
	}
	var routeID uint
	if v := c.Query("route_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route_id"})
			return
		}
		routeID = uint(id)
	}

	days, err := Scheduler.SummarizeRange(c.Request.Context(), start, end, routeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": days})
}

// GetRouteScheduleSummary returns the month-to-date rollup for one route.
func GetRouteScheduleSummary(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route id"})
		return
	}

	summary, err := Scheduler.SummarizeRoute(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(scheduleErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// SweepCompletedTrips lets an administrator trigger the completion sweep
// outside its timer.
func SweepCompletedTrips(c *gin.Context) {
	n, err := Scheduler.CompletePastTrips(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed": n})
}
