package routes

import (
	"shule_transit/internal/controllers"
	"shule_transit/internal/middleware"

	"github.com/gin-gonic/gin"
)

func StudentRoutes(r *gin.Engine) {
	student := r.Group("student")
	student.Use(middleware.RequireAuthWithRole("student"))
	{
		student.GET("/trips", controllers.ListOpenTrips)
		student.POST("/bookings", controllers.CreateBooking)
		student.GET("/bookings", controllers.ListMyBookings)
		student.DELETE("/bookings/:id", controllers.CancelMyBooking)
	}
}
