package routes

import (
	"shule_transit/internal/controllers"
	"shule_transit/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		// Master data
		admin.POST("/routes", controllers.CreateRoute)
		admin.GET("/routes", controllers.ListRoutes)
		admin.GET("/routes/:id", controllers.GetRoute)
		admin.PUT("/routes/:id", controllers.UpdateRoute)
		admin.DELETE("/routes/:id", controllers.DeleteRoute)
		admin.GET("/routes/:id/schedule-summary", controllers.GetRouteScheduleSummary)

		admin.POST("/vehicles", controllers.CreateVehicle)
		admin.GET("/vehicles", controllers.ListVehicles)
		admin.PUT("/vehicles/:id", controllers.UpdateVehicle)
		admin.DELETE("/vehicles/:id", controllers.DeleteVehicle)

		admin.GET("/drivers", controllers.ListDrivers)
		admin.POST("/drivers/assign-vehicle", controllers.AssignDriverToVehicle)
		admin.GET("/students", controllers.ListStudents)

		// Trip schedule engine
		admin.POST("/schedules", controllers.CreateTripSchedules)
		admin.GET("/schedules", controllers.ListTripSchedules)
		admin.POST("/schedules/bulk-transition", controllers.BulkTransitionTripSchedules)
		admin.POST("/schedules/sweep-completed", controllers.SweepCompletedTrips)
		admin.POST("/schedules/:id/transition", controllers.TransitionTripSchedule)
		admin.DELETE("/schedules/:id", controllers.DeleteTripSchedule)
		admin.GET("/schedules/calendar", controllers.GetScheduleCalendar)
	}
}
