package routes

import (
	"shule_transit/internal/controllers"
	"shule_transit/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("driver")
	driver.Use(middleware.RequireAuthWithRole("driver"))
	{
		driver.GET("/me", controllers.GetMyDriverProfile)
		driver.GET("/trips", controllers.ListTripSchedules)
	}
}
