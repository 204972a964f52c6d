package routes

import (
	"shule_transit/internal/controllers"

	"github.com/gin-gonic/gin"
)

func EventSocketRoutes(r *gin.Engine) {
	// Auth happens inside the handler: the token rides on the query string.
	r.GET("/ws/schedule-events", controllers.HandleScheduleEventsWebSocket)
}
