package routes

import (
	"eco_collect/internal/controllers"
	"eco_collect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TrackingRoutes(r *gin.Engine) {
	ws := r.Group("/ws")
	{
		// Auth happens in the handler via the token query parameter; browsers
		// cannot set headers on websocket upgrades.
		ws.GET("/track", controllers.HandleTrackingWebSocket)
	}

	tracking := r.Group("/tracking")
	tracking.Use(middleware.RequireAuthWithRoles("dispatcher", "admin"))
	{
		tracking.GET("/routes/:routeId/locations", controllers.ListTruckLocations)
	}
}
