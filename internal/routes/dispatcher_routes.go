package routes

import (
	"eco_collect/internal/controllers"
	"eco_collect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DispatcherRoutes(r *gin.Engine) {
	dispatcher := r.Group("/dispatcher")
	dispatcher.Use(middleware.RequireAuthWithRoles("dispatcher", "admin"))
	{
		dispatcher.POST("/routes", controllers.CreateRoute)
		dispatcher.GET("/routes", controllers.ListRoutes)
		dispatcher.GET("/routes/:id", controllers.GetRoute)
		dispatcher.GET("/routes/collector/:collectorId", controllers.ListRoutesByCollector)
		dispatcher.PUT("/routes/:id/status", controllers.UpdateRouteStatus)
		dispatcher.PUT("/routes/:id/assign-collector", controllers.AssignCollector)
		dispatcher.PUT("/routes/:id/assign-truck", controllers.AssignTruck)
		dispatcher.DELETE("/routes/:id", controllers.DeleteRoute)

		dispatcher.POST("/route-wards", controllers.CreateRouteWard)
		dispatcher.GET("/route-wards", controllers.ListRouteWardsByDate)
		dispatcher.GET("/route-wards/route/:routeId", controllers.ListRouteWardsByRoute)
		dispatcher.DELETE("/route-wards/route/:routeId", controllers.DeleteRouteWardsByRoute)
		dispatcher.DELETE("/route-wards/:id", controllers.DeleteRouteWard)

		dispatcher.GET("/route-stops/route/:routeId", controllers.ListRouteStopsByRoute)
	}
}
