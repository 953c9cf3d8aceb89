package routes

import (
	"eco_collect/internal/controllers"
	"eco_collect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func CollectorRoutes(r *gin.Engine) {
	collector := r.Group("/collector")
	collector.Use(middleware.RequireAuthWithRole("collector"))
	{
		collector.GET("/collectors/:collectorId/routes", controllers.ListRoutesByCollector)
		collector.GET("/route-stops/route/:routeId", controllers.ListRouteStopsByRoute)
		collector.GET("/route-stops/driver/:driverId", controllers.ListRouteStopsByDriver)
		collector.GET("/route-stops/:id", controllers.GetRouteStop)
		collector.PUT("/route-stops/:id/status", controllers.UpdateRouteStopStatus)
		collector.PUT("/route-stops/:id/collected", controllers.SetRouteStopCollected)
		collector.PUT("/route-stops/:id/arrived", controllers.SetRouteStopArrived)
		collector.PUT("/route-stops/:id/photo", controllers.SetRouteStopPhoto)
		collector.PUT("/route-stops/:id/weight", controllers.SetRouteStopWeight)
		collector.PUT("/route-stops/:id/notes", controllers.SetRouteStopNotes)
		collector.PUT("/route-stops/:id/reason-code", controllers.SetRouteStopReasonCode)
		collector.PUT("/route-stops/:id/reassign", controllers.ReassignRouteStop)
		collector.POST("/route-stops/report-issue", controllers.ReportRouteStopIssue)
		collector.POST("/route-stops/update-planned-eta", controllers.RecalculatePlannedEtas)
	}
}
