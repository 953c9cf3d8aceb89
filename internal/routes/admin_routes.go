package routes

import (
	"eco_collect/internal/controllers"
	"eco_collect/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.POST("/zones", controllers.CreateZone)
		admin.GET("/zones", controllers.ListZones)
		admin.GET("/zones/:id", controllers.GetZone)
		admin.PUT("/zones/:id", controllers.UpdateZone)
		admin.DELETE("/zones/:id", controllers.DeleteZone)

		admin.POST("/wards", controllers.CreateWard)
		admin.GET("/wards", controllers.ListWards)
		admin.GET("/wards/:id", controllers.GetWard)
		admin.PUT("/wards/:id", controllers.UpdateWard)
		admin.DELETE("/wards/:id", controllers.DeleteWard)

		admin.POST("/trucks", controllers.CreateTruck)
		admin.GET("/trucks", controllers.ListTrucks)
		admin.GET("/trucks/:id", controllers.GetTruck)
		admin.PUT("/trucks/:id", controllers.UpdateTruck)
		admin.DELETE("/trucks/:id", controllers.DeleteTruck)

		admin.POST("/bins", controllers.CreateBin)
		admin.GET("/bins", controllers.ListBins)
		admin.GET("/bins/:id", controllers.GetBin)
		admin.PUT("/bins/:id", controllers.UpdateBin)
		admin.DELETE("/bins/:id", controllers.DeleteBin)

		admin.GET("/reports/routes/:id/stops.csv", controllers.ExportRouteStopsCSV)
		admin.POST("/route-stops/recalculate-etas", controllers.RecalculatePlannedEtas)
	}
}
