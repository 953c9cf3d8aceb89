package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eco_collect/internal/config"
	"eco_collect/internal/models"
	"eco_collect/internal/services"
)

type createRouteInput struct {
	RouteName      string `json:"route_name" binding:"required"`
	ZoneID         uint   `json:"zone_id" binding:"required"`
	CollectionDate string `json:"collection_date" binding:"required"` // YYYY-MM-DD
	DispatcherID   uint   `json:"dispatcher_id" binding:"required"`
	TruckID        *uint  `json:"truck_id"`
	CollectorID    *uint  `json:"collector_id"`
}

// CreateRoute registers a new collection run. The route starts out pending
// with no wards; wards are attached through the route-wards endpoint.
func CreateRoute(c *gin.Context) {
	var input createRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	collectionDate, err := time.Parse("2006-01-02", input.CollectionDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "collection_date must be YYYY-MM-DD")
		return
	}

	svc := services.NewRouteService(config.DB)
	route, err := svc.CreateRoute(services.CreateRouteInput{
		RouteName:      input.RouteName,
		ZoneID:         input.ZoneID,
		CollectionDate: collectionDate,
		DispatcherID:   input.DispatcherID,
		TruckID:        input.TruckID,
		CollectorID:    input.CollectorID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "route created", route)
}

func ListRoutes(c *gin.Context) {
	svc := services.NewRouteService(config.DB)

	if status := c.Query("status"); status != "" {
		routes, err := svc.ListRoutesByStatus(models.RouteStatus(status))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, "routes retrieved", routes)
		return
	}
	if date := c.Query("date"); date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		routes, err := svc.ListRoutesByDate(d)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, "routes retrieved", routes)
		return
	}

	routes, err := svc.ListRoutes()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "routes retrieved", routes)
}

func GetRoute(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	route, err := services.NewRouteService(config.DB).GetRouteByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route retrieved", route)
}

func ListRoutesByCollector(c *gin.Context) {
	id, err := parseIDParam(c, "collectorId")
	if err != nil {
		return
	}
	routes, err := services.NewRouteService(config.DB).ListRoutesByCollector(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "routes retrieved", routes)
}

// UpdateRouteStatus is a plain setter; route status carries no state machine.
func UpdateRouteStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var body struct {
		Status models.RouteStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	switch body.Status {
	case models.RoutePending, models.RouteInProgress, models.RouteCompleted:
	default:
		respondError(c, http.StatusBadRequest, "unknown route status: "+string(body.Status))
		return
	}

	route, err := services.NewRouteService(config.DB).UpdateRouteStatus(id, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route status updated", route)
}

func AssignCollector(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		CollectorID uint `json:"collector_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	route, err := services.NewRouteService(config.DB).AssignCollector(id, body.CollectorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Stops generated before the collector was known pick the driver up now.
	followups := services.NewFollowupService(config.DB)
	if err := services.NewRouteStopService(config.DB, followups).AssignDriverForRoute(id, body.CollectorID); err != nil {
		logrus.WithError(err).WithField("route_id", id).Warn("could not stamp driver onto route stops")
	}

	respondOK(c, "collector assigned", route)
}

func AssignTruck(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		TruckID uint `json:"truck_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	route, err := services.NewRouteService(config.DB).AssignTruck(id, body.TruckID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "truck assigned", route)
}

// DeleteRoute cascades: stops, then wards, then the route row.
func DeleteRoute(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := services.NewRouteService(config.DB).DeleteRoute(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route deleted", nil)
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, err
	}
	return uint(id), nil
}
