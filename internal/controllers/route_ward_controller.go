package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eco_collect/internal/bins"
	"eco_collect/internal/config"
	"eco_collect/internal/services"
)

type createRouteWardInput struct {
	RouteID    uint   `json:"route_id" binding:"required"`
	WardNumber int    `json:"ward_number" binding:"required"`
	WardName   string `json:"ward_name" binding:"required"`
	WardOrder  int    `json:"ward_order" binding:"required"`
}

func routeWardService() services.InterfaceRouteWardService {
	return services.NewRouteWardService(config.DB, bins.NewDirectory(config.DB))
}

// CreateRouteWard adds a ward to a route and materializes its stops against
// the bin directory in the same operation.
func CreateRouteWard(c *gin.Context) {
	var input createRouteWardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRouteWard: invalid input payload")
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	ward, err := routeWardService().CreateRouteWard(input.RouteID, input.WardNumber, input.WardName, input.WardOrder)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, "route ward created, stops generated", ward)
}

func ListRouteWardsByRoute(c *gin.Context) {
	routeID, err := parseIDParam(c, "routeId")
	if err != nil {
		return
	}
	wards, err := routeWardService().GetRouteWardsByRouteID(routeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route wards retrieved", wards)
}

func ListRouteWardsByDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	wards, err := routeWardService().GetRouteWardsByDate(date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route wards retrieved", wards)
}

// DeleteRouteWard removes the ward and exactly the stops whose bin belongs
// to that ward's bin set on the route.
func DeleteRouteWard(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	if err := routeWardService().DeleteRouteWard(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route ward deleted", nil)
}

// DeleteRouteWardsByRoute drops every ward (and stop) of a route at once.
func DeleteRouteWardsByRoute(c *gin.Context) {
	routeID, err := parseIDParam(c, "routeId")
	if err != nil {
		return
	}
	if err := routeWardService().DeleteRouteWardsByRouteID(routeID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route wards deleted", nil)
}
