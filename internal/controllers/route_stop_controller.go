package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eco_collect/internal/config"
	"eco_collect/internal/models"
	"eco_collect/internal/services"
)

func routeStopService() services.InterfaceRouteStopService {
	return services.NewRouteStopService(config.DB, services.NewFollowupService(config.DB))
}

// ListRouteStopsByRoute returns a route's stops ordered by stop order.
func ListRouteStopsByRoute(c *gin.Context) {
	routeID, err := parseIDParam(c, "routeId")
	if err != nil {
		return
	}
	stops, err := routeStopService().GetByRouteIDOrdered(routeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stops retrieved", stops)
}

func ListRouteStopsByDriver(c *gin.Context) {
	driverID, err := parseIDParam(c, "driverId")
	if err != nil {
		return
	}
	stops, err := routeStopService().GetByDriverID(driverID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stops retrieved", stops)
}

func GetRouteStop(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	stop, err := routeStopService().GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop retrieved", stop)
}

func parseStopStatus(raw string) (models.StopStatus, bool) {
	switch models.StopStatus(strings.ToUpper(raw)) {
	case models.StopPending:
		return models.StopPending, true
	case models.StopInProgress:
		return models.StopInProgress, true
	case models.StopDone:
		return models.StopDone, true
	case models.StopMissed:
		return models.StopMissed, true
	case models.StopSkipped:
		return models.StopSkipped, true
	}
	return "", false
}

// UpdateRouteStopStatus is the status entry point with the followup side
// effect: a change into MISSED or SKIPPED spawns a followup pickup.
func UpdateRouteStopStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	status, ok := parseStopStatus(c.Query("status"))
	if !ok {
		respondError(c, http.StatusBadRequest, "unknown stop status: "+c.Query("status"))
		return
	}

	stop, err := routeStopService().UpdateStatusWithFollowup(id, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop status updated", stop)
}

func SetRouteStopCollected(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		Collected *bool `json:"collected" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	stop, err := routeStopService().SetCollected(id, *body.Collected)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop updated", stop)
}

func SetRouteStopArrived(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		ArrivedAt *time.Time `json:"arrived_at"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	arrivedAt := time.Now()
	if body.ArrivedAt != nil {
		arrivedAt = *body.ArrivedAt
	}
	stop, err := routeStopService().SetArrivedAt(id, arrivedAt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop updated", stop)
}

func SetRouteStopPhoto(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		PhotoURL string `json:"photo_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	stop, err := routeStopService().SetPhoto(id, body.PhotoURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop updated", stop)
}

func SetRouteStopWeight(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		WeightKg *float64 `json:"weight_kg" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	stop, err := routeStopService().SetWeight(id, *body.WeightKg)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop updated", stop)
}

func SetRouteStopNotes(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	stop, err := routeStopService().SetNotes(id, body.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop updated", stop)
}

func SetRouteStopReasonCode(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		ReasonCode models.StopReasonCode `json:"reason_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	switch body.ReasonCode {
	case models.ReasonNone, models.ReasonBlocked, models.ReasonNoBinOut, models.ReasonSafety, models.ReasonOther:
	default:
		respondError(c, http.StatusBadRequest, "unknown reason code: "+string(body.ReasonCode))
		return
	}
	stop, err := routeStopService().SetReasonCode(id, body.ReasonCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop updated", stop)
}

func ReassignRouteStop(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		NewDriverID uint `json:"new_driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	stop, err := routeStopService().Reassign(id, body.NewDriverID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "route stop reassigned", stop)
}

type reportIssueInput struct {
	RouteID     uint   `json:"route_id" binding:"required"`
	BinID       uint   `json:"bin_id" binding:"required"`
	CollectorID uint   `json:"collector_id" binding:"required"`
	Status      string `json:"status" binding:"required"`
	Remarks     string `json:"remarks"`
}

// ReportRouteStopIssue lets a collector flag a stop in the field: the stop
// is looked up by route and bin, its status updated through the
// followup-aware path, and remarks stored as notes. An unknown reported
// status is treated as SKIPPED.
func ReportRouteStopIssue(c *gin.Context) {
	var input reportIssueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	logrus.WithFields(logrus.Fields{
		"route_id":     input.RouteID,
		"bin_id":       input.BinID,
		"collector_id": input.CollectorID,
		"status":       input.Status,
	}).Info("received field issue report")

	svc := routeStopService()
	stop, err := svc.GetByRouteAndBin(input.RouteID, input.BinID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status, ok := parseStopStatus(input.Status)
	if !ok {
		status = models.StopSkipped
	}

	updated, err := svc.UpdateStatusWithFollowup(stop.ID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if strings.TrimSpace(input.Remarks) != "" {
		updated, err = svc.SetNotes(stop.ID, input.Remarks)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}
	respondOK(c, "route stop issue reported", updated)
}

// RecalculatePlannedEtas is a bulk repair for historical stops whose planned
// arrival drifted from the schedule arithmetic.
func RecalculatePlannedEtas(c *gin.Context) {
	updated, err := routeStopService().RecalculatePlannedEtas()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "planned ETAs recalculated", gin.H{"updated": updated})
}
