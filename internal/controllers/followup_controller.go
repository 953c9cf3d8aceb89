package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"eco_collect/internal/config"
	"eco_collect/internal/models"
	"eco_collect/internal/services"
)

func followupService() services.InterfaceFollowupService {
	return services.NewFollowupService(config.DB)
}

// ListFollowups supports optional status, wardId and driverId filters.
func ListFollowups(c *gin.Context) {
	filter := services.FollowupFilter{}

	if status := c.Query("status"); status != "" {
		switch models.FollowupStatus(status) {
		case models.FollowupPending, models.FollowupAssigned, models.FollowupInProgress,
			models.FollowupDone, models.FollowupCancelled:
			filter.Status = models.FollowupStatus(status)
		default:
			respondError(c, http.StatusBadRequest, "unknown followup status: "+status)
			return
		}
	}
	if raw := c.Query("wardId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid wardId")
			return
		}
		filter.WardID = uint(id)
	}
	if raw := c.Query("driverId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid driverId")
			return
		}
		filter.DriverID = uint(id)
	}

	followups, err := followupService().List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "followup pickups retrieved", followups)
}

func GetFollowup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	followup, err := followupService().GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "followup pickup retrieved", followup)
}

func ListPendingFollowups(c *gin.Context) {
	followups, err := followupService().GetPending()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "pending followup pickups retrieved", followups)
}

func ListOverdueFollowups(c *gin.Context) {
	followups, err := followupService().GetOverdue()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "overdue followup pickups retrieved", followups)
}

type assignFollowupInput struct {
	NewAssignedDriverID uint `json:"new_assigned_driver_id" binding:"required"`
	AssignedTruckID     uint `json:"assigned_truck_id" binding:"required"`
}

// AssignFollowup moves a pending followup to ASSIGNED.
func AssignFollowup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input assignFollowupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	followup, err := followupService().Assign(id, input.NewAssignedDriverID, input.AssignedTruckID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "driver and truck assigned", followup)
}

type completeAssignmentInput struct {
	NewAssignedDriverID uint      `json:"new_assigned_driver_id" binding:"required"`
	AssignedTruckID     uint      `json:"assigned_truck_id" binding:"required"`
	CollectionDate      time.Time `json:"collection_date" binding:"required"`
}

// CompleteFollowupAssignment assigns, moves to IN_PROGRESS, and recycles the
// originating stop into a new planned visit at the given collection date.
func CompleteFollowupAssignment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input completeAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	followup, err := followupService().CompleteAssignment(
		id, input.NewAssignedDriverID, input.AssignedTruckID, input.CollectionDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "followup assignment completed, source stop rescheduled", followup)
}

type completeFollowupInput struct {
	CompletionNotes string `json:"completion_notes"`
	PhotoURL        string `json:"photo_url"`
}

func CompleteFollowup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var input completeFollowupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	followup, err := followupService().MarkCompleted(id, input.CompletionNotes, input.PhotoURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "followup pickup completed", followup)
}

// CancelFollowup terminates an open followup; the record is kept, never
// deleted.
func CancelFollowup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellation.
	_ = c.ShouldBindJSON(&body)

	followup, err := followupService().Cancel(id, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "followup pickup cancelled", followup)
}

// ProcessExistingFailures runs the reconciliation sweep: every MISSED or
// SKIPPED stop without a followup gets one. Idempotent.
func ProcessExistingFailures(c *gin.Context) {
	created, err := followupService().DetectMissedSkippedRouteStops()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "processed existing missed/skipped route stops", gin.H{"created": created})
}

// UpdateFollowupPriorities re-derives priorities from stored reason codes.
func UpdateFollowupPriorities(c *gin.Context) {
	updated, err := followupService().UpdatePriorityAndReasonCodes()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "followup priorities updated", gin.H{"updated": updated})
}
