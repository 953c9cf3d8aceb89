package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"eco_collect/internal/config"
	"eco_collect/internal/models"
)

func validTruckStatus(s models.TruckStatus) bool {
	switch s {
	case models.TruckActive, models.TruckMaintenance, models.TruckInactive:
		return true
	}
	return false
}

func CreateTruck(c *gin.Context) {
	var input struct {
		TruckName  string             `json:"truck_name" binding:"required"`
		TruckType  string             `json:"truck_type"`
		CapacityKg float64            `json:"capacity_kg"`
		Status     models.TruckStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	if input.Status == "" {
		input.Status = models.TruckActive
	}
	if !validTruckStatus(input.Status) {
		respondError(c, http.StatusBadRequest, "unknown truck status: "+string(input.Status))
		return
	}

	truck := models.Truck{
		TruckName:  input.TruckName,
		TruckType:  input.TruckType,
		CapacityKg: input.CapacityKg,
		Status:     input.Status,
	}
	if err := config.DB.Create(&truck).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "truck name already in use")
			return
		}
		respondError(c, http.StatusInternalServerError, "create truck failed: "+err.Error())
		return
	}
	respondCreated(c, "truck created", truck)
}

// ListTrucks optionally filters by status.
func ListTrucks(c *gin.Context) {
	q := config.DB.Model(&models.Truck{})
	if status := c.Query("status"); status != "" {
		if !validTruckStatus(models.TruckStatus(status)) {
			respondError(c, http.StatusBadRequest, "unknown truck status: "+status)
			return
		}
		q = q.Where("status = ?", status)
	}
	var trucks []models.Truck
	if err := q.Order("truck_name").Find(&trucks).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "trucks retrieved", trucks)
}

func GetTruck(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var truck models.Truck
	if err := config.DB.First(&truck, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "truck not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "truck retrieved", truck)
}

func UpdateTruck(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var truck models.Truck
	if err := config.DB.First(&truck, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "truck not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var input struct {
		TruckName  *string             `json:"truck_name"`
		TruckType  *string             `json:"truck_type"`
		CapacityKg *float64            `json:"capacity_kg"`
		Status     *models.TruckStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.TruckName != nil {
		truck.TruckName = *input.TruckName
	}
	if input.TruckType != nil {
		truck.TruckType = *input.TruckType
	}
	if input.CapacityKg != nil {
		truck.CapacityKg = *input.CapacityKg
	}
	if input.Status != nil {
		if !validTruckStatus(*input.Status) {
			respondError(c, http.StatusBadRequest, "unknown truck status: "+string(*input.Status))
			return
		}
		truck.Status = *input.Status
	}

	if err := config.DB.Save(&truck).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "truck name already in use")
			return
		}
		respondError(c, http.StatusInternalServerError, "update failed: "+err.Error())
		return
	}
	respondOK(c, "truck updated", truck)
}

func DeleteTruck(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	result := config.DB.Delete(&models.Truck{}, id)
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "truck not found")
		return
	}
	respondOK(c, "truck deleted", nil)
}
