package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"eco_collect/internal/config"
	"eco_collect/internal/models"
)

func CreateWard(c *gin.Context) {
	var input struct {
		ZoneID     uint   `json:"zone_id" binding:"required"`
		WardNumber int    `json:"ward_number" binding:"required"`
		WardName   string `json:"ward_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	var zone models.Zone
	if err := config.DB.First(&zone, input.ZoneID).Error; err != nil {
		respondError(c, http.StatusNotFound, "zone not found")
		return
	}

	ward := models.Ward{ZoneID: input.ZoneID, WardNumber: input.WardNumber, WardName: input.WardName}
	if err := config.DB.Create(&ward).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "ward number already exists in this zone")
			return
		}
		respondError(c, http.StatusInternalServerError, "create ward failed: "+err.Error())
		return
	}
	respondCreated(c, "ward created", ward)
}

// ListWards optionally filters by zoneId.
func ListWards(c *gin.Context) {
	q := config.DB.Model(&models.Ward{})
	if raw := c.Query("zoneId"); raw != "" {
		zoneID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid zoneId")
			return
		}
		q = q.Where("zone_id = ?", zoneID)
	}
	var wards []models.Ward
	if err := q.Order("zone_id, ward_number").Find(&wards).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "wards retrieved", wards)
}

func GetWard(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var ward models.Ward
	if err := config.DB.First(&ward, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "ward not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "ward retrieved", ward)
}

func UpdateWard(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var ward models.Ward
	if err := config.DB.First(&ward, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "ward not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var input struct {
		WardNumber *int    `json:"ward_number"`
		WardName   *string `json:"ward_name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.WardNumber != nil {
		ward.WardNumber = *input.WardNumber
	}
	if input.WardName != nil {
		ward.WardName = *input.WardName
	}

	if err := config.DB.Save(&ward).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "ward number already exists in this zone")
			return
		}
		respondError(c, http.StatusInternalServerError, "update failed: "+err.Error())
		return
	}
	respondOK(c, "ward updated", ward)
}

func DeleteWard(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	result := config.DB.Delete(&models.Ward{}, id)
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "ward not found")
		return
	}
	respondOK(c, "ward deleted", nil)
}
