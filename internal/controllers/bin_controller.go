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

func validBinStatus(s models.BinStatus) bool {
	switch s {
	case models.BinActive, models.BinInactive, models.BinMissing:
		return true
	}
	return false
}

func validWasteType(w models.WasteType) bool {
	switch w {
	case models.WasteGeneral, models.WasteRecyclable, models.WasteOrganic:
		return true
	}
	return false
}

func CreateBin(c *gin.Context) {
	var input struct {
		WardNumber int              `json:"ward_number" binding:"required"`
		ResidentID *uint            `json:"resident_id"`
		WasteType  models.WasteType `json:"waste_type"`
		Status     models.BinStatus `json:"status"`
		Address    string           `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	if input.WasteType == "" {
		input.WasteType = models.WasteGeneral
	}
	if input.Status == "" {
		input.Status = models.BinActive
	}
	if !validWasteType(input.WasteType) {
		respondError(c, http.StatusBadRequest, "unknown waste type: "+string(input.WasteType))
		return
	}
	if !validBinStatus(input.Status) {
		respondError(c, http.StatusBadRequest, "unknown bin status: "+string(input.Status))
		return
	}
	if input.ResidentID != nil {
		var resident models.User
		if err := config.DB.First(&resident, *input.ResidentID).Error; err != nil {
			respondError(c, http.StatusNotFound, "resident not found")
			return
		}
	}

	bin := models.Bin{
		WardNumber: input.WardNumber,
		ResidentID: input.ResidentID,
		WasteType:  input.WasteType,
		Status:     input.Status,
		Address:    input.Address,
	}
	if err := config.DB.Create(&bin).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "create bin failed: "+err.Error())
		return
	}
	respondCreated(c, "bin created", bin)
}

// ListBins supports wardNumber and status filters.
func ListBins(c *gin.Context) {
	q := config.DB.Model(&models.Bin{})
	if raw := c.Query("wardNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid wardNumber")
			return
		}
		q = q.Where("ward_number = ?", n)
	}
	if status := c.Query("status"); status != "" {
		if !validBinStatus(models.BinStatus(status)) {
			respondError(c, http.StatusBadRequest, "unknown bin status: "+status)
			return
		}
		q = q.Where("status = ?", status)
	}
	var bins []models.Bin
	if err := q.Order("id").Find(&bins).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "bins retrieved", bins)
}

func GetBin(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var bin models.Bin
	if err := config.DB.Preload("Resident").First(&bin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "bin not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "bin retrieved", bin)
}

func UpdateBin(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var bin models.Bin
	if err := config.DB.First(&bin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "bin not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var input struct {
		WardNumber *int              `json:"ward_number"`
		ResidentID *uint             `json:"resident_id"`
		WasteType  *models.WasteType `json:"waste_type"`
		Status     *models.BinStatus `json:"status"`
		Address    *string           `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.WardNumber != nil {
		bin.WardNumber = *input.WardNumber
	}
	if input.ResidentID != nil {
		bin.ResidentID = input.ResidentID
	}
	if input.WasteType != nil {
		if !validWasteType(*input.WasteType) {
			respondError(c, http.StatusBadRequest, "unknown waste type: "+string(*input.WasteType))
			return
		}
		bin.WasteType = *input.WasteType
	}
	if input.Status != nil {
		if !validBinStatus(*input.Status) {
			respondError(c, http.StatusBadRequest, "unknown bin status: "+string(*input.Status))
			return
		}
		bin.Status = *input.Status
	}
	if input.Address != nil {
		bin.Address = *input.Address
	}

	if err := config.DB.Save(&bin).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "update failed: "+err.Error())
		return
	}
	respondOK(c, "bin updated", bin)
}

func DeleteBin(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	result := config.DB.Delete(&models.Bin{}, id)
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "bin not found")
		return
	}
	respondOK(c, "bin deleted", nil)
}
