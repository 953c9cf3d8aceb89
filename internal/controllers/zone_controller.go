package controllers

import (
	"encoding/binary"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"eco_collect/internal/config"
	"eco_collect/internal/models"
)

// ZoneResponse mirrors models.Zone but carries the boundary as a GeoJSON
// string instead of raw WKB bytes.
type ZoneResponse struct {
	ID       uint          `json:"ID"`
	ZoneName string        `json:"zone_name"`
	Boundary string        `json:"boundary,omitempty"`
	Wards    []models.Ward `json:"wards,omitempty"`
}

func toZoneResponse(zone models.Zone) ZoneResponse {
	jsonGeom, _ := convertWKBToGeoJSON(zone.Boundary)
	return ZoneResponse{
		ID:       zone.ID,
		ZoneName: zone.ZoneName,
		Boundary: jsonGeom,
		Wards:    zone.Wards,
	}
}

// parseAndConvertBoundary parses a GeoJSON string into a geom.T and returns WKB bytes
func parseAndConvertBoundary(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CreateZone(c *gin.Context) {
	var input struct {
		ZoneName string `json:"zone_name" binding:"required"`
		Boundary string `json:"boundary"` // GeoJSON polygon
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateZone: invalid input payload")
		respondError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	wkbGeom, err := parseAndConvertBoundary(input.Boundary)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid boundary: "+err.Error())
		return
	}

	zone := models.Zone{ZoneName: input.ZoneName, Boundary: wkbGeom}
	if err := config.DB.Create(&zone).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, http.StatusConflict, "zone name already in use")
			return
		}
		respondError(c, http.StatusInternalServerError, "create zone failed: "+err.Error())
		return
	}
	respondCreated(c, "zone created", toZoneResponse(zone))
}

func ListZones(c *gin.Context) {
	var zones []models.Zone
	if err := config.DB.Preload("Wards").Find(&zones).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	responses := make([]ZoneResponse, 0, len(zones))
	for _, z := range zones {
		responses = append(responses, toZoneResponse(z))
	}
	respondOK(c, "zones retrieved", responses)
}

func GetZone(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var zone models.Zone
	if err := config.DB.Preload("Wards").First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "zone not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "zone retrieved", toZoneResponse(zone))
}

func UpdateZone(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var zone models.Zone
	if err := config.DB.First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "zone not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var input struct {
		ZoneName *string `json:"zone_name"`
		Boundary *string `json:"boundary"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.ZoneName != nil {
		zone.ZoneName = *input.ZoneName
	}
	if input.Boundary != nil {
		if *input.Boundary == "" {
			zone.Boundary = nil
		} else {
			wkbGeom, err := parseAndConvertBoundary(*input.Boundary)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid boundary: "+err.Error())
				return
			}
			zone.Boundary = wkbGeom
		}
	}

	if err := config.DB.Save(&zone).Error; err != nil {
		logrus.WithError(err).Error("UpdateZone: failed to save zone")
		respondError(c, http.StatusInternalServerError, "update failed: "+err.Error())
		return
	}
	respondOK(c, "zone updated", toZoneResponse(zone))
}

// DeleteZone removes a zone and its wards in one transaction.
func DeleteZone(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}
	var zone models.Zone
	if err := config.DB.First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "zone not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		respondError(c, http.StatusInternalServerError, "failed to start transaction")
		return
	}
	if err := tx.Where("zone_id = ?", zone.ID).Delete(&models.Ward{}).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "failed to delete wards: "+err.Error())
		return
	}
	if err := tx.Delete(&zone).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "failed to delete zone: "+err.Error())
		return
	}
	if err := tx.Commit().Error; err != nil {
		respondError(c, http.StatusInternalServerError, "transaction commit failed: "+err.Error())
		return
	}
	respondOK(c, "zone deleted", nil)
}
