package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jszwec/csvutil"
	"github.com/sirupsen/logrus"

	"eco_collect/internal/config"
	"eco_collect/internal/models"
	"eco_collect/internal/services"
)

// stopReportRow is one line of the per-route stops CSV.
type stopReportRow struct {
	StopID     uint    `csv:"stop_id"`
	StopOrder  int     `csv:"stop_order"`
	BinID      uint    `csv:"bin_id"`
	WardNumber int     `csv:"ward_number"`
	WasteType  string  `csv:"waste_type"`
	Status     string  `csv:"status"`
	ReasonCode string  `csv:"reason_code"`
	Collected  bool    `csv:"collected"`
	WeightKg   float64 `csv:"weight_kg"`
	PlannedEta string  `csv:"planned_eta"`
	ArrivedAt  string  `csv:"arrived_at"`
	Notes      string  `csv:"notes"`
}

func formatReportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ExportRouteStopsCSV streams a route's stop sheet as CSV, one row per stop
// in visiting order.
func ExportRouteStopsCSV(c *gin.Context) {
	routeID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	svc := services.NewRouteStopService(config.DB, services.NewFollowupService(config.DB))
	stops, err := svc.GetByRouteIDOrdered(routeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rows := make([]stopReportRow, 0, len(stops))
	for _, stop := range stops {
		var bin models.Bin
		wardNumber := 0
		wasteType := ""
		if err := config.DB.First(&bin, stop.BinID).Error; err == nil {
			wardNumber = bin.WardNumber
			wasteType = string(bin.WasteType)
		}
		rows = append(rows, stopReportRow{
			StopID:     stop.ID,
			StopOrder:  stop.StopOrder,
			BinID:      stop.BinID,
			WardNumber: wardNumber,
			WasteType:  wasteType,
			Status:     string(stop.Status),
			ReasonCode: string(stop.ReasonCode),
			Collected:  stop.Collected,
			WeightKg:   stop.WeightKg,
			PlannedEta: formatReportTime(stop.PlannedEta),
			ArrivedAt:  formatReportTime(stop.ArrivedAt),
			Notes:      stop.Notes,
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal route stop report")
		respondError(c, http.StatusInternalServerError, "could not build report")
		return
	}

	filename := fmt.Sprintf("route_%d_stops.csv", routeID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
