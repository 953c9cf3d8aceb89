package models

import (
	"time"

	"gorm.io/gorm"
)

// TruckLocation is one position ping from a collector's app while driving a
// route. Fed over the tracking websocket, read back by dispatch dashboards.
type TruckLocation struct {
	gorm.Model
	CollectorID uint      `json:"collector_id" gorm:"index"`
	RouteID     uint      `json:"route_id" gorm:"index"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Speed       float64   `json:"speed"`   // km/h
	Bearing     float64   `json:"bearing"` // degrees
	Timestamp   time.Time `json:"timestamp"`
}
