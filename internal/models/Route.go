package models

import (
	"time"

	"gorm.io/gorm"
)

type RouteStatus string

const (
	RoutePending    RouteStatus = "pending"
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
)

// Route is one day's collection run over a zone. A route is divided into
// route wards; each ward expands into route stops against the bin directory.
// Deleting a route cascades to its wards and stops.
type Route struct {
	gorm.Model

	RouteName      string      `json:"route_name" gorm:"size:100;not null" binding:"required"`
	ZoneID         uint        `json:"zone_id" gorm:"index;not null"`
	Zone           *Zone       `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	CollectionDate time.Time   `json:"collection_date" gorm:"type:date;not null"`
	TruckID        *uint       `json:"truck_id"`
	Truck          *Truck      `gorm:"foreignKey:TruckID" json:"truck,omitempty"`
	DispatcherID   uint        `json:"dispatcher_id" gorm:"not null"`
	Dispatcher     *User       `gorm:"foreignKey:DispatcherID" json:"dispatcher,omitempty"`
	CollectorID    *uint       `json:"collector_id"`
	Collector      *User       `gorm:"foreignKey:CollectorID" json:"collector,omitempty"`
	Status         RouteStatus `json:"status" gorm:"size:20;default:'pending'"`

	RouteWards []RouteWard `gorm:"foreignKey:RouteID" json:"route_wards,omitempty"`
}
