package models

import (
	"gorm.io/gorm"
)

// RouteWard is the inclusion of one ward into one route, with a visiting
// order. WardOrder feeds the planned ETA offset (30 minutes per ward).
// Ward order is unique per route by convention only; the schema does not
// enforce it.
type RouteWard struct {
	gorm.Model

	RouteID    uint   `json:"route_id" gorm:"index;not null"`
	Route      *Route `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	WardNumber int    `json:"ward_number" gorm:"not null" binding:"required"`
	WardName   string `json:"ward_name" gorm:"size:100;not null"`
	WardOrder  int    `json:"ward_order" gorm:"not null" binding:"required"`
}
