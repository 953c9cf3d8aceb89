package models

import (
	"gorm.io/gorm"
)

// Zone is a top-level collection area administered by the city.
// A zone is split into wards; routes are dispatched per zone per day.
type Zone struct {
	gorm.Model

	ZoneName string `json:"zone_name" gorm:"uniqueIndex;not null" binding:"required"`

	// Boundary stored as WKB (SRID 4326 POLYGON). Clients exchange GeoJSON;
	// controllers convert on the way in and out.
	Boundary []byte `gorm:"type:bytea" json:"-"`

	Wards []Ward `gorm:"foreignKey:ZoneID" json:"wards,omitempty"`
}
