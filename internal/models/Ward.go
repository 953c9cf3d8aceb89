package models

import (
	"gorm.io/gorm"
)

// Ward is an administrative sub-area of a zone. Ward numbers are unique
// within a zone; bins and route stops reference wards by number.
type Ward struct {
	gorm.Model

	ZoneID     uint   `json:"zone_id" gorm:"index:idx_zone_ward,unique;not null"`
	WardNumber int    `json:"ward_number" gorm:"index:idx_zone_ward,unique;not null" binding:"required"`
	WardName   string `json:"ward_name" gorm:"size:100;not null" binding:"required"`
}
