package models

import (
	"gorm.io/gorm"
)

type BinStatus string

const (
	BinActive   BinStatus = "Active"
	BinInactive BinStatus = "Inactive"
	BinMissing  BinStatus = "Missing"
)

type WasteType string

const (
	WasteGeneral    WasteType = "General"
	WasteRecyclable WasteType = "Recyclable"
	WasteOrganic    WasteType = "Organic"
)

// Bin is one registered waste bin. The bin table is the source of truth
// behind the bin directory: stop generation only ever sees Active bins.
type Bin struct {
	gorm.Model

	WardNumber int       `json:"ward_number" gorm:"index;not null" binding:"required"`
	ResidentID *uint     `json:"resident_id"`
	Resident   *User     `gorm:"foreignKey:ResidentID" json:"resident,omitempty"`
	WasteType  WasteType `json:"waste_type" gorm:"size:20;default:'General'"`
	Status     BinStatus `json:"status" gorm:"size:20;default:'Active'"`
	Address    string    `json:"address" gorm:"size:255"`
}
