package models

import (
	"gorm.io/gorm"
)

type TruckStatus string

const (
	TruckActive      TruckStatus = "Active"
	TruckMaintenance TruckStatus = "Maintenance"
	TruckInactive    TruckStatus = "Inactive"
)

type Truck struct {
	gorm.Model

	TruckName  string      `json:"truck_name" gorm:"uniqueIndex;size:100;not null" binding:"required"`
	TruckType  string      `json:"truck_type" gorm:"size:50"`
	CapacityKg float64     `json:"capacity_kg" gorm:"type:numeric(8,2)"`
	Status     TruckStatus `json:"status" gorm:"size:20;default:'Active'"`
}
