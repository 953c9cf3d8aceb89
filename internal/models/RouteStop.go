package models

import (
	"time"

	"gorm.io/gorm"
)

type StopStatus string

const (
	StopPending    StopStatus = "PENDING"
	StopInProgress StopStatus = "IN_PROGRESS"
	StopDone       StopStatus = "DONE"
	StopMissed     StopStatus = "MISSED"
	StopSkipped    StopStatus = "SKIPPED"
)

type StopReasonCode string

const (
	ReasonNone     StopReasonCode = "NONE"
	ReasonBlocked  StopReasonCode = "BLOCKED"
	ReasonNoBinOut StopReasonCode = "NO_BIN_OUT"
	ReasonSafety   StopReasonCode = "SAFETY"
	ReasonOther    StopReasonCode = "OTHER"
)

type StopSource string

const (
	SourceQR     StopSource = "QR"
	SourceManual StopSource = "MANUAL"
)

// RouteStop is one scheduled bin visit within a route. Stops are created by
// the stop generator when a ward is added to a route and are only ever
// deleted through ward/route cascade.
//
// Status is an open enum: any value may be written, there is no enforced
// transition table. The one rule is a side effect — a write that changes the
// status to MISSED or SKIPPED must spawn a followup pickup.
type RouteStop struct {
	gorm.Model

	RouteID uint   `json:"route_id" gorm:"index;not null"`
	Route   *Route `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	BinID   uint   `json:"bin_id" gorm:"index;not null"`

	DriverID   *uint `json:"driver_id"`
	Driver     *User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	ResidentID *uint `json:"resident_id"`

	StopOrder int  `json:"stop_order" gorm:"not null"`
	Collected bool `json:"collected" gorm:"default:false"`

	PhotoURL   string     `json:"photo_url" gorm:"size:255"`
	PlannedEta *time.Time `json:"planned_eta"`
	ArrivedAt  *time.Time `json:"arrived_at"`

	Status               StopStatus `json:"status" gorm:"size:20;default:'PENDING'"`
	ReassignedToDriverID *uint      `json:"reassigned_to_driver_id"`
	ReassignedToDriver   *User      `gorm:"foreignKey:ReassignedToDriverID" json:"reassigned_to_driver,omitempty"`

	ReasonCode StopReasonCode `json:"reason_code" gorm:"size:20;default:'NONE'"`
	Source     StopSource     `json:"source" gorm:"size:10;default:'MANUAL'"`
	WeightKg   float64        `json:"weight_kg" gorm:"type:numeric(8,3);default:0"`
	Notes      string         `json:"notes" gorm:"type:text"`
}

// IsFailed reports whether the stop is in a state that warrants a followup.
func (s *RouteStop) IsFailed() bool {
	return s.Status == StopMissed || s.Status == StopSkipped
}
