package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type FollowupStatus string

const (
	FollowupPending    FollowupStatus = "PENDING"
	FollowupAssigned   FollowupStatus = "ASSIGNED"
	FollowupInProgress FollowupStatus = "IN_PROGRESS"
	FollowupDone       FollowupStatus = "DONE"
	FollowupCancelled  FollowupStatus = "CANCELLED"
)

type FollowupPriority string

const (
	PriorityHigh   FollowupPriority = "HIGH"
	PriorityNormal FollowupPriority = "NORMAL"
)

type FollowupReasonCode string

const (
	FollowupMissed  FollowupReasonCode = "MISSED"
	FollowupSkipped FollowupReasonCode = "SKIPPED"
	FollowupOverdue FollowupReasonCode = "OVERDUE"
	FollowupManual  FollowupReasonCode = "MANUAL"
)

// FollowupPickup is a remedial collection task spawned when a route stop is
// missed or skipped. The unique index on SourceRouteStopID is the one
// concurrency-safety mechanism in this subsystem: two concurrent failure
// reports for the same stop can never persist two followups.
type FollowupPickup struct {
	gorm.Model

	SourceRouteStopID uint       `json:"source_route_stop_id" gorm:"uniqueIndex;not null"`
	SourceRouteStop   *RouteStop `gorm:"foreignKey:SourceRouteStopID" json:"source_route_stop,omitempty"`
	SourceAlertID     *uint      `json:"source_alert_id"`

	WardID    *uint     `json:"ward_id" gorm:"index"`
	Ward      *Ward     `gorm:"foreignKey:WardID" json:"ward,omitempty"`
	BinID     uint      `json:"bin_id" gorm:"not null"`
	WasteType WasteType `json:"waste_type" gorm:"size:20;default:'General'"`

	OriginalDriverID    *uint  `json:"original_driver_id"`
	OriginalDriver      *User  `gorm:"foreignKey:OriginalDriverID" json:"original_driver,omitempty"`
	NewAssignedDriverID *uint  `json:"new_assigned_driver_id"`
	NewAssignedDriver   *User  `gorm:"foreignKey:NewAssignedDriverID" json:"new_assigned_driver,omitempty"`
	AssignedTruckID     *uint  `json:"assigned_truck_id"`
	AssignedTruck       *Truck `gorm:"foreignKey:AssignedTruckID" json:"assigned_truck,omitempty"`

	Priority    FollowupPriority   `json:"priority" gorm:"size:10;default:'NORMAL'"`
	DueAt       time.Time          `json:"due_at" gorm:"not null"`
	Status      FollowupStatus     `json:"status" gorm:"size:20;default:'PENDING'"`
	CompletedAt *time.Time         `json:"completed_at"`
	ReasonCode  FollowupReasonCode `json:"reason_code" gorm:"size:20;not null"`
	Notes       string             `json:"notes" gorm:"type:text"`
}

// FollowupDueAt derives the due timestamp for a reason code: next day for
// missed and manual, two days for skipped, four hours for overdue.
func FollowupDueAt(reason FollowupReasonCode, now time.Time) time.Time {
	switch reason {
	case FollowupSkipped:
		return now.Add(48 * time.Hour)
	case FollowupOverdue:
		return now.Add(4 * time.Hour)
	default: // MISSED, MANUAL
		return now.Add(24 * time.Hour)
	}
}

// FollowupPriorityFor derives priority from a reason code. Only SKIPPED is
// NORMAL; everything else is urgent.
func FollowupPriorityFor(reason FollowupReasonCode) FollowupPriority {
	if reason == FollowupSkipped {
		return PriorityNormal
	}
	return PriorityHigh
}

// IsOverdue reports whether an open followup has passed its due date.
func (f *FollowupPickup) IsOverdue() bool {
	return time.Now().After(f.DueAt) &&
		f.Status != FollowupDone && f.Status != FollowupCancelled
}

// IsAssigned reports whether both a driver and a truck are set.
func (f *FollowupPickup) IsAssigned() bool {
	return f.NewAssignedDriverID != nil && f.AssignedTruckID != nil
}

// Assign moves PENDING -> ASSIGNED. Only pending followups may be assigned.
func (f *FollowupPickup) Assign(driverID, truckID uint) error {
	if f.Status != FollowupPending {
		return fmt.Errorf("%w: can only assign pending followups (status %s)", ErrIllegalState, f.Status)
	}
	f.NewAssignedDriverID = &driverID
	f.AssignedTruckID = &truckID
	f.Status = FollowupAssigned
	return nil
}

// StartProgress moves ASSIGNED -> IN_PROGRESS. Requires driver and truck.
func (f *FollowupPickup) StartProgress() error {
	if !f.IsAssigned() {
		return fmt.Errorf("%w: followup must be assigned before starting progress", ErrIllegalState)
	}
	f.Status = FollowupInProgress
	return nil
}

// Complete moves ASSIGNED or IN_PROGRESS -> DONE and stamps completion.
func (f *FollowupPickup) Complete(notes string) error {
	if f.Status != FollowupAssigned && f.Status != FollowupInProgress {
		return fmt.Errorf("%w: followup cannot be completed from status %s", ErrIllegalState, f.Status)
	}
	now := time.Now()
	f.Status = FollowupDone
	f.CompletedAt = &now
	f.Notes = notes
	return nil
}

// Cancel terminates any open followup. Done and cancelled ones stay as-is.
func (f *FollowupPickup) Cancel(reason string) error {
	if f.Status == FollowupDone || f.Status == FollowupCancelled {
		return fmt.Errorf("%w: followup cannot be cancelled from status %s", ErrIllegalState, f.Status)
	}
	f.Status = FollowupCancelled
	f.Notes = reason
	return nil
}
