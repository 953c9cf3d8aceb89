package models

import (
	"errors"
	"testing"
	"time"
)

func TestFollowupDueAtOffsets(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		reason FollowupReasonCode
		want   time.Time
	}{
		{FollowupMissed, now.Add(24 * time.Hour)},
		{FollowupManual, now.Add(24 * time.Hour)},
		{FollowupSkipped, now.Add(48 * time.Hour)},
		{FollowupOverdue, now.Add(4 * time.Hour)},
	}
	for _, tc := range cases {
		if got := FollowupDueAt(tc.reason, now); !got.Equal(tc.want) {
			t.Fatalf("FollowupDueAt(%s) = %v, want %v", tc.reason, got, tc.want)
		}
	}
}

func TestFollowupPriorityFor(t *testing.T) {
	if got := FollowupPriorityFor(FollowupSkipped); got != PriorityNormal {
		t.Fatalf("priority for SKIPPED = %s, want NORMAL", got)
	}
	for _, reason := range []FollowupReasonCode{FollowupMissed, FollowupOverdue, FollowupManual} {
		if got := FollowupPriorityFor(reason); got != PriorityHigh {
			t.Fatalf("priority for %s = %s, want HIGH", reason, got)
		}
	}
}

func TestAssignOnlyFromPending(t *testing.T) {
	f := FollowupPickup{Status: FollowupPending}
	if err := f.Assign(5, 2); err != nil {
		t.Fatalf("assign pending followup: %v", err)
	}
	if f.Status != FollowupAssigned {
		t.Fatalf("status = %s, want ASSIGNED", f.Status)
	}
	if f.NewAssignedDriverID == nil || *f.NewAssignedDriverID != 5 {
		t.Fatalf("driver not recorded: %v", f.NewAssignedDriverID)
	}
	if f.AssignedTruckID == nil || *f.AssignedTruckID != 2 {
		t.Fatalf("truck not recorded: %v", f.AssignedTruckID)
	}

	for _, status := range []FollowupStatus{FollowupAssigned, FollowupInProgress, FollowupDone, FollowupCancelled} {
		f := FollowupPickup{Status: status}
		err := f.Assign(5, 2)
		if !errors.Is(err, ErrIllegalState) {
			t.Fatalf("assign from %s: err = %v, want ErrIllegalState", status, err)
		}
	}
}

func TestStartProgressRequiresAssignment(t *testing.T) {
	f := FollowupPickup{Status: FollowupPending}
	if err := f.StartProgress(); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("start without assignment: err = %v, want ErrIllegalState", err)
	}

	if err := f.Assign(5, 2); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := f.StartProgress(); err != nil {
		t.Fatalf("start after assignment: %v", err)
	}
	if f.Status != FollowupInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", f.Status)
	}
}

func TestCompleteFromAssignedOrInProgress(t *testing.T) {
	driverID, truckID := uint(5), uint(2)

	assigned := FollowupPickup{Status: FollowupAssigned, NewAssignedDriverID: &driverID, AssignedTruckID: &truckID}
	if err := assigned.Complete("done on first retry"); err != nil {
		t.Fatalf("complete from ASSIGNED: %v", err)
	}
	if assigned.Status != FollowupDone || assigned.CompletedAt == nil {
		t.Fatalf("completion not recorded: status=%s completedAt=%v", assigned.Status, assigned.CompletedAt)
	}
	if assigned.Notes != "done on first retry" {
		t.Fatalf("notes = %q", assigned.Notes)
	}

	inProgress := FollowupPickup{Status: FollowupInProgress, NewAssignedDriverID: &driverID, AssignedTruckID: &truckID}
	if err := inProgress.Complete(""); err != nil {
		t.Fatalf("complete from IN_PROGRESS: %v", err)
	}

	for _, status := range []FollowupStatus{FollowupPending, FollowupDone, FollowupCancelled} {
		f := FollowupPickup{Status: status}
		if err := f.Complete(""); !errors.Is(err, ErrIllegalState) {
			t.Fatalf("complete from %s: err = %v, want ErrIllegalState", status, err)
		}
	}
}

func TestCancelFromOpenStatesOnly(t *testing.T) {
	for _, status := range []FollowupStatus{FollowupPending, FollowupAssigned, FollowupInProgress} {
		f := FollowupPickup{Status: status}
		if err := f.Cancel("resident moved out"); err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
		if f.Status != FollowupCancelled {
			t.Fatalf("status after cancel = %s", f.Status)
		}
		if f.Notes != "resident moved out" {
			t.Fatalf("cancel reason not stored: %q", f.Notes)
		}
	}

	for _, status := range []FollowupStatus{FollowupDone, FollowupCancelled} {
		f := FollowupPickup{Status: status}
		if err := f.Cancel(""); !errors.Is(err, ErrIllegalState) {
			t.Fatalf("cancel from %s: err = %v, want ErrIllegalState", status, err)
		}
	}
}

func TestIsOverdue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	if f := (FollowupPickup{Status: FollowupPending, DueAt: past}); !f.IsOverdue() {
		t.Fatal("pending followup past due date should be overdue")
	}
	if f := (FollowupPickup{Status: FollowupPending, DueAt: future}); f.IsOverdue() {
		t.Fatal("pending followup before due date should not be overdue")
	}
	if f := (FollowupPickup{Status: FollowupDone, DueAt: past}); f.IsOverdue() {
		t.Fatal("done followup should never be overdue")
	}
	if f := (FollowupPickup{Status: FollowupCancelled, DueAt: past}); f.IsOverdue() {
		t.Fatal("cancelled followup should never be overdue")
	}
}
