package services

import (
	"errors"
	"testing"
	"time"

	"eco_collect/internal/models"
)

func TestCreateFromRouteStopIsIdempotent(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin := seedBin(t, db, 1, models.BinActive)
	stop := seedStop(t, db, route.ID, bin.ID, 1, models.StopMissed)

	svc := NewFollowupService(db)
	first, err := svc.CreateFromRouteStop(stop, models.FollowupMissed)
	if err != nil {
		t.Fatalf("first creation: %v", err)
	}
	second, err := svc.CreateFromRouteStop(stop, models.FollowupMissed)
	if err != nil {
		t.Fatalf("second creation must be a benign no-op: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("second creation returned a different row: %d vs %d", first.ID, second.ID)
	}
	if n := countFollowups(t, db); n != 1 {
		t.Fatalf("followup count = %d, want 1", n)
	}
}

func TestCreateFromRouteStopCopiesBinContext(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	bin := models.Bin{WardNumber: 4, Status: models.BinActive, WasteType: models.WasteRecyclable}
	if err := db.Create(&bin).Error; err != nil {
		t.Fatalf("seed bin: %v", err)
	}
	ward := models.Ward{ZoneID: route.ZoneID, WardNumber: 4, WardName: "Lavington"}
	if err := db.Create(&ward).Error; err != nil {
		t.Fatalf("seed ward: %v", err)
	}
	driver := seedUser(t, db, "collector")
	stop := models.RouteStop{
		RouteID: route.ID, BinID: bin.ID, DriverID: &driver.ID,
		StopOrder: 1, Status: models.StopMissed,
	}
	if err := db.Create(&stop).Error; err != nil {
		t.Fatalf("seed stop: %v", err)
	}

	followup, err := NewFollowupService(db).CreateFromRouteStop(&stop, models.FollowupMissed)
	if err != nil {
		t.Fatalf("create followup: %v", err)
	}
	if followup.WasteType != models.WasteRecyclable {
		t.Fatalf("waste type = %s, want Recyclable", followup.WasteType)
	}
	if followup.WardID == nil || *followup.WardID != ward.ID {
		t.Fatalf("ward id = %v, want %d", followup.WardID, ward.ID)
	}
	if followup.OriginalDriverID == nil || *followup.OriginalDriverID != driver.ID {
		t.Fatalf("original driver = %v, want %d", followup.OriginalDriverID, driver.ID)
	}
}

func TestAssignValidatesDriverAndTruck(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin := seedBin(t, db, 1, models.BinActive)
	stop := seedStop(t, db, route.ID, bin.ID, 1, models.StopMissed)

	svc := NewFollowupService(db)
	followup, err := svc.CreateFromRouteStop(stop, models.FollowupMissed)
	if err != nil {
		t.Fatalf("create followup: %v", err)
	}

	if _, err := svc.Assign(followup.ID, 9999, 9999); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("assign with unknown refs: err = %v, want ErrNotFound", err)
	}

	driver := seedUser(t, db, "collector")
	truck := seedTruck(t, db)
	assigned, err := svc.Assign(followup.ID, driver.ID, truck.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != models.FollowupAssigned {
		t.Fatalf("status = %s, want ASSIGNED", assigned.Status)
	}

	// A second assignment must be rejected: the followup is no longer pending.
	if _, err := svc.Assign(followup.ID, driver.ID, truck.ID); !errors.Is(err, models.ErrIllegalState) {
		t.Fatalf("second assign: err = %v, want ErrIllegalState", err)
	}
}

func TestCompleteAssignmentReschedulesSourceStop(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin := seedBin(t, db, 1, models.BinActive)
	stop := seedStop(t, db, route.ID, bin.ID, 1, models.StopMissed)

	svc := NewFollowupService(db)
	followup, err := svc.CreateFromRouteStop(stop, models.FollowupMissed)
	if err != nil {
		t.Fatalf("create followup: %v", err)
	}

	driver := seedUser(t, db, "collector")
	truck := seedTruck(t, db)
	newDate := time.Date(2025, 6, 4, 8, 0, 0, 0, time.UTC)

	completed, err := svc.CompleteAssignment(followup.ID, driver.ID, truck.ID, newDate)
	if err != nil {
		t.Fatalf("complete assignment: %v", err)
	}
	if completed.Status != models.FollowupInProgress {
		t.Fatalf("followup status = %s, want IN_PROGRESS", completed.Status)
	}

	var fresh models.RouteStop
	if err := db.First(&fresh, stop.ID).Error; err != nil {
		t.Fatalf("reload stop: %v", err)
	}
	if fresh.Status != models.StopPending {
		t.Fatalf("source stop status = %s, want PENDING", fresh.Status)
	}
	if fresh.ReassignedToDriverID == nil || *fresh.ReassignedToDriverID != driver.ID {
		t.Fatalf("reassigned driver = %v, want %d", fresh.ReassignedToDriverID, driver.ID)
	}
	if fresh.PlannedEta == nil || !fresh.PlannedEta.Equal(newDate) {
		t.Fatalf("planned eta = %v, want %v", fresh.PlannedEta, newDate)
	}
}

func TestMarkCompletedRequiresAssignment(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin := seedBin(t, db, 1, models.BinActive)
	stop := seedStop(t, db, route.ID, bin.ID, 1, models.StopMissed)

	svc := NewFollowupService(db)
	followup, err := svc.CreateFromRouteStop(stop, models.FollowupMissed)
	if err != nil {
		t.Fatalf("create followup: %v", err)
	}

	if _, err := svc.MarkCompleted(followup.ID, "", ""); !errors.Is(err, models.ErrIllegalState) {
		t.Fatalf("complete pending followup: err = %v, want ErrIllegalState", err)
	}

	driver := seedUser(t, db, "collector")
	truck := seedTruck(t, db)
	if _, err := svc.Assign(followup.ID, driver.ID, truck.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	done, err := svc.MarkCompleted(followup.ID, "collected on retry", "https://cdn.example.com/p.jpg")
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if done.Status != models.FollowupDone || done.CompletedAt == nil {
		t.Fatalf("completion not recorded: %+v", done)
	}

	// The completion photo lands on the source stop.
	var fresh models.RouteStop
	if err := db.First(&fresh, stop.ID).Error; err != nil {
		t.Fatalf("reload stop: %v", err)
	}
	if fresh.PhotoURL != "https://cdn.example.com/p.jpg" {
		t.Fatalf("photo url = %q", fresh.PhotoURL)
	}
}

func TestCancelIsTerminal(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin := seedBin(t, db, 1, models.BinActive)
	stop := seedStop(t, db, route.ID, bin.ID, 1, models.StopMissed)

	svc := NewFollowupService(db)
	followup, err := svc.CreateFromRouteStop(stop, models.FollowupMissed)
	if err != nil {
		t.Fatalf("create followup: %v", err)
	}

	cancelled, err := svc.Cancel(followup.ID, "duplicate report")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.FollowupCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	if _, err := svc.Cancel(followup.ID, "again"); !errors.Is(err, models.ErrIllegalState) {
		t.Fatalf("second cancel: err = %v, want ErrIllegalState", err)
	}
}

func TestDetectMissedSkippedRouteStopsFillsGaps(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin1 := seedBin(t, db, 1, models.BinActive)
	bin2 := seedBin(t, db, 1, models.BinActive)
	bin3 := seedBin(t, db, 1, models.BinActive)
	bin4 := seedBin(t, db, 1, models.BinActive)

	missed := seedStop(t, db, route.ID, bin1.ID, 1, models.StopMissed)
	seedStop(t, db, route.ID, bin2.ID, 2, models.StopSkipped)
	seedStop(t, db, route.ID, bin3.ID, 3, models.StopMissed)
	seedStop(t, db, route.ID, bin4.ID, 4, models.StopDone)

	svc := NewFollowupService(db)
	// One stop already has its followup; the sweep must not duplicate it.
	if _, err := svc.CreateFromRouteStop(missed, models.FollowupMissed); err != nil {
		t.Fatalf("pre-create followup: %v", err)
	}

	created, err := svc.DetectMissedSkippedRouteStops()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if created != 2 {
		t.Fatalf("created = %d, want 2", created)
	}
	if n := countFollowups(t, db); n != 3 {
		t.Fatalf("followup count = %d, want 3", n)
	}

	// The sweep is idempotent.
	created, err = svc.DetectMissedSkippedRouteStops()
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if created != 0 {
		t.Fatalf("second sweep created = %d, want 0", created)
	}
}

func TestGetOverdueReturnsOnlyPendingPastDue(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin1 := seedBin(t, db, 1, models.BinActive)
	bin2 := seedBin(t, db, 1, models.BinActive)
	stop1 := seedStop(t, db, route.ID, bin1.ID, 1, models.StopMissed)
	stop2 := seedStop(t, db, route.ID, bin2.ID, 2, models.StopMissed)

	past := time.Now().Add(-2 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	overdue := models.FollowupPickup{
		SourceRouteStopID: stop1.ID, BinID: bin1.ID,
		Status: models.FollowupPending, ReasonCode: models.FollowupMissed,
		Priority: models.PriorityHigh, DueAt: past,
	}
	notYet := models.FollowupPickup{
		SourceRouteStopID: stop2.ID, BinID: bin2.ID,
		Status: models.FollowupPending, ReasonCode: models.FollowupMissed,
		Priority: models.PriorityHigh, DueAt: future,
	}
	if err := db.Create(&overdue).Error; err != nil {
		t.Fatalf("seed overdue followup: %v", err)
	}
	if err := db.Create(&notYet).Error; err != nil {
		t.Fatalf("seed future followup: %v", err)
	}

	got, err := NewFollowupService(db).GetOverdue()
	if err != nil {
		t.Fatalf("get overdue: %v", err)
	}
	if len(got) != 1 || got[0].ID != overdue.ID {
		t.Fatalf("overdue list = %+v, want just followup %d", got, overdue.ID)
	}
}

func TestUpdatePriorityAndReasonCodesRepairsDrift(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	bin := seedBin(t, db, 1, models.BinActive)
	stop := seedStop(t, db, route.ID, bin.ID, 1, models.StopSkipped)

	// Skipped stops should carry NORMAL priority; seed the wrong one.
	drifted := models.FollowupPickup{
		SourceRouteStopID: stop.ID, BinID: bin.ID,
		Status: models.FollowupPending, ReasonCode: models.FollowupSkipped,
		Priority: models.PriorityHigh, DueAt: time.Now().Add(48 * time.Hour),
	}
	if err := db.Create(&drifted).Error; err != nil {
		t.Fatalf("seed followup: %v", err)
	}

	svc := NewFollowupService(db)
	updated, err := svc.UpdatePriorityAndReasonCodes()
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	fresh, err := svc.GetByID(drifted.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Priority != models.PriorityNormal {
		t.Fatalf("priority = %s, want NORMAL", fresh.Priority)
	}

	updated, err = svc.UpdatePriorityAndReasonCodes()
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if updated != 0 {
		t.Fatalf("second recompute updated = %d, want 0", updated)
	}
}
