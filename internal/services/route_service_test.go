package services

import (
	"errors"
	"testing"
	"time"

	"eco_collect/internal/bins"
	"eco_collect/internal/models"
)

func TestCreateRouteValidatesReferences(t *testing.T) {
	db := testDB(t)
	zone := seedZone(t, db)
	dispatcher := seedUser(t, db, "dispatcher")
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	svc := NewRouteService(db)

	_, err := svc.CreateRoute(CreateRouteInput{
		RouteName: "Monday run", ZoneID: 9999, CollectionDate: date, DispatcherID: dispatcher.ID,
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown zone: err = %v, want ErrNotFound", err)
	}

	unknownTruck := uint(9999)
	_, err = svc.CreateRoute(CreateRouteInput{
		RouteName: "Monday run", ZoneID: zone.ID, CollectionDate: date,
		DispatcherID: dispatcher.ID, TruckID: &unknownTruck,
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown truck: err = %v, want ErrNotFound", err)
	}

	route, err := svc.CreateRoute(CreateRouteInput{
		RouteName: "Monday run", ZoneID: zone.ID, CollectionDate: date, DispatcherID: dispatcher.ID,
	})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if route.Status != models.RoutePending {
		t.Fatalf("new route status = %s, want pending", route.Status)
	}
	if route.TruckID != nil || route.CollectorID != nil {
		t.Fatal("truck and collector must start unset")
	}
}

func TestAssignCollectorAndTruck(t *testing.T) {
	db := testDB(t)
	route := seedRoute(t, db, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	collector := seedUser(t, db, "collector")
	truck := seedTruck(t, db)

	svc := NewRouteService(db)

	if _, err := svc.AssignCollector(route.ID, 9999); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown collector: err = %v, want ErrNotFound", err)
	}
	updated, err := svc.AssignCollector(route.ID, collector.ID)
	if err != nil {
		t.Fatalf("assign collector: %v", err)
	}
	if updated.CollectorID == nil || *updated.CollectorID != collector.ID {
		t.Fatalf("collector = %v, want %d", updated.CollectorID, collector.ID)
	}

	updated, err = svc.AssignTruck(route.ID, truck.ID)
	if err != nil {
		t.Fatalf("assign truck: %v", err)
	}
	if updated.TruckID == nil || *updated.TruckID != truck.ID {
		t.Fatalf("truck = %v, want %d", updated.TruckID, truck.ID)
	}
}

func TestDeleteRouteCascadesToWardsAndStops(t *testing.T) {
	db := testDB(t)
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	route := seedRoute(t, db, date)
	other := seedRoute(t, db, date)

	seedBin(t, db, 1, models.BinActive)
	seedBin(t, db, 1, models.BinActive)

	wardSvc := NewRouteWardService(db, bins.NewDirectory(db))
	if _, err := wardSvc.CreateRouteWard(route.ID, 1, "Westlands", 1); err != nil {
		t.Fatalf("create ward on route: %v", err)
	}
	if _, err := wardSvc.CreateRouteWard(other.ID, 1, "Westlands", 1); err != nil {
		t.Fatalf("create ward on other route: %v", err)
	}

	if err := NewRouteService(db).DeleteRoute(route.ID); err != nil {
		t.Fatalf("delete route: %v", err)
	}

	var stops, wards int64
	db.Model(&models.RouteStop{}).Where("route_id = ?", route.ID).Count(&stops)
	db.Model(&models.RouteWard{}).Where("route_id = ?", route.ID).Count(&wards)
	if stops != 0 || wards != 0 {
		t.Fatalf("cascade incomplete: %d stops, %d wards left", stops, wards)
	}

	// The sibling route is untouched.
	var otherStops int64
	db.Model(&models.RouteStop{}).Where("route_id = ?", other.ID).Count(&otherStops)
	if otherStops != 2 {
		t.Fatalf("other route stops = %d, want 2", otherStops)
	}

	if _, err := NewRouteService(db).GetRouteByID(route.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("deleted route lookup: err = %v, want ErrNotFound", err)
	}
}
