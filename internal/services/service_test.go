package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"eco_collect/internal/models"
)

// testDB opens an isolated in-memory database migrated with the full schema.
// The database name is derived from the test name so parallel tests never
// share state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Zone{},
		&models.Ward{},
		&models.Truck{},
		&models.Bin{},
		&models.Route{},
		&models.RouteWard{},
		&models.RouteStop{},
		&models.FollowupPickup{},
		&models.TruckLocation{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:     role + " user",
		Email:    fmt.Sprintf("%s-%d@example.com", role, time.Now().UnixNano()),
		Password: "x",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed %s user: %v", role, err)
	}
	return &user
}

func seedTruck(t *testing.T, db *gorm.DB) *models.Truck {
	t.Helper()
	truck := models.Truck{
		TruckName: fmt.Sprintf("KCB %d", time.Now().UnixNano()),
		Status:    models.TruckActive,
	}
	if err := db.Create(&truck).Error; err != nil {
		t.Fatalf("seed truck: %v", err)
	}
	return &truck
}

func seedZone(t *testing.T, db *gorm.DB) *models.Zone {
	t.Helper()
	zone := models.Zone{ZoneName: fmt.Sprintf("Zone %d", time.Now().UnixNano())}
	if err := db.Create(&zone).Error; err != nil {
		t.Fatalf("seed zone: %v", err)
	}
	return &zone
}

func seedBin(t *testing.T, db *gorm.DB, wardNumber int, status models.BinStatus) *models.Bin {
	t.Helper()
	bin := models.Bin{WardNumber: wardNumber, Status: status, WasteType: models.WasteGeneral}
	if err := db.Create(&bin).Error; err != nil {
		t.Fatalf("seed bin: %v", err)
	}
	return &bin
}

func seedRoute(t *testing.T, db *gorm.DB, collectionDate time.Time) *models.Route {
	t.Helper()
	zone := seedZone(t, db)
	dispatcher := seedUser(t, db, "dispatcher")
	route := models.Route{
		RouteName:      "Morning run",
		ZoneID:         zone.ID,
		CollectionDate: collectionDate,
		DispatcherID:   dispatcher.ID,
		Status:         models.RoutePending,
	}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("seed route: %v", err)
	}
	return &route
}

func seedStop(t *testing.T, db *gorm.DB, routeID, binID uint, stopOrder int, status models.StopStatus) *models.RouteStop {
	t.Helper()
	stop := models.RouteStop{
		RouteID:   routeID,
		BinID:     binID,
		StopOrder: stopOrder,
		Status:    status,
	}
	if err := db.Create(&stop).Error; err != nil {
		t.Fatalf("seed route stop: %v", err)
	}
	return &stop
}

func countFollowups(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.FollowupPickup{}).Count(&n).Error; err != nil {
		t.Fatalf("count followups: %v", err)
	}
	return n
}
