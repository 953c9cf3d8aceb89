package bins

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"eco_collect/internal/models"
)

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
	if err := db.AutoMigrate(&models.Bin{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB, ward int, status models.BinStatus) uint {
	t.Helper()
	bin := models.Bin{WardNumber: ward, Status: status}
	if err := db.Create(&bin).Error; err != nil {
		t.Fatalf("seed bin: %v", err)
	}
	return bin.ID
}

func TestActiveBinsForWardFiltersAndOrders(t *testing.T) {
	db := testDB(t)
	a := seed(t, db, 5, models.BinActive)
	seed(t, db, 5, models.BinInactive)
	b := seed(t, db, 5, models.BinActive)
	seed(t, db, 5, models.BinMissing)
	seed(t, db, 6, models.BinActive)

	ids, err := NewDirectory(db).ActiveBinsForWard(5)
	if err != nil {
		t.Fatalf("active bins: %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("ids = %v, want [%d %d]", ids, a, b)
	}
}

func TestBinsForWardIgnoresStatus(t *testing.T) {
	db := testDB(t)
	seed(t, db, 5, models.BinActive)
	seed(t, db, 5, models.BinInactive)
	seed(t, db, 5, models.BinMissing)
	seed(t, db, 6, models.BinActive)

	ids, err := NewDirectory(db).BinsForWard(5)
	if err != nil {
		t.Fatalf("bins for ward: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}
}
