package handler

import (
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/lifeevents/les/internal/database"
	"github.com/lifeevents/les/internal/model"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestEvent(t *testing.T, db *gorm.DB) *model.EventModel {
	t.Helper()

	event := model.EventModel{
		Id:          uuid.NewString(),
		Title:       "Mama Nkechi Thanksgiving",
		EventType:   model.EventTypeThanksgiving,
		TargetCents: 20_000_000,
		OrganizerId: uuid.NewString(),
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	return &event
}

func raisedCents(t *testing.T, db *gorm.DB, eventId string) int64 {
	t.Helper()

	var event model.EventModel
	if err := db.First(&event, "id = ?", eventId).Error; err != nil {
		t.Fatalf("failed to load event: %v", err)
	}
	return event.RaisedCents
}

func contributionCount(t *testing.T, db *gorm.DB, eventId string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&model.ContributionModel{}).
		Where("event_id = ?", eventId).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count contributions: %v", err)
	}
	return count
}
