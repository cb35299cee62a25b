package app

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chatlog/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Session{}, &model.Chat{}, &model.Event{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func setUpdatedAt(t *testing.T, db *gorm.DB, value interface{}, at time.Time) {
	t.Helper()
	if err := db.Model(value).UpdateColumn("updated_at", at).Error; err != nil {
		t.Fatalf("set updated_at: %v", err)
	}
}

// recordingPublisher collects published events for assertions.
type recordingPublisher struct {
	events []model.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event model.Event) error {
	p.events = append(p.events, event)
	return nil
}
