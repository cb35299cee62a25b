package repository

import (
	"errors"
	"testing"

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
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Session{}, &model.Chat{}, &model.Event{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestCreateTranslatesDuplicateKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	first := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err := repo.Create(dup)
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("err = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByID(42)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if user != nil {
		t.Fatalf("user = %+v, want nil", user)
	}
}

func TestDeleteWithChatsIsTransactional(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewUserRepository(db)
	sessionRepo := NewSessionRepository(db)
	chatRepo := NewChatRepository(db)

	user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	session := &model.Session{UserID: user.ID, Title: "talk"}
	if err := sessionRepo.Create(session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	for i := 0; i < 2; i++ {
		chat := &model.Chat{UserID: user.ID, SessionID: session.ID, Message: "hi", Answer: "yo"}
		if err := chatRepo.Create(chat); err != nil {
			t.Fatalf("create chat: %v", err)
		}
	}

	if err := sessionRepo.DeleteWithChats(session.ID); err != nil {
		t.Fatalf("delete with chats: %v", err)
	}

	var chatCount int64
	if err := db.Model(&model.Chat{}).Where("session_id = ?", session.ID).Count(&chatCount).Error; err != nil {
		t.Fatalf("count chats: %v", err)
	}
	if chatCount != 0 {
		t.Fatalf("chat count = %d, want 0", chatCount)
	}

	gone, err := sessionRepo.GetByID(session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if gone != nil {
		t.Fatalf("session = %+v, want nil", gone)
	}
}
