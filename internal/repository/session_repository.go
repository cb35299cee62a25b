package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chatlog/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(id uint) (*model.Session, error) {
	var session model.Session
	if err := r.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session by id failed: %w", err)
	}
	return &session, nil
}

// DeleteWithChats removes the session's chats and the session itself in one
// transaction.
func (r *SessionRepository) DeleteWithChats(sessionID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.Chat{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Session{}, sessionID).Error
	})
	if err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}
