package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chatlog/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return fmt.Errorf("create chat failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) GetByID(id uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query chat by id failed: %w", err)
	}
	return &chat, nil
}
