package repository

import (
	"fmt"

	"gorm.io/gorm"

	"chatlog/internal/model"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(event *model.Event) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create event failed: %w", err)
	}
	return nil
}

func (r *EventRepository) ListRecent(limit int) ([]model.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var events []model.Event
	if err := r.db.Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events failed: %w", err)
	}
	return events, nil
}
