package model

import "time"

// Event is an audit record written asynchronously by the event worker.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:64;not null;index" json:"kind"`
	UserID    uint      `gorm:"index" json:"user_id"`
	EntityID  uint      `json:"entity_id"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	EventUserCreated    = "user.created"
	EventSessionCreated = "session.created"
	EventSessionDeleted = "session.deleted"
	EventChatCreated    = "chat.created"
)
