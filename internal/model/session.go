package model

import "time"

type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:2000;not null" json:"session_title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chats []Chat `gorm:"constraint:OnDelete:CASCADE" json:"chats,omitempty"`
}
