package model

import "time"

// Chat is one message/answer pair inside a session. Chats are reachable only
// through their session; deleting the session removes them.
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
