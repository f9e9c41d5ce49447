package models

import (
	"time"
)

// Participant represents a dashboard user that can take part in conversations.
// Identity data is owned by the participant directory; the messaging core
// never mutates it.
type Participant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"not null;size:255" json:"display_name"`
	Email       string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Role        string    `gorm:"not null;size:50" json:"role"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Participant
func (Participant) TableName() string {
	return "participants"
}
