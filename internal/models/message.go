package models

import (
	"time"
)

// Message represents a single direct message inside a conversation. Rows are
// append-only: after creation only the read flag (one-directional) and the
// star flag (freely toggled) change.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null" json:"sender_id"`
	RecipientID    uint       `gorm:"not null;index:idx_messages_recipient_read,priority:1" json:"recipient_id"`
	Content        string     `json:"content,omitempty"`
	IsRead         bool       `gorm:"default:false;index:idx_messages_recipient_read,priority:2" json:"is_read"`
	IsStarred      bool       `gorm:"default:false" json:"is_starred"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	ClientToken    *string    `gorm:"uniqueIndex;size:64" json:"client_token,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Conversation Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
	Attachments  []Attachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// Snippet returns a shortened preview of the message content for list views.
func (m *Message) Snippet() string {
	const max = 120
	if len(m.Content) <= max {
		return m.Content
	}
	return m.Content[:max] + "..."
}
