package models

import (
	"time"
)

// Conversation represents the persistent thread identity for one unordered
// pair of participants. The pair is stored canonicalized (lower ID first) so
// a composite unique index can enforce one conversation per pair regardless
// of who messaged first.
type Conversation struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ParticipantLowID  uint      `gorm:"not null;uniqueIndex:idx_conversations_pair,priority:1" json:"participant_low_id"`
	ParticipantHighID uint      `gorm:"not null;uniqueIndex:idx_conversations_pair,priority:2" json:"participant_high_id"`
	UnreadCount       int       `gorm:"not null;default:0" json:"unread_count"`
	IsArchived        bool      `gorm:"not null;default:false" json:"is_archived"`
	LastMessageID     *uint     `json:"last_message_id,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"index:idx_conversations_updated,sort:desc" json:"updated_at"`

	// Relationships. LastMessageID is a plain pointer column on purpose: a
	// foreign key here would be circular with messages.conversation_id.
	ParticipantLow  Participant `gorm:"foreignKey:ParticipantLowID" json:"-"`
	ParticipantHigh Participant `gorm:"foreignKey:ParticipantHighID" json:"-"`
}

// TableName returns the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// CanonicalPair orders two participant IDs so the lower one always comes
// first. Storage and lookup both go through this, which is what makes
// FindByParticipants(a, b) and FindByParticipants(b, a) hit the same row.
func CanonicalPair(a, b uint) (low, high uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether the given participant belongs to this
// conversation.
func (c *Conversation) HasParticipant(participantID uint) bool {
	return c.ParticipantLowID == participantID || c.ParticipantHighID == participantID
}

// OtherParticipantID returns the counterpart of the given participant in
// this conversation.
func (c *Conversation) OtherParticipantID(participantID uint) uint {
	if c.ParticipantLowID == participantID {
		return c.ParticipantHighID
	}
	return c.ParticipantLowID
}

// ConversationListItem is a lightweight version for inbox/archive list views
type ConversationListItem struct {
	ID                 uint      `json:"id"`
	OtherParticipantID uint      `json:"other_participant_id"`
	OtherDisplayName   string    `json:"other_display_name"`
	OtherEmail         string    `json:"other_email"`
	UnreadCount        int       `json:"unread_count"`
	IsArchived         bool      `json:"is_archived"`
	LastMessageSnippet string    `json:"last_message_snippet,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}
