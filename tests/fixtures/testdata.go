// Package fixtures provides fluent builders for test data.
package fixtures

import (
	"time"

	"github.com/adveron/messaging-backend/internal/models"
)

// ParticipantBuilder creates test Participant instances with fluent API
type ParticipantBuilder struct {
	participant models.Participant
}

// NewParticipantBuilder creates a new ParticipantBuilder with sensible defaults
func NewParticipantBuilder() *ParticipantBuilder {
	return &ParticipantBuilder{
		participant: models.Participant{
			ID:          1,
			DisplayName: "Ada Example",
			Email:       "ada@example.com",
			Role:        "advertiser",
			CreatedAt:   time.Now(),
		},
	}
}

// WithID sets the participant ID
func (b *ParticipantBuilder) WithID(id uint) *ParticipantBuilder {
	b.participant.ID = id
	return b
}

// WithDisplayName sets the display name
func (b *ParticipantBuilder) WithDisplayName(name string) *ParticipantBuilder {
	b.participant.DisplayName = name
	return b
}

// WithEmail sets the email address
func (b *ParticipantBuilder) WithEmail(email string) *ParticipantBuilder {
	b.participant.Email = email
	return b
}

// WithRole sets the role
func (b *ParticipantBuilder) WithRole(role string) *ParticipantBuilder {
	b.participant.Role = role
	return b
}

// Build returns the constructed Participant
func (b *ParticipantBuilder) Build() *models.Participant {
	return &b.participant
}

// BuildValue returns the constructed Participant as a value (not pointer)
func (b *ParticipantBuilder) BuildValue() models.Participant {
	return b.participant
}

// ConversationBuilder creates test Conversation instances with fluent API
type ConversationBuilder struct {
	conversation models.Conversation
}

// NewConversationBuilder creates a new ConversationBuilder with sensible defaults
func NewConversationBuilder() *ConversationBuilder {
	now := time.Now()
	return &ConversationBuilder{
		conversation: models.Conversation{
			ID:                1,
			ParticipantLowID:  1,
			ParticipantHighID: 2,
			UnreadCount:       0,
			IsArchived:        false,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

// WithID sets the conversation ID
func (b *ConversationBuilder) WithID(id uint) *ConversationBuilder {
	b.conversation.ID = id
	return b
}

// WithParticipants sets the participant pair, canonicalized
func (b *ConversationBuilder) WithParticipants(a, p uint) *ConversationBuilder {
	low, high := models.CanonicalPair(a, p)
	b.conversation.ParticipantLowID = low
	b.conversation.ParticipantHighID = high
	return b
}

// WithUnreadCount sets the unread counter
func (b *ConversationBuilder) WithUnreadCount(count int) *ConversationBuilder {
	b.conversation.UnreadCount = count
	return b
}

// WithArchived sets the archived flag
func (b *ConversationBuilder) WithArchived(archived bool) *ConversationBuilder {
	b.conversation.IsArchived = archived
	return b
}

// WithLastMessageID sets the last-message pointer
func (b *ConversationBuilder) WithLastMessageID(id uint) *ConversationBuilder {
	b.conversation.LastMessageID = &id
	return b
}

// WithUpdatedAt sets the activity timestamp
func (b *ConversationBuilder) WithUpdatedAt(t time.Time) *ConversationBuilder {
	b.conversation.UpdatedAt = t
	return b
}

// Build returns the constructed Conversation
func (b *ConversationBuilder) Build() *models.Conversation {
	return &b.conversation
}

// BuildValue returns the constructed Conversation as a value (not pointer)
func (b *ConversationBuilder) BuildValue() models.Conversation {
	return b.conversation
}

// MessageBuilder creates test Message instances with fluent API
type MessageBuilder struct {
	message models.Message
}

// NewMessageBuilder creates a new MessageBuilder with sensible defaults
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		message: models.Message{
			ID:             1,
			ConversationID: 1,
			SenderID:       1,
			RecipientID:    2,
			Content:        "Hello there",
			IsRead:         false,
			IsStarred:      false,
			CreatedAt:      time.Now(),
		},
	}
}

// WithID sets the message ID
func (b *MessageBuilder) WithID(id uint) *MessageBuilder {
	b.message.ID = id
	return b
}

// WithConversationID sets the conversation ID
func (b *MessageBuilder) WithConversationID(id uint) *MessageBuilder {
	b.message.ConversationID = id
	return b
}

// WithSenderID sets the sender ID
func (b *MessageBuilder) WithSenderID(id uint) *MessageBuilder {
	b.message.SenderID = id
	return b
}

// WithRecipientID sets the recipient ID
func (b *MessageBuilder) WithRecipientID(id uint) *MessageBuilder {
	b.message.RecipientID = id
	return b
}

// WithContent sets the message content
func (b *MessageBuilder) WithContent(content string) *MessageBuilder {
	b.message.Content = content
	return b
}

// WithRead sets the read flag and timestamp
func (b *MessageBuilder) WithRead(read bool) *MessageBuilder {
	b.message.IsRead = read
	if read {
		now := time.Now()
		b.message.ReadAt = &now
	} else {
		b.message.ReadAt = nil
	}
	return b
}

// WithStarred sets the starred flag
func (b *MessageBuilder) WithStarred(starred bool) *MessageBuilder {
	b.message.IsStarred = starred
	return b
}

// WithClientToken sets the client idempotency token
func (b *MessageBuilder) WithClientToken(token string) *MessageBuilder {
	b.message.ClientToken = &token
	return b
}

// WithCreatedAt sets the created timestamp
func (b *MessageBuilder) WithCreatedAt(t time.Time) *MessageBuilder {
	b.message.CreatedAt = t
	return b
}

// WithAttachments sets the attachments
func (b *MessageBuilder) WithAttachments(attachments ...models.Attachment) *MessageBuilder {
	b.message.Attachments = attachments
	return b
}

// Build returns the constructed Message
func (b *MessageBuilder) Build() *models.Message {
	return &b.message
}

// BuildValue returns the constructed Message as a value (not pointer)
func (b *MessageBuilder) BuildValue() models.Message {
	return b.message
}

// AttachmentBuilder creates test Attachment instances with fluent API
type AttachmentBuilder struct {
	attachment models.Attachment
}

// NewAttachmentBuilder creates a new AttachmentBuilder with sensible defaults
func NewAttachmentBuilder() *AttachmentBuilder {
	return &AttachmentBuilder{
		attachment: models.Attachment{
			ID:          1,
			MessageID:   1,
			Filename:    "report.pdf",
			ContentType: "application/pdf",
			FilePath:    "ab/cdef0123-4567-89ab-cdef-0123456789ab.pdf",
			SizeBytes:   2048,
		},
	}
}

// WithID sets the attachment ID
func (b *AttachmentBuilder) WithID(id uint) *AttachmentBuilder {
	b.attachment.ID = id
	return b
}

// WithMessageID sets the message ID
func (b *AttachmentBuilder) WithMessageID(id uint) *AttachmentBuilder {
	b.attachment.MessageID = id
	return b
}

// WithFilename sets the filename
func (b *AttachmentBuilder) WithFilename(filename string) *AttachmentBuilder {
	b.attachment.Filename = filename
	return b
}

// WithContentType sets the content type
func (b *AttachmentBuilder) WithContentType(contentType string) *AttachmentBuilder {
	b.attachment.ContentType = contentType
	return b
}

// WithFilePath sets the storage path
func (b *AttachmentBuilder) WithFilePath(path string) *AttachmentBuilder {
	b.attachment.FilePath = path
	return b
}

// WithSizeBytes sets the file size
func (b *AttachmentBuilder) WithSizeBytes(size int64) *AttachmentBuilder {
	b.attachment.SizeBytes = size
	return b
}

// Build returns the constructed Attachment
func (b *AttachmentBuilder) Build() *models.Attachment {
	return &b.attachment
}

// BuildValue returns the constructed Attachment as a value (not pointer)
func (b *AttachmentBuilder) BuildValue() models.Attachment {
	return b.attachment
}
