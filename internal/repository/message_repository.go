package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adveron/messaging-backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message ledger data access.
// The ledger is append-only: rows are inserted once and only the read and
// star flags are ever updated. Counter maintenance belongs to the messaging
// service, not here.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	CreateWithAttachments(ctx context.Context, message *models.Message, attachments []models.Attachment) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	GetByClientToken(ctx context.Context, token string) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, recipientID uint) (int64, error)
	SetStarred(ctx context.Context, id uint, starred bool) error
	CountUnread(ctx context.Context, conversationID uint) (int64, error)
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a new message to the ledger
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	result := r.db.WithContext(ctx).Create(message)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("message with this client token already exists: %w", ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create message: %w", result.Error)
	}
	return nil
}

// CreateWithAttachments appends a message and its attachments in one
// transaction so no message ever becomes visible with half its attachments.
func (r *messageRepository) CreateWithAttachments(ctx context.Context, message *models.Message, attachments []models.Attachment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("message with this client token already exists: %w", ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to create message: %w", err)
		}

		for i := range attachments {
			attachments[i].MessageID = message.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return fmt.Errorf("failed to create attachment: %w", err)
			}
		}
		message.Attachments = attachments

		return nil
	})
}

// GetByID retrieves a message by its ID with preloaded attachments
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Preload("Attachments").First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// GetByClientToken retrieves the message created under an idempotency token.
// Used to turn a duplicate resend into a lookup of the original message.
func (r *messageRepository) GetByClientToken(ctx context.Context, token string) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Preload("Attachments").
		Where("client_token = ?", token).
		First(&message)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by client token: %w", result.Error)
	}
	return &message, nil
}

// ListByConversation retrieves the full thread ascending by creation time.
// Re-querying yields current state; this is a finite snapshot, not a stream.
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).Preload("Attachments").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list messages: %w", result.Error)
	}
	return messages, nil
}

// MarkRead transitions every unread message addressed to the recipient in
// the conversation to read, stamping read_at. Returns the number of rows
// transitioned; calling it twice in a row yields 0 the second time.
func (r *messageRepository) MarkRead(ctx context.Context, conversationID, recipientID uint) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND is_read = ?", conversationID, recipientID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages as read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SetStarred sets the star flag on a message
func (r *messageRepository) SetStarred(ctx context.Context, id uint, starred bool) error {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Update("is_starred", starred)
	if result.Error != nil {
		return fmt.Errorf("failed to set star flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread counts unread messages in a conversation from the ledger's
// ground truth. The conversation's cached counter can be rebuilt from this.
func (r *messageRepository) CountUnread(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND is_read = ?", conversationID, false).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", result.Error)
	}
	return count, nil
}
