package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adveron/messaging-backend/internal/models"
	"gorm.io/gorm"
)

// ConversationRepository defines the interface for conversation data access.
// It owns the aggregate state of a thread (unread counter, archived flag,
// last-message pointer); all mutators are narrow single-field atomic updates
// so concurrent senders never do read-modify-write on the row.
type ConversationRepository interface {
	Create(ctx context.Context, a, b uint) (*models.Conversation, error)
	FindByParticipants(ctx context.Context, a, b uint) (*models.Conversation, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	IncrementUnread(ctx context.Context, id uint, by int) error
	ResetUnread(ctx context.Context, id uint) error
	SetUnread(ctx context.Context, id uint, count int) error
	SetArchived(ctx context.Context, id uint, archived bool) error
	Touch(ctx context.Context, id uint, lastMessageID uint) error
	List(ctx context.Context, viewerID uint, archived bool, limit, offset int) ([]models.ConversationListItem, int64, error)
}

// conversationRepository implements ConversationRepository using GORM
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository instance
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create inserts a conversation row for the canonicalized pair. Returns
// ErrDuplicateEntry if a row for the pair already exists; callers racing on
// first contact are expected to fall back to FindByParticipants.
func (r *conversationRepository) Create(ctx context.Context, a, b uint) (*models.Conversation, error) {
	low, high := models.CanonicalPair(a, b)
	conversation := &models.Conversation{
		ParticipantLowID:  low,
		ParticipantHighID: high,
	}
	result := r.db.WithContext(ctx).Create(conversation)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return nil, fmt.Errorf("conversation for pair (%d, %d) already exists: %w", low, high, ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create conversation: %w", result.Error)
	}
	return conversation, nil
}

// FindByParticipants looks up the conversation for an unordered pair. The
// pair is canonicalized before lookup, so argument order never matters.
func (r *conversationRepository) FindByParticipants(ctx context.Context, a, b uint) (*models.Conversation, error) {
	low, high := models.CanonicalPair(a, b)
	var conversation models.Conversation
	result := r.db.WithContext(ctx).
		Where("participant_low_id = ? AND participant_high_id = ?", low, high).
		First(&conversation)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find conversation by participants: %w", result.Error)
	}
	return &conversation, nil
}

// GetByID retrieves a conversation by its ID
func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	result := r.db.WithContext(ctx).First(&conversation, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation by ID: %w", result.Error)
	}
	return &conversation, nil
}

// IncrementUnread atomically bumps the unread counter. The increment happens
// in the database, not via read-modify-write, so concurrent sends to the
// same conversation never lose updates.
func (r *conversationRepository) IncrementUnread(ctx context.Context, id uint, by int) error {
	result := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("unread_count", gorm.Expr("unread_count + ?", by))
	if result.Error != nil {
		return fmt.Errorf("failed to increment unread count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUnread sets the unread counter back to zero
func (r *conversationRepository) ResetUnread(ctx context.Context, id uint) error {
	return r.SetUnread(ctx, id, 0)
}

// SetUnread overwrites the unread counter. Used by the recount maintenance
// operation when the incremental counter is suspected of drift.
func (r *conversationRepository) SetUnread(ctx context.Context, id uint, count int) error {
	result := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"unread_count": count,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set unread count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetArchived sets the archived flag. Archival is soft and reversible;
// conversations are never deleted.
func (r *conversationRepository) SetArchived(ctx context.Context, id uint, archived bool) error {
	result := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("is_archived", archived)
	if result.Error != nil {
		return fmt.Errorf("failed to set archived flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Touch updates the last-message pointer and refreshes updated_at
func (r *conversationRepository) Touch(ctx context.Context, id uint, lastMessageID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message_id": lastMessageID,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to touch conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves the viewer's conversations, split by archived state and
// ordered by updated_at descending, with the counterpart's identity and a
// snippet of the last message for list views.
func (r *conversationRepository) List(ctx context.Context, viewerID uint, archived bool, limit, offset int) ([]models.ConversationListItem, int64, error) {
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("(participant_low_id = ? OR participant_high_id = ?) AND is_archived = ?", viewerID, viewerID, archived).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	var results []models.ConversationListItem

	query := `
		SELECT
			c.id,
			p.id AS other_participant_id,
			p.display_name AS other_display_name,
			p.email AS other_email,
			c.unread_count,
			c.is_archived,
			COALESCE((SELECT m.content FROM messages m WHERE m.id = c.last_message_id), '') AS last_message_snippet,
			c.updated_at
		FROM conversations c
		JOIN participants p
			ON p.id = CASE WHEN c.participant_low_id = ? THEN c.participant_high_id ELSE c.participant_low_id END
		WHERE (c.participant_low_id = ? OR c.participant_high_id = ?)
			AND c.is_archived = ?
		ORDER BY c.updated_at DESC
		LIMIT ? OFFSET ?
	`

	if err := r.db.WithContext(ctx).Raw(query, viewerID, viewerID, viewerID, archived, limit, offset).Scan(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list conversations: %w", err)
	}

	return results, total, nil
}
