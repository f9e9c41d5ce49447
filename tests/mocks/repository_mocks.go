package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/adveron/messaging-backend/internal/models"
)

// MockParticipantRepository implements repository.ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

// Create creates a new participant
func (m *MockParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

// GetByID retrieves a participant by its ID
func (m *MockParticipantRepository) GetByID(ctx context.Context, id uint) (*models.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

// GetByEmail retrieves a participant by email address
func (m *MockParticipantRepository) GetByEmail(ctx context.Context, email string) (*models.Participant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

// List retrieves participants with pagination
func (m *MockParticipantRepository) List(ctx context.Context, limit, offset int) ([]models.Participant, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Participant), args.Get(1).(int64), args.Error(2)
}

// MockConversationRepository implements repository.ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// Create inserts a conversation for the canonical pair
func (m *MockConversationRepository) Create(ctx context.Context, a, b uint) (*models.Conversation, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// FindByParticipants looks up the conversation for a participant pair
func (m *MockConversationRepository) FindByParticipants(ctx context.Context, a, b uint) (*models.Conversation, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// GetByID retrieves a conversation by its ID
func (m *MockConversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// IncrementUnread atomically bumps the unread counter
func (m *MockConversationRepository) IncrementUnread(ctx context.Context, id uint, by int) error {
	args := m.Called(ctx, id, by)
	return args.Error(0)
}

// ResetUnread zeroes the unread counter
func (m *MockConversationRepository) ResetUnread(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SetUnread sets the unread counter to an absolute value
func (m *MockConversationRepository) SetUnread(ctx context.Context, id uint, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

// SetArchived flips the archived flag
func (m *MockConversationRepository) SetArchived(ctx context.Context, id uint, archived bool) error {
	args := m.Called(ctx, id, archived)
	return args.Error(0)
}

// Touch updates the last-message pointer and activity timestamp
func (m *MockConversationRepository) Touch(ctx context.Context, id uint, lastMessageID uint) error {
	args := m.Called(ctx, id, lastMessageID)
	return args.Error(0)
}

// List retrieves conversations for a viewer with pagination
func (m *MockConversationRepository) List(ctx context.Context, viewerID uint, archived bool, limit, offset int) ([]models.ConversationListItem, int64, error) {
	args := m.Called(ctx, viewerID, archived, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ConversationListItem), args.Get(1).(int64), args.Error(2)
}

// MockMessageRepository implements repository.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Create appends a message to the ledger
func (m *MockMessageRepository) Create(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// CreateWithAttachments appends a message and its attachments in a transaction
func (m *MockMessageRepository) CreateWithAttachments(ctx context.Context, message *models.Message, attachments []models.Attachment) error {
	args := m.Called(ctx, message, attachments)
	return args.Error(0)
}

// GetByID retrieves a message by its ID with preloaded attachments
func (m *MockMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// GetByClientToken retrieves a message by its client idempotency token
func (m *MockMessageRepository) GetByClientToken(ctx context.Context, token string) (*models.Message, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// ListByConversation retrieves a conversation's messages oldest-first
func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// MarkRead marks the recipient's unread messages as read
func (m *MockMessageRepository) MarkRead(ctx context.Context, conversationID, recipientID uint) (int64, error) {
	args := m.Called(ctx, conversationID, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

// SetStarred sets a message's starred flag
func (m *MockMessageRepository) SetStarred(ctx context.Context, id uint, starred bool) error {
	args := m.Called(ctx, id, starred)
	return args.Error(0)
}

// CountUnread counts unread messages in a conversation
func (m *MockMessageRepository) CountUnread(ctx context.Context, conversationID uint) (int64, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAttachmentRepository implements repository.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// GetByID retrieves an attachment by its ID
func (m *MockAttachmentRepository) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

// ListByMessage retrieves all attachments for a message
func (m *MockAttachmentRepository) ListByMessage(ctx context.Context, messageID uint) ([]models.Attachment, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}
