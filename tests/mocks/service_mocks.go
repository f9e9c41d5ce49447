package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/adveron/messaging-backend/internal/models"
	"github.com/adveron/messaging-backend/internal/services"
)

// MockMessagingService implements services.MessagingService for handler tests
type MockMessagingService struct {
	mock.Mock
}

// Send delivers a message
func (m *MockMessagingService) Send(ctx context.Context, input services.SendInput) (*models.Message, *models.Conversation, error) {
	args := m.Called(ctx, input)
	var msg *models.Message
	var conv *models.Conversation
	if args.Get(0) != nil {
		msg = args.Get(0).(*models.Message)
	}
	if args.Get(1) != nil {
		conv = args.Get(1).(*models.Conversation)
	}
	return msg, conv, args.Error(2)
}

// OpenConversation fetches a thread and marks it read for the viewer
func (m *MockMessagingService) OpenConversation(ctx context.Context, conversationID, viewerID uint) (*models.Conversation, []models.Message, error) {
	args := m.Called(ctx, conversationID, viewerID)
	var conv *models.Conversation
	var msgs []models.Message
	if args.Get(0) != nil {
		conv = args.Get(0).(*models.Conversation)
	}
	if args.Get(1) != nil {
		msgs = args.Get(1).([]models.Message)
	}
	return conv, msgs, args.Error(2)
}

// ToggleArchive flips a conversation's archived flag
func (m *MockMessagingService) ToggleArchive(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// ToggleStar flips a message's starred flag
func (m *MockMessagingService) ToggleStar(ctx context.Context, messageID uint) (*models.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// ListInbox lists active conversations for a viewer
func (m *MockMessagingService) ListInbox(ctx context.Context, viewerID uint, limit, offset int) ([]models.ConversationListItem, int64, error) {
	args := m.Called(ctx, viewerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ConversationListItem), args.Get(1).(int64), args.Error(2)
}

// ListArchived lists archived conversations for a viewer
func (m *MockMessagingService) ListArchived(ctx context.Context, viewerID uint, limit, offset int) ([]models.ConversationListItem, int64, error) {
	args := m.Called(ctx, viewerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ConversationListItem), args.Get(1).(int64), args.Error(2)
}

// RecountUnread rebuilds the unread counter from the ledger
func (m *MockMessagingService) RecountUnread(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// PublishRecord records one push event sent through the mock publisher
type PublishRecord struct {
	ConversationID uint
	Message        *models.Message
}

// MockPublisher implements services.MessagePublisher and records every push
type MockPublisher struct {
	Published []PublishRecord
}

// PublishNewMessage records a new-message push event
func (m *MockPublisher) PublishNewMessage(conversationID uint, message *models.Message) {
	m.Published = append(m.Published, PublishRecord{
		ConversationID: conversationID,
		Message:        message,
	})
}

// MockNotifier implements services.Notifier
type MockNotifier struct {
	mock.Mock
}

// NotifyNewMessage delivers an out-of-band notification
func (m *MockNotifier) NotifyNewMessage(ctx context.Context, recipient, sender *models.Participant, message *models.Message) error {
	args := m.Called(ctx, recipient, sender, message)
	return args.Error(0)
}

// MockDirectory implements directory.Directory
type MockDirectory struct {
	mock.Mock
}

// Resolve looks up a participant by ID
func (m *MockDirectory) Resolve(ctx context.Context, id uint) (*models.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}
