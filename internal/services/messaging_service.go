// Package services contains the messaging orchestration core: conversation
// resolve-or-create, message send, read-receipt propagation, archival and
// starring, composed over the conversation index and the message ledger.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/adveron/messaging-backend/internal/directory"
	apperrors "github.com/adveron/messaging-backend/internal/errors"
	"github.com/adveron/messaging-backend/internal/models"
	"github.com/adveron/messaging-backend/internal/repository"
	"github.com/adveron/messaging-backend/internal/storage"
	"github.com/adveron/messaging-backend/internal/validator"
)

// maxCreateRetries bounds the conversation resolve-or-create conflict loop.
// One retry is enough in practice: after a lost create race the row exists.
const maxCreateRetries = 3

// AttachmentUpload describes one attachment carried by a send request.
// Content is streamed to the attachment store before the ledger append.
type AttachmentUpload struct {
	Filename    string
	ContentType string
	SizeBytes   int64
	Content     io.Reader
}

// SendInput carries the parameters of a send operation. Either
// ConversationID (continuing an existing thread) or RecipientID (first
// contact or thread lookup by pair) must identify the destination.
type SendInput struct {
	SenderID       uint
	RecipientID    uint
	ConversationID *uint
	Content        string
	ClientToken    string
	Attachments    []AttachmentUpload
}

// MessagePublisher pushes advisory new-message events to connected clients.
// Delivery is best-effort and never gates the outcome of a send.
type MessagePublisher interface {
	PublishNewMessage(conversationID uint, message *models.Message)
}

// Notifier delivers out-of-band notifications about new messages.
// Failures are logged, never propagated.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, recipient, sender *models.Participant, message *models.Message) error
}

// MessagingService defines the operation surface consumed by the API layer
type MessagingService interface {
	Send(ctx context.Context, input SendInput) (*models.Message, *models.Conversation, error)
	OpenConversation(ctx context.Context, conversationID, viewerID uint) (*models.Conversation, []models.Message, error)
	ToggleArchive(ctx context.Context, conversationID uint) (*models.Conversation, error)
	ToggleStar(ctx context.Context, messageID uint) (*models.Message, error)
	ListInbox(ctx context.Context, viewerID uint, limit, offset int) ([]models.ConversationListItem, int64, error)
	ListArchived(ctx context.Context, viewerID uint, limit, offset int) ([]models.ConversationListItem, int64, error)
	RecountUnread(ctx context.Context, conversationID uint) (*models.Conversation, error)
}

// messagingService implements MessagingService
type messagingService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	directory     directory.Directory
	fileStorage   storage.FileStorage
	publisher     MessagePublisher
	notifier      Notifier
	logger        *slog.Logger
}

// NewMessagingService creates a new MessagingService. Publisher and notifier
// are optional; pass nil to disable push and email notification.
func NewMessagingService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	dir directory.Directory,
	fileStorage storage.FileStorage,
	publisher MessagePublisher,
	notifier Notifier,
	logger *slog.Logger,
) MessagingService {
	return &messagingService{
		conversations: conversations,
		messages:      messages,
		directory:     dir,
		fileStorage:   fileStorage,
		publisher:     publisher,
		notifier:      notifier,
		logger:        logger,
	}
}

// Send delivers a message: resolve or create the conversation, upload
// attachments, append to the ledger, then bump the unread counter and the
// last-message pointer. The counter update runs strictly after a successful
// append so a failed send never leaves a ghost unread increment.
func (s *messagingService) Send(ctx context.Context, input SendInput) (*models.Message, *models.Conversation, error) {
	if input.Content == "" && len(input.Attachments) == 0 {
		return nil, nil, apperrors.ErrEmptyMessage
	}
	if err := validator.ValidateContent(input.Content); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err.Error())
	}

	// An explicit conversation ID pins the thread and can stand in for the
	// recipient; otherwise the recipient is required and the thread is
	// resolved (or created) from the pair after identity checks.
	var conversation *models.Conversation
	if input.ConversationID != nil {
		existing, err := s.conversations.GetByID(ctx, *input.ConversationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, apperrors.ErrConversationNotFound
			}
			return nil, nil, err
		}
		if !existing.HasParticipant(input.SenderID) {
			return nil, nil, apperrors.ErrNotParticipant
		}
		if input.RecipientID == 0 {
			input.RecipientID = existing.OtherParticipantID(input.SenderID)
		} else if input.RecipientID != existing.OtherParticipantID(input.SenderID) {
			return nil, nil, apperrors.ErrPairMismatch
		}
		conversation = existing
	}
	if input.SenderID == input.RecipientID {
		return nil, nil, apperrors.ErrSelfAddressed
	}

	sender, err := s.directory.Resolve(ctx, input.SenderID)
	if err != nil {
		return nil, nil, err
	}
	recipient, err := s.directory.Resolve(ctx, input.RecipientID)
	if err != nil {
		return nil, nil, err
	}

	if conversation == nil {
		conversation, err = s.resolveOrCreateConversation(ctx, input.SenderID, input.RecipientID)
		if err != nil {
			return nil, nil, err
		}
	}

	// Idempotent resend: if the client token already produced a message,
	// return it without appending or incrementing anything again.
	if input.ClientToken != "" {
		if existing, err := s.messages.GetByClientToken(ctx, input.ClientToken); err == nil {
			return existing, conversation, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, err
		}
	}

	// Uploads happen before the ledger append: a send that dies mid-upload
	// must not have produced a message. Orphaned uploads from a later
	// failure are an accepted, garbage-collectable cost.
	attachments, err := s.uploadAttachments(input.Attachments)
	if err != nil {
		return nil, nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       input.SenderID,
		RecipientID:    input.RecipientID,
		Content:        input.Content,
	}
	if input.ClientToken != "" {
		token := input.ClientToken
		message.ClientToken = &token
	}

	if err := s.messages.CreateWithAttachments(ctx, message, attachments); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) && input.ClientToken != "" {
			// Lost a race against a concurrent resend with the same token
			existing, lookupErr := s.messages.GetByClientToken(ctx, input.ClientToken)
			if lookupErr == nil {
				return existing, conversation, nil
			}
		}
		return nil, nil, fmt.Errorf("failed to append message: %w", err)
	}

	if err := s.conversations.IncrementUnread(ctx, conversation.ID, 1); err != nil {
		return nil, nil, err
	}
	if err := s.conversations.Touch(ctx, conversation.ID, message.ID); err != nil {
		return nil, nil, err
	}

	updated, err := s.conversations.GetByID(ctx, conversation.ID)
	if err != nil {
		return nil, nil, err
	}

	s.announce(ctx, updated.ID, recipient, sender, message)

	return message, updated, nil
}

// resolveOrCreateConversation runs the first-contact loop: find, create on
// miss, and on a create conflict (a concurrent sender won the race) find
// again. Exactly one creation wins and every caller converges on its row.
// The duplicate-entry conflict never escapes this loop.
func (s *messagingService) resolveOrCreateConversation(ctx context.Context, senderID, recipientID uint) (*models.Conversation, error) {
	for attempt := 0; attempt < maxCreateRetries; attempt++ {
		conversation, err := s.conversations.FindByParticipants(ctx, senderID, recipientID)
		if err == nil {
			return conversation, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		conversation, err = s.conversations.Create(ctx, senderID, recipientID)
		if err == nil {
			return conversation, nil
		}
		if !errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, err
		}

		if s.logger != nil {
			s.logger.Debug("lost conversation create race, retrying lookup",
				slog.Uint64("sender_id", uint64(senderID)),
				slog.Uint64("recipient_id", uint64(recipientID)),
				slog.Int("attempt", attempt+1))
		}
	}

	return nil, apperrors.ErrConcurrency
}

// uploadAttachments streams every attachment to the store. Any failure
// aborts the whole send before a ledger row exists.
func (s *messagingService) uploadAttachments(uploads []AttachmentUpload) ([]models.Attachment, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	attachments := make([]models.Attachment, 0, len(uploads))
	for _, upload := range uploads {
		filename := validator.SanitizeFilename(upload.Filename)

		if err := storage.ValidateFile(filename, upload.SizeBytes); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrUploadFailed, filename, err.Error())
		}

		reference, err := s.fileStorage.Save(filename, upload.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", apperrors.ErrUploadFailed, filename, err.Error())
		}

		attachments = append(attachments, models.Attachment{
			Filename:    filename,
			ContentType: upload.ContentType,
			FilePath:    reference,
			SizeBytes:   upload.SizeBytes,
		})
	}

	return attachments, nil
}

// announce fans out advisory notifications after a committed send
func (s *messagingService) announce(ctx context.Context, conversationID uint, recipient, sender *models.Participant, message *models.Message) {
	if s.publisher != nil {
		s.publisher.PublishNewMessage(conversationID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyNewMessage(ctx, recipient, sender, message); err != nil && s.logger != nil {
			s.logger.Warn("new-message notification failed",
				slog.Uint64("message_id", uint64(message.ID)),
				slog.Any("error", err))
		}
	}
}

// OpenConversation fetches the full thread and, when unread messages
// addressed to the viewer exist, marks them read and resets the counter as
// part of the same logical operation. A sender re-reading their own outgoing
// thread leaves the recipient's unread state untouched.
func (s *messagingService) OpenConversation(ctx context.Context, conversationID, viewerID uint) (*models.Conversation, []models.Message, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.ErrConversationNotFound
		}
		return nil, nil, err
	}
	if !conversation.HasParticipant(viewerID) {
		return nil, nil, apperrors.ErrNotParticipant
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}

	if conversation.UnreadCount > 0 {
		transitioned, err := s.messages.MarkRead(ctx, conversationID, viewerID)
		if err != nil {
			return nil, nil, err
		}

		// The counter belongs to whoever has unread messages. When the
		// opener is the sender nothing transitions, and the recipient's
		// badge must survive the open untouched.
		if transitioned > 0 {
			if err := s.conversations.ResetUnread(ctx, conversationID); err != nil {
				return nil, nil, err
			}
			conversation.UnreadCount = 0

			// Reflect the transition in the returned thread without re-querying
			now := time.Now()
			for i := range messages {
				if messages[i].RecipientID == viewerID && !messages[i].IsRead {
					messages[i].IsRead = true
					messages[i].ReadAt = &now
				}
			}
		}
	}

	return conversation, messages, nil
}

// ToggleArchive flips the archived flag. Pure toggle: unread state is
// untouched and the transition is always reversible.
func (s *messagingService) ToggleArchive(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, err
	}

	if err := s.conversations.SetArchived(ctx, conversationID, !conversation.IsArchived); err != nil {
		return nil, err
	}

	conversation.IsArchived = !conversation.IsArchived
	return conversation, nil
}

// ToggleStar flips the star flag on a message
func (s *messagingService) ToggleStar(ctx context.Context, messageID uint) (*models.Message, error) {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}

	if err := s.messages.SetStarred(ctx, messageID, !message.IsStarred); err != nil {
		return nil, err
	}

	message.IsStarred = !message.IsStarred
	return message, nil
}

// ListInbox returns the viewer's active conversations, newest activity first
func (s *messagingService) ListInbox(ctx context.Context, viewerID uint, limit, offset int) ([]models.ConversationListItem, int64, error) {
	return s.conversations.List(ctx, viewerID, false, limit, offset)
}

// ListArchived returns the viewer's archived conversations
func (s *messagingService) ListArchived(ctx context.Context, viewerID uint, limit, offset int) ([]models.ConversationListItem, int64, error) {
	return s.conversations.List(ctx, viewerID, true, limit, offset)
}

// RecountUnread rebuilds the cached unread counter from the ledger's ground
// truth. Maintenance operation for when counter drift is suspected.
func (s *messagingService) RecountUnread(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, err
	}

	count, err := s.messages.CountUnread(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.SetUnread(ctx, conversationID, int(count)); err != nil {
		return nil, err
	}

	return s.conversations.GetByID(ctx, conversationID)
}
