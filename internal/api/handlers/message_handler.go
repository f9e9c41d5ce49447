package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adveron/messaging-backend/internal/api/response"
	"github.com/adveron/messaging-backend/internal/services"
	"github.com/adveron/messaging-backend/internal/storage"
)

// MessageHandler handles message-related HTTP requests
type MessageHandler struct {
	messaging services.MessagingService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messaging services.MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

// SendMessageRequest represents the JSON request body for sending a message
// without attachments. Sends with attachments use multipart form encoding
// with the same field names plus a "files" part per attachment.
type SendMessageRequest struct {
	SenderID       uint   `json:"sender_id" form:"sender_id"`
	RecipientID    uint   `json:"recipient_id" form:"recipient_id"`
	ConversationID *uint  `json:"conversation_id" form:"conversation_id"`
	Content        string `json:"content" form:"content"`
	ClientToken    string `json:"client_token" form:"client_token"`
}

// SendResponse bundles the appended message with the updated conversation
type SendResponse struct {
	Message      interface{} `json:"message"`
	Conversation interface{} `json:"conversation"`
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if req.SenderID == 0 {
		return response.BadRequest(c, "sender_id is required")
	}
	if req.RecipientID == 0 && req.ConversationID == nil {
		return response.BadRequest(c, "recipient_id or conversation_id is required")
	}

	input := services.SendInput{
		SenderID:       req.SenderID,
		RecipientID:    req.RecipientID,
		ConversationID: req.ConversationID,
		Content:        req.Content,
		ClientToken:    req.ClientToken,
	}

	// Multipart sends carry attachments as "files" parts. The handles are
	// opened here and closed after the service consumed the streams.
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["files"]
		for _, fileHeader := range files {
			if err := storage.ValidateFile(fileHeader.Filename, fileHeader.Size); err != nil {
				return response.BadRequest(c, "attachment rejected: "+err.Error())
			}

			src, err := fileHeader.Open()
			if err != nil {
				return response.InternalError(c, "failed to read attachment")
			}
			defer src.Close()

			input.Attachments = append(input.Attachments, services.AttachmentUpload{
				Filename:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get("Content-Type"),
				SizeBytes:   fileHeader.Size,
				Content:     src,
			})
		}
	}

	message, conversation, err := h.messaging.Send(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, SendResponse{
		Message:      message,
		Conversation: conversation,
	})
}

// ToggleStar handles PATCH /api/messages/:id/star
func (h *MessageHandler) ToggleStar(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.messaging.ToggleStar(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, message)
}
