package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adveron/messaging-backend/internal/api/response"
	apperrors "github.com/adveron/messaging-backend/internal/errors"
	"github.com/adveron/messaging-backend/internal/services"
	"github.com/adveron/messaging-backend/internal/validator"
)

// ConversationHandler handles conversation-related HTTP requests
type ConversationHandler struct {
	messaging services.MessagingService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(messaging services.MessagingService) *ConversationHandler {
	return &ConversationHandler{messaging: messaging}
}

// ThreadResponse bundles a conversation with its full message thread
type ThreadResponse struct {
	Conversation interface{} `json:"conversation"`
	Messages     interface{} `json:"messages"`
}

// Open handles GET /api/conversations/:id. Opening a thread marks the
// messages addressed to the viewer read and clears their unread badge in
// the same operation.
func (h *ConversationHandler) Open(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid conversation ID")
	}

	viewerID, err := strconv.ParseUint(c.QueryParam("viewer_id"), 10, 32)
	if err != nil || viewerID == 0 {
		return response.BadRequest(c, "viewer_id is required")
	}

	conversation, messages, err := h.messaging.OpenConversation(c.Request().Context(), uint(id), uint(viewerID))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, ThreadResponse{
		Conversation: conversation,
		Messages:     messages,
	})
}

// List handles GET /api/conversations (inbox / archived split)
func (h *ConversationHandler) List(c echo.Context) error {
	viewerID, err := strconv.ParseUint(c.QueryParam("viewer_id"), 10, 32)
	if err != nil || viewerID == 0 {
		return response.BadRequest(c, "viewer_id is required")
	}

	archived, err := validator.ParseArchivedFlag(c.QueryParam("archived"))
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	limit, offset := paginationParams(c)

	var err2 error
	var total int64
	var items interface{}
	if archived {
		items, total, err2 = h.messaging.ListArchived(c.Request().Context(), uint(viewerID), limit, offset)
	} else {
		items, total, err2 = h.messaging.ListInbox(c.Request().Context(), uint(viewerID), limit, offset)
	}
	if err2 != nil {
		return response.InternalError(c, "failed to list conversations")
	}

	return response.Paginated(c, items, total, limit, offset)
}

// ToggleArchive handles PATCH /api/conversations/:id/archive
func (h *ConversationHandler) ToggleArchive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid conversation ID")
	}

	conversation, err := h.messaging.ToggleArchive(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// Recount handles POST /api/conversations/:id/recount. Maintenance endpoint
// that rebuilds the cached unread counter from the message ledger.
func (h *ConversationHandler) Recount(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid conversation ID")
	}

	conversation, err := h.messaging.RecountUnread(c.Request().Context(), uint(id))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return response.NotFound(c, "conversation not found")
		}
		return response.InternalError(c, "failed to recount unread messages")
	}

	return response.SuccessWithMessage(c, conversation, "unread count rebuilt")
}
