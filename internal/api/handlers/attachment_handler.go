package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adveron/messaging-backend/internal/api/response"
	"github.com/adveron/messaging-backend/internal/repository"
	"github.com/adveron/messaging-backend/internal/storage"
)

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachmentRepo repository.AttachmentRepository
	messageRepo    repository.MessageRepository
	fileStorage    storage.FileStorage
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(
	attachmentRepo repository.AttachmentRepository,
	messageRepo repository.MessageRepository,
	fileStorage storage.FileStorage,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo: attachmentRepo,
		messageRepo:    messageRepo,
		fileStorage:    fileStorage,
	}
}

// List handles GET /api/messages/:message_id/attachments
func (h *AttachmentHandler) List(c echo.Context) error {
	messageID, err := strconv.ParseUint(c.Param("message_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	// Verify message exists
	_, err = h.messageRepo.GetByID(c.Request().Context(), uint(messageID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	attachments, err := h.attachmentRepo.ListByMessage(c.Request().Context(), uint(messageID))
	if err != nil {
		return response.InternalError(c, "failed to list attachments")
	}

	return response.Success(c, attachments)
}

// Get handles GET /api/attachments/:id
func (h *AttachmentHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	return response.Success(c, attachment)
}

// Download handles GET /api/attachments/:id/download
func (h *AttachmentHandler) Download(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	file, err := h.fileStorage.Get(attachment.FilePath)
	if err != nil {
		return response.InternalError(c, "failed to retrieve file")
	}
	defer file.Close()

	c.Response().Header().Set("Content-Type", attachment.ContentType)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, attachment.Filename))
	if attachment.SizeBytes > 0 {
		c.Response().Header().Set("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	}

	_, err = io.Copy(c.Response().Writer, file)
	if err != nil {
		return response.InternalError(c, "failed to send file")
	}

	return nil
}
