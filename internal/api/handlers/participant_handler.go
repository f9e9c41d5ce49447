package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adveron/messaging-backend/internal/api/response"
	"github.com/adveron/messaging-backend/internal/models"
	"github.com/adveron/messaging-backend/internal/repository"
	"github.com/adveron/messaging-backend/internal/validator"
)

// ParticipantHandler handles participant directory HTTP requests
type ParticipantHandler struct {
	participantRepo repository.ParticipantRepository
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(participantRepo repository.ParticipantRepository) *ParticipantHandler {
	return &ParticipantHandler{participantRepo: participantRepo}
}

// CreateParticipantRequest represents the request body for creating a participant
type CreateParticipantRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// Create handles POST /api/participants
func (h *ParticipantHandler) Create(c echo.Context) error {
	var req CreateParticipantRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := validator.ValidateDisplayName(req.DisplayName); err != nil {
		return response.BadRequest(c, "invalid display name: "+err.Error())
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		return response.BadRequest(c, "invalid email: "+err.Error())
	}
	if err := validator.ValidateRole(req.Role); err != nil {
		return response.BadRequest(c, "invalid role: "+err.Error())
	}

	participant := &models.Participant{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       strings.TrimSpace(strings.ToLower(req.Email)),
		Role:        strings.ToLower(req.Role),
	}

	if err := h.participantRepo.Create(c.Request().Context(), participant); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return response.Conflict(c, "participant with this email already exists")
		}
		return response.InternalError(c, "failed to create participant")
	}

	return response.Created(c, participant)
}

// Get handles GET /api/participants/:id
func (h *ParticipantHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid participant ID")
	}

	participant, err := h.participantRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "participant not found")
		}
		return response.InternalError(c, "failed to get participant")
	}

	return response.Success(c, participant)
}

// List handles GET /api/participants
func (h *ParticipantHandler) List(c echo.Context) error {
	limit, offset := paginationParams(c)

	participants, total, err := h.participantRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list participants")
	}

	return response.Paginated(c, participants, total, limit, offset)
}

// paginationParams reads limit/offset query parameters with clamping
func paginationParams(c echo.Context) (int, int) {
	limit := 0
	offset := 0

	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	return validator.ValidatePagination(limit, offset)
}
