// Package directory exposes the participant directory collaborator: identity
// resolution for conversation participants. The messaging core consumes it
// read-only.
package directory

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/adveron/messaging-backend/internal/errors"
	"github.com/adveron/messaging-backend/internal/models"
	"github.com/adveron/messaging-backend/internal/repository"
)

// Directory resolves participant identities
type Directory interface {
	Resolve(ctx context.Context, id uint) (*models.Participant, error)
}

// gormDirectory implements Directory over the participant repository
type gormDirectory struct {
	participants repository.ParticipantRepository
}

// New creates a Directory backed by the participant repository
func New(participants repository.ParticipantRepository) Directory {
	return &gormDirectory{participants: participants}
}

// Resolve looks up a participant by id
func (d *gormDirectory) Resolve(ctx context.Context, id uint) (*models.Participant, error) {
	participant, err := d.participants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("participant %d: %w", id, apperrors.ErrParticipantNotFound)
		}
		return nil, fmt.Errorf("failed to resolve participant %d: %w", id, err)
	}
	return participant, nil
}
