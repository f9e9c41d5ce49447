package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/adveron/messaging-backend/internal/models"
	"gorm.io/gorm"
)

// ParticipantRepository defines the interface for participant data access.
// The messaging core treats participant identity as read-only; Create exists
// for the directory's own provisioning surface.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id uint) (*models.Participant, error)
	GetByEmail(ctx context.Context, email string) (*models.Participant, error)
	List(ctx context.Context, limit, offset int) ([]models.Participant, int64, error)
}

// participantRepository implements ParticipantRepository using GORM
type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new ParticipantRepository instance
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

// Create creates a new participant
func (r *participantRepository) Create(ctx context.Context, participant *models.Participant) error {
	result := r.db.WithContext(ctx).Create(participant)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("participant with email '%s' already exists: %w", participant.Email, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create participant: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a participant by its ID
func (r *participantRepository) GetByID(ctx context.Context, id uint) (*models.Participant, error) {
	var participant models.Participant
	result := r.db.WithContext(ctx).First(&participant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participant by ID: %w", result.Error)
	}
	return &participant, nil
}

// GetByEmail retrieves a participant by email address
func (r *participantRepository) GetByEmail(ctx context.Context, email string) (*models.Participant, error) {
	var participant models.Participant
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&participant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participant by email: %w", result.Error)
	}
	return &participant, nil
}

// List retrieves participants with pagination, ordered by display name
func (r *participantRepository) List(ctx context.Context, limit, offset int) ([]models.Participant, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Participant{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count participants: %w", err)
	}

	var participants []models.Participant
	result := r.db.WithContext(ctx).
		Order("display_name ASC").
		Limit(limit).
		Offset(offset).
		Find(&participants)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list participants: %w", result.Error)
	}

	return participants, total, nil
}
