package repositories

import (
	"context"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

// LearnerRepository interface for learner account operations
type LearnerRepository interface {
	Create(ctx context.Context, learner *models.Learner) error
	GetByID(ctx context.Context, id string) (*models.Learner, error)
	GetByEmail(ctx context.Context, email string) (*models.Learner, error)
	Update(ctx context.Context, learner *models.Learner) error

	ExistsByID(ctx context.Context, id string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
