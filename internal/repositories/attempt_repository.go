package repositories

import (
	"context"
	"time"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

// AttemptRepository interface for test attempt operations
type AttemptRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, attempt *models.TestAttempt) error
	GetByID(ctx context.Context, id string) (*models.TestAttempt, error)
	GetByIDWithTest(ctx context.Context, id string) (*models.TestAttempt, error) // Include test and questions
	Update(ctx context.Context, attempt *models.TestAttempt) error
	Delete(ctx context.Context, id string) error

	// Query operations
	List(ctx context.Context, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByLearner(ctx context.Context, learnerID string, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByTest(ctx context.Context, testID uint, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByLearnerAndTest(ctx context.Context, learnerID string, testID uint) ([]*models.TestAttempt, error)

	// Active attempt management
	GetActiveAttempt(ctx context.Context, learnerID string, testID uint) (*models.TestAttempt, error)
	HasActiveAttempt(ctx context.Context, learnerID string, testID uint) (bool, error)

	// Status and completion
	UpdateStatus(ctx context.Context, id string, status models.AttemptStatus) error
	CompleteAttempt(ctx context.Context, id string, finishedAt time.Time, reason models.AttemptEndReason) error

	// Cleanup
	GetStaleAttempts(ctx context.Context, cutoff time.Time) ([]*models.TestAttempt, error)
}
