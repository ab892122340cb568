package repositories

import (
	"context"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

// TestRepository interface for test operations
type TestRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) // Include questions and options
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
	GetByLesson(ctx context.Context, lessonID uint) ([]*models.Test, error)

	// Status management
	UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error
}
