package repositories

import (
	"context"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

// QuestionRepository interface for question operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	GetByTest(ctx context.Context, testID uint) ([]models.Question, error) // Ordered by position, options included
	CountByTest(ctx context.Context, testID uint) (int64, error)

	// Ordering
	UpdatePosition(ctx context.Context, id uint, position int) error
}
