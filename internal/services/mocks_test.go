package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
)

// ===== TEST REPOSITORY MOCK =====

type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) Update(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepository) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Test, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Test), args.Error(1)
}

func (m *MockTestRepository) UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// ===== QUESTION REPOSITORY MOCK =====

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByTest(ctx context.Context, testID uint) ([]models.Question, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByTest(ctx context.Context, testID uint) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) UpdatePosition(ctx context.Context, id uint, position int) error {
	args := m.Called(ctx, id, position)
	return args.Error(0)
}

// ===== ATTEMPT REPOSITORY MOCK =====

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.TestAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id string) (*models.TestAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByIDWithTest(ctx context.Context, id string) (*models.TestAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt *models.TestAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.TestAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByLearner(ctx context.Context, learnerID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	args := m.Called(ctx, learnerID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.TestAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	args := m.Called(ctx, testID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.TestAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByLearnerAndTest(ctx context.Context, learnerID string, testID uint) ([]*models.TestAttempt, error) {
	args := m.Called(ctx, learnerID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetActiveAttempt(ctx context.Context, learnerID string, testID uint) (*models.TestAttempt, error) {
	args := m.Called(ctx, learnerID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) HasActiveAttempt(ctx context.Context, learnerID string, testID uint) (bool, error) {
	args := m.Called(ctx, learnerID, testID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) UpdateStatus(ctx context.Context, id string, status models.AttemptStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAttemptRepository) CompleteAttempt(ctx context.Context, id string, finishedAt time.Time, reason models.AttemptEndReason) error {
	args := m.Called(ctx, id, finishedAt, reason)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetStaleAttempts(ctx context.Context, cutoff time.Time) ([]*models.TestAttempt, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TestAttempt), args.Error(1)
}

// ===== LEARNER REPOSITORY MOCK =====

type MockLearnerRepository struct {
	mock.Mock
}

func (m *MockLearnerRepository) Create(ctx context.Context, learner *models.Learner) error {
	args := m.Called(ctx, learner)
	return args.Error(0)
}

func (m *MockLearnerRepository) GetByID(ctx context.Context, id string) (*models.Learner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Learner), args.Error(1)
}

func (m *MockLearnerRepository) GetByEmail(ctx context.Context, email string) (*models.Learner, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Learner), args.Error(1)
}

func (m *MockLearnerRepository) Update(ctx context.Context, learner *models.Learner) error {
	args := m.Called(ctx, learner)
	return args.Error(0)
}

func (m *MockLearnerRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLearnerRepository) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ===== AGGREGATE MOCK =====

// MockRepository is a mock implementation of the main Repository interface
type MockRepository struct {
	test     *MockTestRepository
	question *MockQuestionRepository
	attempt  *MockAttemptRepository
	learner  *MockLearnerRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		test:     &MockTestRepository{},
		question: &MockQuestionRepository{},
		attempt:  &MockAttemptRepository{},
		learner:  &MockLearnerRepository{},
	}
}

func (m *MockRepository) Test() repositories.TestRepository         { return m.test }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.question }
func (m *MockRepository) Attempt() repositories.AttemptRepository   { return m.attempt }
func (m *MockRepository) Learner() repositories.LearnerRepository   { return m.learner }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }
