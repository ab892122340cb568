package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.TestAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id string) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := a.db.WithContext(ctx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByIDWithTest(ctx context.Context, id string) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := a.db.WithContext(ctx).
		Preload("Test").
		Preload("Test.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Test.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.position ASC")
		}).
		First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) Update(ctx context.Context, attempt *models.TestAttempt) error {
	return a.db.WithContext(ctx).Save(attempt).Error
}

func (a AttemptPostgreSQL) Delete(ctx context.Context, id string) error {
	return a.db.WithContext(ctx).Delete(&models.TestAttempt{}, "id = ?", id).Error
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	var attempts []*models.TestAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.TestAttempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Preload("Test").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) GetByLearner(ctx context.Context, learnerID string, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	filters.LearnerID = &learnerID
	return a.List(ctx, filters)
}

func (a AttemptPostgreSQL) GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	filters.TestID = &testID
	return a.List(ctx, filters)
}

func (a AttemptPostgreSQL) GetByLearnerAndTest(ctx context.Context, learnerID string, testID uint) ([]*models.TestAttempt, error) {
	var attempts []*models.TestAttempt
	if err := a.db.WithContext(ctx).
		Where("learner_id = ? AND test_id = ?", learnerID, testID).
		Order("started_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) GetActiveAttempt(ctx context.Context, learnerID string, testID uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := a.db.WithContext(ctx).
		Where("learner_id = ? AND test_id = ? AND status = ?", learnerID, testID, models.AttemptInProgress).
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) HasActiveAttempt(ctx context.Context, learnerID string, testID uint) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("learner_id = ? AND test_id = ? AND status = ?", learnerID, testID, models.AttemptInProgress).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a AttemptPostgreSQL) UpdateStatus(ctx context.Context, id string, status models.AttemptStatus) error {
	return a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (a AttemptPostgreSQL) CompleteAttempt(ctx context.Context, id string, finishedAt time.Time, reason models.AttemptEndReason) error {
	status := models.AttemptSubmitted
	if reason == models.EndReasonTimeout {
		status = models.AttemptTimedOut
	}
	return a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"finished_at": finishedAt,
			"end_reason":  reason,
		}).Error
}

func (a AttemptPostgreSQL) GetStaleAttempts(ctx context.Context, cutoff time.Time) ([]*models.TestAttempt, error) {
	var attempts []*models.TestAttempt
	if err := a.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", models.AttemptInProgress, cutoff).
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.LearnerID != nil {
		query = query.Where("learner_id = ?", *filters.LearnerID)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}
	return query
}
