package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
)

type LearnerPostgreSQL struct {
	db *gorm.DB
}

func NewLearnerPostgreSQL(db *gorm.DB) repositories.LearnerRepository {
	return &LearnerPostgreSQL{db: db}
}

func (l LearnerPostgreSQL) Create(ctx context.Context, learner *models.Learner) error {
	return l.db.WithContext(ctx).Create(learner).Error
}

func (l LearnerPostgreSQL) GetByID(ctx context.Context, id string) (*models.Learner, error) {
	var learner models.Learner
	if err := l.db.WithContext(ctx).First(&learner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &learner, nil
}

func (l LearnerPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Learner, error) {
	var learner models.Learner
	if err := l.db.WithContext(ctx).First(&learner, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &learner, nil
}

func (l LearnerPostgreSQL) Update(ctx context.Context, learner *models.Learner) error {
	return l.db.WithContext(ctx).Save(learner).Error
}

func (l LearnerPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := l.db.WithContext(ctx).
		Model(&models.Learner{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (l LearnerPostgreSQL) UpdateLastLogin(ctx context.Context, id string) error {
	return l.db.WithContext(ctx).
		Model(&models.Learner{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}
