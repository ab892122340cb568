package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
)

// Repository is the gorm-backed aggregate over the per-entity repositories.
type Repository struct {
	db       *gorm.DB
	test     repositories.TestRepository
	question repositories.QuestionRepository
	attempt  repositories.AttemptRepository
	learner  repositories.LearnerRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:       db,
		test:     NewTestPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
		learner:  NewLearnerPostgreSQL(db),
	}
}

func (r *Repository) Test() repositories.TestRepository         { return r.test }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *Repository) Learner() repositories.LearnerRepository   { return r.learner }

// WithTransaction runs fn against a repository bound to a single transaction,
// committing on nil and rolling back on error.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
