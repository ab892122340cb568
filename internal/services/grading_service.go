package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
	"github.com/WiseOwlEnglish/testrun-service/internal/session"
)

type gradingService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGradingService(repo repositories.Repository, logger *slog.Logger) GradingService {
	return &gradingService{
		repo:   repo,
		logger: logger,
	}
}

// GradeSubmission scores every answer in the submission against the stored
// keys and returns the verdict. Unanswered entries score zero but still get a
// per-question verdict so the review view can show them as skipped.
func (s *gradingService) GradeSubmission(ctx context.Context, sub *session.Submission) (*models.Verdict, error) {
	test, err := s.repo.Test().GetByID(ctx, sub.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	questions, err := s.repo.Question().GetByTest(ctx, sub.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	byQuestion := make(map[uint]models.SubmittedAnswer, len(sub.Answers))
	for _, sa := range sub.Answers {
		byQuestion[sa.QuestionID] = sa
	}

	verdict := &models.Verdict{
		AttemptID: sub.AttemptID,
		TestID:    sub.TestID,
		LearnerID: sub.LearnerID,
		GradedAt:  time.Now(),
		Questions: make([]models.QuestionVerdict, 0, len(questions)),
	}

	for i := range questions {
		q := &questions[i]

		key, err := decodeAnswerKey(q)
		if err != nil {
			s.logger.Error("unreadable answer key, scoring question as zero",
				"question_id", q.ID,
				"error", err)
		}

		sa := byQuestion[q.ID]
		if sa.QuestionID == 0 {
			sa = models.SubmittedAnswer{QuestionID: q.ID}
		}

		qv := models.QuestionVerdict{
			QuestionID: q.ID,
			Answered:   sa.Answered(),
			PointsMax:  float64(q.Points),
			Submitted:  sa,
			CorrectKey: key,
		}
		if key != nil && sa.Answered() {
			qv.Correct = scoreAnswer(q.Type, sa, key)
		}
		if qv.Correct {
			qv.PointsEarned = qv.PointsMax
		}

		verdict.Score += qv.PointsEarned
		verdict.MaxScore += qv.PointsMax
		verdict.Questions = append(verdict.Questions, qv)
	}

	if verdict.MaxScore > 0 {
		verdict.Percentage = verdict.Score / verdict.MaxScore * 100
	}
	verdict.Passed = verdict.Percentage >= float64(test.PassingScore)

	s.logger.Info("Submission graded",
		"attempt_id", sub.AttemptID,
		"test_id", sub.TestID,
		"score", verdict.Score,
		"max_score", verdict.MaxScore,
		"passed", verdict.Passed)

	return verdict, nil
}

func decodeAnswerKey(q *models.Question) (*models.AnswerKey, error) {
	if len(q.AnswerKey) == 0 {
		return nil, fmt.Errorf("question %d has no answer key", q.ID)
	}
	var key models.AnswerKey
	if err := json.Unmarshal(q.AnswerKey, &key); err != nil {
		return nil, fmt.Errorf("question %d: %w", q.ID, err)
	}
	return &key, nil
}

// scoreAnswer decides correctness for one answered question. Sequences must
// match the key exactly in order; pairs match as a set.
func scoreAnswer(t models.QuestionType, sa models.SubmittedAnswer, key *models.AnswerKey) bool {
	switch t {
	case models.SingleChoice:
		return sa.OptionID != nil && key.OptionID != nil && *sa.OptionID == *key.OptionID

	case models.TextFill:
		if sa.TextInput == nil {
			return false
		}
		given := normalizeText(*sa.TextInput)
		for _, accepted := range key.Texts {
			if given == normalizeText(accepted) {
				return true
			}
		}
		return false

	case models.SequenceOrder:
		if len(sa.Sequence) != len(key.Sequence) {
			return false
		}
		for i := range sa.Sequence {
			if sa.Sequence[i] != key.Sequence[i] {
				return false
			}
		}
		return true

	case models.PairMatch:
		if len(sa.Pairs) != len(key.Pairs) {
			return false
		}
		want := make(map[models.MatchPair]struct{}, len(key.Pairs))
		for _, p := range key.Pairs {
			want[p] = struct{}{}
		}
		for _, p := range sa.Pairs {
			if _, ok := want[p]; !ok {
				return false
			}
		}
		return true
	}
	return false
}

// normalizeText folds case and collapses whitespace so typed answers are not
// punished for spacing or capitalization.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
