package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/session"
)

func mustKey(t *testing.T, key models.AnswerKey) datatypes.JSON {
	t.Helper()
	b, err := json.Marshal(key)
	require.NoError(t, err)
	return datatypes.JSON(b)
}

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "HeLLo", "hello"},
		{"trims edges", "  hello  ", "hello"},
		{"collapses internal spaces", "i  like\towls", "i like owls"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.in))
		})
	}
}

func TestScoreAnswer(t *testing.T) {
	tests := []struct {
		name      string
		qType     models.QuestionType
		submitted models.SubmittedAnswer
		key       models.AnswerKey
		want      bool
	}{
		{
			name:      "single choice correct",
			qType:     models.SingleChoice,
			submitted: models.SubmittedAnswer{QuestionID: 1, OptionID: uintPtr(11)},
			key:       models.AnswerKey{OptionID: uintPtr(11)},
			want:      true,
		},
		{
			name:      "single choice wrong option",
			qType:     models.SingleChoice,
			submitted: models.SubmittedAnswer{QuestionID: 1, OptionID: uintPtr(12)},
			key:       models.AnswerKey{OptionID: uintPtr(11)},
			want:      false,
		},
		{
			name:      "text matches case-insensitively",
			qType:     models.TextFill,
			submitted: models.SubmittedAnswer{QuestionID: 2, TextInput: strPtr("  An OWL ")},
			key:       models.AnswerKey{Texts: []string{"an owl", "the owl"}},
			want:      true,
		},
		{
			name:      "text accepts any listed spelling",
			qType:     models.TextFill,
			submitted: models.SubmittedAnswer{QuestionID: 2, TextInput: strPtr("the owl")},
			key:       models.AnswerKey{Texts: []string{"an owl", "the owl"}},
			want:      true,
		},
		{
			name:      "text rejects unlisted answer",
			qType:     models.TextFill,
			submitted: models.SubmittedAnswer{QuestionID: 2, TextInput: strPtr("a cat")},
			key:       models.AnswerKey{Texts: []string{"an owl"}},
			want:      false,
		},
		{
			name:      "sequence must match order exactly",
			qType:     models.SequenceOrder,
			submitted: models.SubmittedAnswer{QuestionID: 3, Sequence: []uint{31, 32, 33}},
			key:       models.AnswerKey{Sequence: []uint{31, 32, 33}},
			want:      true,
		},
		{
			name:      "sequence wrong order fails",
			qType:     models.SequenceOrder,
			submitted: models.SubmittedAnswer{QuestionID: 3, Sequence: []uint{32, 31, 33}},
			key:       models.AnswerKey{Sequence: []uint{31, 32, 33}},
			want:      false,
		},
		{
			name:      "sequence incomplete fails",
			qType:     models.SequenceOrder,
			submitted: models.SubmittedAnswer{QuestionID: 3, Sequence: []uint{31, 32}},
			key:       models.AnswerKey{Sequence: []uint{31, 32, 33}},
			want:      false,
		},
		{
			name:  "pairs match as a set",
			qType: models.PairMatch,
			submitted: models.SubmittedAnswer{QuestionID: 4, Pairs: []models.MatchPair{
				{LeftID: 42, RightID: 44},
				{LeftID: 41, RightID: 43},
			}},
			key: models.AnswerKey{Pairs: []models.MatchPair{
				{LeftID: 41, RightID: 43},
				{LeftID: 42, RightID: 44},
			}},
			want: true,
		},
		{
			name:  "pairs with one wrong join fail",
			qType: models.PairMatch,
			submitted: models.SubmittedAnswer{QuestionID: 4, Pairs: []models.MatchPair{
				{LeftID: 41, RightID: 44},
				{LeftID: 42, RightID: 43},
			}},
			key: models.AnswerKey{Pairs: []models.MatchPair{
				{LeftID: 41, RightID: 43},
				{LeftID: 42, RightID: 44},
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := tt.key
			assert.Equal(t, tt.want, scoreAnswer(tt.qType, tt.submitted, &key))
		})
	}
}

func TestGradeSubmission(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, slog.Default())

	questions := []models.Question{
		{ID: 1, Type: models.SingleChoice, Position: 0, Points: 2,
			AnswerKey: mustKey(t, models.AnswerKey{OptionID: uintPtr(11)})},
		{ID: 2, Type: models.TextFill, Position: 1, Points: 1,
			AnswerKey: mustKey(t, models.AnswerKey{Texts: []string{"owl"}})},
		{ID: 3, Type: models.SequenceOrder, Position: 2, Points: 1,
			AnswerKey: mustKey(t, models.AnswerKey{Sequence: []uint{31, 32}})},
	}
	repo.test.On("GetByID", mock.Anything, uint(7)).Return(&models.Test{ID: 7, PassingScore: 60}, nil)
	repo.question.On("GetByTest", mock.Anything, uint(7)).Return(questions, nil)

	verdict, err := svc.GradeSubmission(context.Background(), &session.Submission{
		AttemptID: "attempt-1",
		TestID:    7,
		LearnerID: "learner-1",
		Answers: []models.SubmittedAnswer{
			{QuestionID: 1, OptionID: uintPtr(11)},
			{QuestionID: 2, TextInput: strPtr("OWL ")},
			{QuestionID: 3}, // left unanswered
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3.0, verdict.Score)
	assert.Equal(t, 4.0, verdict.MaxScore)
	assert.InDelta(t, 75.0, verdict.Percentage, 0.001)
	assert.True(t, verdict.Passed)

	require.Len(t, verdict.Questions, 3)
	assert.True(t, verdict.Questions[0].Correct)
	assert.Equal(t, 2.0, verdict.Questions[0].PointsEarned)
	assert.True(t, verdict.Questions[1].Correct)
	assert.False(t, verdict.Questions[2].Answered)
	assert.False(t, verdict.Questions[2].Correct)
	assert.Zero(t, verdict.Questions[2].PointsEarned)

	// Every per-question verdict carries the correct-answer reference.
	for _, qv := range verdict.Questions {
		assert.NotNil(t, qv.CorrectKey)
	}
}

func TestGradeSubmissionFailsBelowPassingScore(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, slog.Default())

	questions := []models.Question{
		{ID: 1, Type: models.SingleChoice, Position: 0, Points: 1,
			AnswerKey: mustKey(t, models.AnswerKey{OptionID: uintPtr(11)})},
		{ID: 2, Type: models.SingleChoice, Position: 1, Points: 1,
			AnswerKey: mustKey(t, models.AnswerKey{OptionID: uintPtr(21)})},
	}
	repo.test.On("GetByID", mock.Anything, uint(8)).Return(&models.Test{ID: 8, PassingScore: 60}, nil)
	repo.question.On("GetByTest", mock.Anything, uint(8)).Return(questions, nil)

	verdict, err := svc.GradeSubmission(context.Background(), &session.Submission{
		AttemptID: "attempt-2",
		TestID:    8,
		LearnerID: "learner-1",
		Answers: []models.SubmittedAnswer{
			{QuestionID: 1, OptionID: uintPtr(11)},
			{QuestionID: 2, OptionID: uintPtr(99)},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, verdict.Percentage, 0.001)
	assert.False(t, verdict.Passed)
}

func TestGradeSubmissionToleratesMissingKey(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, slog.Default())

	repo.test.On("GetByID", mock.Anything, uint(9)).Return(&models.Test{ID: 9, PassingScore: 0}, nil)
	repo.question.On("GetByTest", mock.Anything, uint(9)).Return([]models.Question{
		{ID: 1, Type: models.SingleChoice, Position: 0, Points: 1},
	}, nil)

	verdict, err := svc.GradeSubmission(context.Background(), &session.Submission{
		AttemptID: "attempt-3",
		TestID:    9,
		Answers: []models.SubmittedAnswer{
			{QuestionID: 1, OptionID: uintPtr(11)},
		},
	})
	require.NoError(t, err)

	assert.Zero(t, verdict.Score)
	assert.False(t, verdict.Questions[0].Correct)
	assert.Nil(t, verdict.Questions[0].CorrectKey)
}
