package session

import (
	"errors"
	"fmt"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

var (
	ErrUnknownQuestion = errors.New("question is not part of this test")
	ErrKindMismatch    = errors.New("answer kind does not match the question type")
)

// Sheet is the per-question answer store for one attempt. At most one entry
// exists per question id and its kind always matches the question's declared
// type; entries appear on first interaction and are overwritten in place.
type Sheet struct {
	order   []uint
	kinds   map[uint]models.AnswerKind
	answers map[uint]models.Answer
}

// NewSheet builds an empty sheet over the given questions, preserving their
// order for submission serialization.
func NewSheet(questions []models.Question) *Sheet {
	s := &Sheet{
		order:   make([]uint, 0, len(questions)),
		kinds:   make(map[uint]models.AnswerKind, len(questions)),
		answers: make(map[uint]models.Answer, len(questions)),
	}
	for _, q := range questions {
		s.order = append(s.order, q.ID)
		s.kinds[q.ID] = q.Type.AnswerKind()
	}
	return s
}

// Get returns the recorded answer, nil when the question is untouched.
func (s *Sheet) Get(questionID uint) models.Answer {
	return s.answers[questionID]
}

// Set overwrites the answer for a question. The kind must match the
// question's declared type; unknown question types accept nothing.
func (s *Sheet) Set(questionID uint, a models.Answer) error {
	kind, ok := s.kinds[questionID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownQuestion, questionID)
	}
	if a == nil {
		delete(s.answers, questionID)
		return nil
	}
	if a.Kind() != kind {
		return fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, a.Kind(), kind)
	}
	s.answers[questionID] = a
	return nil
}

// Answered reports whether the question has a recorded answer.
func (s *Sheet) Answered(questionID uint) bool {
	_, ok := s.answers[questionID]
	return ok
}

// AnsweredCount returns how many questions have recorded answers.
func (s *Sheet) AnsweredCount() int {
	return len(s.answers)
}

// Serialize emits one submission entry per question in test order. Unanswered
// questions still get an entry carrying only their id.
func (s *Sheet) Serialize() []models.SubmittedAnswer {
	out := make([]models.SubmittedAnswer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, models.NewSubmittedAnswer(id, s.answers[id]))
	}
	return out
}

// Restore loads previously recorded answers, used when resuming a snapshot.
// Entries for unknown questions or with mismatched kinds are skipped.
func (s *Sheet) Restore(recorded []models.SubmittedAnswer) {
	for _, sa := range recorded {
		a := sa.Decode()
		if a == nil {
			continue
		}
		if kind, ok := s.kinds[sa.QuestionID]; !ok || a.Kind() != kind {
			continue
		}
		s.answers[sa.QuestionID] = a
	}
}
