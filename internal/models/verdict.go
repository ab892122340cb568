package models

import "time"

// Verdict is the grading outcome for a submitted attempt. The review view
// replays Questions through the renderer registry with a read-only host.
type Verdict struct {
	AttemptID  string    `json:"attempt_id"`
	TestID     uint      `json:"test_id"`
	LearnerID  string    `json:"learner_id"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	Percentage float64   `json:"percentage"`
	Passed     bool      `json:"passed"`
	GradedAt   time.Time `json:"graded_at"`

	Questions []QuestionVerdict `json:"questions"`
}

// QuestionVerdict carries per-question correctness plus the recorded answer
// and the correct-answer reference for review.
type QuestionVerdict struct {
	QuestionID   uint            `json:"question_id"`
	Answered     bool            `json:"answered"`
	Correct      bool            `json:"correct"`
	PointsEarned float64         `json:"points_earned"`
	PointsMax    float64         `json:"points_max"`
	Submitted    SubmittedAnswer `json:"submitted"`
	CorrectKey   *AnswerKey      `json:"correct_key,omitempty"`
}

// RecordedAnswer returns the answer the learner submitted for questionID, or
// nil when the question is absent or was left unanswered.
func (v *Verdict) RecordedAnswer(questionID uint) Answer {
	for i := range v.Questions {
		if v.Questions[i].QuestionID == questionID {
			return v.Questions[i].Submitted.Decode()
		}
	}
	return nil
}

// Correctness reports whether questionID was answered correctly; the second
// return is false when the verdict has no entry for it.
func (v *Verdict) Correctness(questionID uint) (bool, bool) {
	for i := range v.Questions {
		if v.Questions[i].QuestionID == questionID {
			return v.Questions[i].Correct, true
		}
	}
	return false, false
}
