package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the progress event kinds this service publishes.
type EventType string

const (
	EventQuestionAnswered EventType = "progress.question_answered"
	EventAttemptStarted   EventType = "progress.attempt_started"
	EventAttemptSubmitted EventType = "progress.attempt_submitted"
)

// ProgressEvent is the envelope for all progress-tracking events.
type ProgressEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// QuestionAnsweredEvent is emitted when a learner answers a question and
// moves on. It mirrors the progress-tracking service's item contract.
type QuestionAnsweredEvent struct {
	LearnerProfileID string `json:"learner_profile_id"`
	LessonID         uint   `json:"lesson_id"`
	ItemType         string `json:"item_type"`
	ItemRefID        uint   `json:"item_ref_id"`
}

type AttemptStartedEvent struct {
	AttemptID string    `json:"attempt_id"`
	TestID    uint      `json:"test_id"`
	LearnerID string    `json:"learner_id"`
	StartedAt time.Time `json:"started_at"`
	TimeLimit int       `json:"time_limit"` // seconds
}

type AttemptSubmittedEvent struct {
	AttemptID   string    `json:"attempt_id"`
	TestID      uint      `json:"test_id"`
	LearnerID   string    `json:"learner_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Score       float64   `json:"score"`
	Passed      bool      `json:"passed"`
}

// Event factory functions

func NewQuestionAnsweredEvent(learnerProfileID string, lessonID uint, itemType string, itemRefID uint) *ProgressEvent {
	return &ProgressEvent{
		ID:        GenerateEventID(),
		Type:      EventQuestionAnswered,
		Timestamp: time.Now(),
		Source:    "testrun-service",
		Version:   "1.0",
		Data: QuestionAnsweredEvent{
			LearnerProfileID: learnerProfileID,
			LessonID:         lessonID,
			ItemType:         itemType,
			ItemRefID:        itemRefID,
		},
	}
}

func NewAttemptStartedEvent(attemptID string, testID uint, learnerID string, startedAt time.Time, timeLimit int) *ProgressEvent {
	return &ProgressEvent{
		ID:        GenerateEventID(),
		Type:      EventAttemptStarted,
		Timestamp: time.Now(),
		Source:    "testrun-service",
		Version:   "1.0",
		Data: AttemptStartedEvent{
			AttemptID: attemptID,
			TestID:    testID,
			LearnerID: learnerID,
			StartedAt: startedAt,
			TimeLimit: timeLimit,
		},
	}
}

func NewAttemptSubmittedEvent(attemptID string, testID uint, learnerID string, submittedAt time.Time, score float64, passed bool) *ProgressEvent {
	return &ProgressEvent{
		ID:        GenerateEventID(),
		Type:      EventAttemptSubmitted,
		Timestamp: time.Now(),
		Source:    "testrun-service",
		Version:   "1.0",
		Data: AttemptSubmittedEvent{
			AttemptID:   attemptID,
			TestID:      testID,
			LearnerID:   learnerID,
			SubmittedAt: submittedAt,
			Score:       score,
			Passed:      passed,
		},
	}
}

// GenerateEventID returns a unique event id.
func GenerateEventID() string {
	return uuid.NewString()
}
