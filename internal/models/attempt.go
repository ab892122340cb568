package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptTimedOut   AttemptStatus = "timed_out"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

type AttemptEndReason string

const (
	EndReasonManual  AttemptEndReason = "manual"
	EndReasonTimeout AttemptEndReason = "timeout"
)

// TestAttempt is one learner's run through a test, from start to verdict.
type TestAttempt struct {
	ID        string        `json:"id" gorm:"primaryKey;size:36"`
	TestID    uint          `json:"test_id" gorm:"not null;index"`
	LearnerID string        `json:"learner_id" gorm:"not null;size:255;index"`
	Status    AttemptStatus `json:"status" gorm:"not null;default:in_progress;index"`

	StartedAt       time.Time         `json:"started_at" gorm:"not null"`
	FinishedAt      *time.Time        `json:"finished_at"`
	DurationSeconds int               `json:"duration_seconds" gorm:"not null"`
	EndReason       *AttemptEndReason `json:"end_reason" gorm:"size:20"`

	// Answers holds the submitted []SubmittedAnswer; Verdict the grading
	// result. Both empty until submission.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	Verdict datatypes.JSON `json:"verdict" gorm:"type:jsonb"`

	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Test Test `json:"test" gorm:"foreignKey:TestID"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}
