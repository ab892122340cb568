package models

import (
	"time"

	"gorm.io/gorm"
)

type TestStatus string

const (
	TestDraft    TestStatus = "draft"
	TestActive   TestStatus = "active"
	TestArchived TestStatus = "archived"
)

// Test is a timed quiz attached to a lesson.
type Test struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	LessonID     uint       `json:"lesson_id" gorm:"not null;index"`
	Title        string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description  *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Duration     int        `json:"duration" gorm:"not null" validate:"required,min=1,max=120"` // minutes
	PassingScore int        `json:"passing_score" gorm:"default:60" validate:"min=0,max=100"`
	Status       TestStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft active archived"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions" gorm:"foreignKey:TestID"`

	// Computed, not stored.
	QuestionsCount int `json:"questions_count" gorm:"-"`
	TotalPoints    int `json:"total_points" gorm:"-"`
}

func (Test) TableName() string {
	return "tests"
}
