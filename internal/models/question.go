package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice  QuestionType = "single_choice"
	TextFill      QuestionType = "text_fill"
	SequenceOrder QuestionType = "sequence_order"
	PairMatch     QuestionType = "pair_match"
)

// OptionSide partitions pair-matching options into the two columns a pair is
// built from. Options of other question types carry SideNone.
type OptionSide string

const (
	SideNone  OptionSide = ""
	SideLeft  OptionSide = "left"
	SideRight OptionSide = "right"
)

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	TestID   uint         `json:"test_id" gorm:"not null;index"`
	Type     QuestionType `json:"type" gorm:"not null;size:30" validate:"required,question_type"`
	Prompt   string       `json:"prompt" gorm:"not null;type:text" validate:"required,min=1,max=2000"`
	Position int          `json:"position" gorm:"not null;default:0"`
	Points   int          `json:"points" gorm:"default:1" validate:"min=1,max=100"`

	// AnswerKey holds the correct answer in the shape matching Type; see
	// models.AnswerKey. Never serialized to learners.
	AnswerKey datatypes.JSON `json:"-" gorm:"type:jsonb"`

	// Media shown alongside the prompt (URLs served by the media service).
	AudioURL *string `json:"audio_url" gorm:"size:500"`
	ImageURL *string `json:"image_url" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Options []Option `json:"options" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	QuestionID uint       `json:"question_id" gorm:"not null;index"`
	Label      string     `json:"label" gorm:"not null;size:500" validate:"required,max=500"`
	Side       OptionSide `json:"side" gorm:"size:10;default:''" validate:"omitempty,oneof=left right"`
	Position   int        `json:"position" gorm:"not null;default:0"`
	ImageURL   *string    `json:"image_url" gorm:"size:500"`
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "question_options"
}

// AnswerKind returns the answer shape a question of this type records.
func (t QuestionType) AnswerKind() AnswerKind {
	switch t {
	case SingleChoice:
		return KindOption
	case TextFill:
		return KindText
	case SequenceOrder:
		return KindSequence
	case PairMatch:
		return KindPairs
	default:
		return ""
	}
}
