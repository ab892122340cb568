package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleLearner UserRole = "learner"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// Learner is the platform user taking tests. Authentication lives in the
// auth service; this row mirrors the identity the gateway forwards.
type Learner struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"default:learner;size:20"`

	// ProfileID keys the progress-tracking service's records.
	ProfileID string `json:"profile_id" gorm:"size:255;index"`

	AvatarURL *string `json:"avatar_url" gorm:"size:500"`
	Language  string  `json:"language" gorm:"default:en;size:10"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Learner) TableName() string {
	return "learners"
}
