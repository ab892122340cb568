package services

import (
	"context"
	"time"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/render"
	"github.com/WiseOwlEnglish/testrun-service/internal/session"
)

// ===== REQUEST / RESPONSE STRUCTS =====

type StartAttemptRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

// NavigateRequest moves the question pointer. Index is required for "goto"
// and ignored otherwise.
type NavigateRequest struct {
	Action string `json:"action" validate:"required,oneof=next prev goto"`
	Index  *int   `json:"index" validate:"required_if=Action goto"`
}

// InteractRequest is one user gesture against the mounted question. Which
// fields matter depends on the question type.
type InteractRequest struct {
	OptionID uint    `json:"option_id,omitempty"`
	LeftID   uint    `json:"left_id,omitempty"`
	RightID  uint    `json:"right_id,omitempty"`
	Text     *string `json:"text,omitempty"`
}

// AttemptStateResponse is the session state handed back after every
// operation: the rendered current question plus the session counters.
type AttemptStateResponse struct {
	AttemptID        string      `json:"attempt_id"`
	TestID           uint        `json:"test_id"`
	TestTitle        string      `json:"test_title"`
	CurrentIndex     int         `json:"current_index"`
	QuestionCount    int         `json:"question_count"`
	AnsweredCount    int         `json:"answered_count"`
	RemainingSeconds int         `json:"remaining_seconds"`
	Submitted        bool        `json:"submitted"`
	View             render.View `json:"view"`
}

// ReviewResponse replays a graded attempt: the verdict plus every question
// rendered read-only with correctness marks.
type ReviewResponse struct {
	Verdict *models.Verdict `json:"verdict"`
	Views   []render.View   `json:"views"`
}

// ===== SERVICE INTERFACES =====

// TestRunService drives live test attempts: session lifecycle, navigation,
// gestures, countdown, and submission.
type TestRunService interface {
	Start(ctx context.Context, req *StartAttemptRequest, learnerID string) (*AttemptStateResponse, error)
	Resume(ctx context.Context, attemptID string, learnerID string) (*AttemptStateResponse, error)

	View(ctx context.Context, attemptID string, learnerID string) (*AttemptStateResponse, error)
	Navigate(ctx context.Context, attemptID string, learnerID string, req *NavigateRequest) (*AttemptStateResponse, error)
	Interact(ctx context.Context, attemptID string, learnerID string, req *InteractRequest) (*AttemptStateResponse, error)

	Submit(ctx context.Context, attemptID string, learnerID string) (*models.Verdict, error)
	Review(ctx context.Context, attemptID string, learnerID string) (*ReviewResponse, error)
	Abandon(ctx context.Context, attemptID string, learnerID string) error

	SweepStaleAttempts(ctx context.Context, minAge time.Duration) (int, error)
}

// GradingService scores a serialized submission against the stored answer
// keys.
type GradingService interface {
	GradeSubmission(ctx context.Context, sub *session.Submission) (*models.Verdict, error)
}

// ReportService exports attempt results for teachers.
type ReportService interface {
	ExportTestResults(ctx context.Context, testID uint, requesterID string) ([]byte, error)
}

// ServiceManager provides access to all services
type ServiceManager interface {
	TestRun() TestRunService
	Grading() GradingService
	Report() ReportService
}
