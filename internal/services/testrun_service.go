package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/WiseOwlEnglish/testrun-service/internal/events"
	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/render"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
	"github.com/WiseOwlEnglish/testrun-service/internal/session"
	"github.com/WiseOwlEnglish/testrun-service/internal/validator"
)

type testRunService struct {
	repo      repositories.Repository
	sessions  *session.Manager
	registry  *render.Registry
	publisher events.EventPublisher
	grading   GradingService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestRunService(
	repo repositories.Repository,
	sessions *session.Manager,
	registry *render.Registry,
	publisher events.EventPublisher,
	grading GradingService,
	logger *slog.Logger,
	v *validator.Validator,
) TestRunService {
	return &testRunService{
		repo:      repo,
		sessions:  sessions,
		registry:  registry,
		publisher: publisher,
		grading:   grading,
		logger:    logger,
		validator: v,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *testRunService) Start(ctx context.Context, req *StartAttemptRequest, learnerID string) (*AttemptStateResponse, error) {
	s.logger.Info("Starting test attempt",
		"test_id", req.TestID,
		"learner_id", learnerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	learner, err := s.repo.Learner().GetByID(ctx, learnerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLearnerNotFound
		}
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}

	test, err := s.repo.Test().GetByIDWithQuestions(ctx, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.Status != models.TestActive {
		return nil, ErrTestNotActive
	}
	if len(test.Questions) == 0 {
		return nil, ErrTestHasNoQuestions
	}

	// A learner keeps a single in-progress attempt per test; starting again
	// resumes it instead of opening a second one.
	existing, err := s.repo.Attempt().GetActiveAttempt(ctx, learnerID, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}
	if existing != nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", existing.ID)
		return s.Resume(ctx, existing.ID, learnerID)
	}

	attempt := &models.TestAttempt{
		ID:              uuid.NewString(),
		TestID:          test.ID,
		LearnerID:       learnerID,
		Status:          models.AttemptInProgress,
		StartedAt:       time.Now(),
		DurationSeconds: test.Duration * 60,
	}
	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	runner, err := session.NewRunner(session.Config{
		AttemptID:        attempt.ID,
		TestID:           test.ID,
		LessonID:         test.LessonID,
		LearnerID:        learnerID,
		LearnerProfileID: learner.ProfileID,
		Questions:        test.Questions,
		DurationMinutes:  test.Duration,
		Registry:         s.registry,
		Submit:           s.newSubmitFunc(),
		Progress:         s.newProgressFunc(),
		Logger:           s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build session: %w", err)
	}

	s.sessions.Add(runner)
	runner.StartClock(context.Background())
	s.sessions.Persist(ctx, attempt.ID)

	go func() {
		event := events.NewAttemptStartedEvent(attempt.ID, test.ID, learnerID, attempt.StartedAt, attempt.DurationSeconds)
		if err := s.publisher.PublishProgressEvent(context.Background(), event); err != nil {
			s.logger.Error("Failed to publish attempt started event",
				"attempt_id", attempt.ID,
				"error", err)
		}
	}()

	s.logger.Info("Test attempt started",
		"attempt_id", attempt.ID,
		"test_id", test.ID,
		"questions", len(test.Questions))

	return s.stateResponse(ctx, runner), nil
}

func (s *testRunService) Resume(ctx context.Context, attemptID string, learnerID string) (*AttemptStateResponse, error) {
	if runner, ok := s.sessions.Get(attemptID); ok {
		if runner.LearnerID() != learnerID {
			return nil, NewPermissionError(learnerID, attemptID, "attempt", "resume", "not owned by learner")
		}
		return s.stateResponse(ctx, runner), nil
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.LearnerID != learnerID {
		return nil, NewPermissionError(learnerID, attemptID, "attempt", "resume", "not owned by learner")
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptAlreadySubmitted
	}

	learner, err := s.repo.Learner().GetByID(ctx, learnerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLearnerNotFound
		}
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}

	test, err := s.repo.Test().GetByIDWithQuestions(ctx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	snap, err := s.sessions.LoadSnapshot(ctx, attemptID)
	if err != nil {
		s.logger.Warn("Failed to load attempt snapshot, rebuilding from record",
			"attempt_id", attemptID,
			"error", err)
	}
	if snap == nil {
		// No snapshot survived; rebuild with the wall-clock remainder and an
		// empty sheet.
		elapsed := int(time.Since(attempt.StartedAt).Seconds())
		snap = &session.Snapshot{
			AttemptID:        attemptID,
			CurrentIndex:     0,
			RemainingSeconds: attempt.DurationSeconds - elapsed,
			StartedAt:        attempt.StartedAt,
		}
	}

	runner, err := session.Resume(session.Config{
		AttemptID:        attempt.ID,
		TestID:           test.ID,
		LessonID:         test.LessonID,
		LearnerID:        learnerID,
		LearnerProfileID: learner.ProfileID,
		Questions:        test.Questions,
		DurationMinutes:  test.Duration,
		Registry:         s.registry,
		Submit:           s.newSubmitFunc(),
		Progress:         s.newProgressFunc(),
		Logger:           s.logger,
	}, *snap)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild session: %w", err)
	}

	s.sessions.Add(runner)

	// An attempt whose time ran out while no session was live is submitted
	// with whatever the snapshot recorded.
	if runner.Remaining() == 0 {
		if _, err := runner.Submit(ctx); err != nil {
			return nil, fmt.Errorf("failed to close expired attempt: %w", err)
		}
		return nil, ErrAttemptAlreadySubmitted
	}

	runner.StartClock(context.Background())

	s.logger.Info("Test attempt resumed",
		"attempt_id", attemptID,
		"remaining_seconds", runner.Remaining())

	return s.stateResponse(ctx, runner), nil
}

// ===== NAVIGATION & INTERACTION =====

func (s *testRunService) View(ctx context.Context, attemptID string, learnerID string) (*AttemptStateResponse, error) {
	runner, ok := s.sessions.Get(attemptID)
	if !ok {
		return s.Resume(ctx, attemptID, learnerID)
	}
	if runner.LearnerID() != learnerID {
		return nil, NewPermissionError(learnerID, attemptID, "attempt", "view", "not owned by learner")
	}
	return s.stateResponse(ctx, runner), nil
}

func (s *testRunService) Navigate(ctx context.Context, attemptID string, learnerID string, req *NavigateRequest) (*AttemptStateResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	runner, err := s.liveRunner(attemptID, learnerID, "navigate")
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "next":
		runner.Next(ctx)
	case "prev":
		runner.Prev()
	case "goto":
		if req.Index == nil {
			return nil, fmt.Errorf("%w: goto requires an index", ErrBadRequest)
		}
		runner.GoTo(*req.Index)
	}

	s.sessions.Persist(ctx, attemptID)
	return s.stateResponse(ctx, runner), nil
}

func (s *testRunService) Interact(ctx context.Context, attemptID string, learnerID string, req *InteractRequest) (*AttemptStateResponse, error) {
	runner, err := s.liveRunner(attemptID, learnerID, "interact")
	if err != nil {
		return nil, err
	}
	if runner.Submitted() {
		return nil, ErrAttemptAlreadySubmitted
	}

	if err := runner.Interact(render.Interaction{
		OptionID: req.OptionID,
		LeftID:   req.LeftID,
		RightID:  req.RightID,
		Text:     req.Text,
	}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	s.sessions.Persist(ctx, attemptID)
	return s.stateResponse(ctx, runner), nil
}

// ===== SUBMISSION & REVIEW =====

func (s *testRunService) Submit(ctx context.Context, attemptID string, learnerID string) (*models.Verdict, error) {
	runner, err := s.liveRunner(attemptID, learnerID, "submit")
	if err != nil {
		// The auto-submit path tears the session down; a submit arriving
		// after that reports the finished attempt, not a missing session.
		if errors.Is(err, ErrAttemptSessionGone) {
			attempt, dbErr := s.repo.Attempt().GetByID(ctx, attemptID)
			if dbErr == nil && attempt.LearnerID == learnerID && attempt.Status != models.AttemptInProgress {
				return nil, ErrAttemptAlreadySubmitted
			}
		}
		return nil, err
	}

	verdict, err := runner.Submit(ctx)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadySubmitted):
			return nil, ErrAttemptAlreadySubmitted
		case errors.Is(err, session.ErrSubmitInFlight):
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	s.logger.Info("Test attempt submitted",
		"attempt_id", attemptID,
		"score", verdict.Score,
		"passed", verdict.Passed)

	return verdict, nil
}

func (s *testRunService) Review(ctx context.Context, attemptID string, learnerID string) (*ReviewResponse, error) {
	attempt, err := s.repo.Attempt().GetByIDWithTest(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.LearnerID != learnerID {
		return nil, NewPermissionError(learnerID, attemptID, "attempt", "review", "not owned by learner")
	}
	if attempt.Status == models.AttemptInProgress || len(attempt.Verdict) == 0 {
		return nil, ErrAttemptNotSubmitted
	}

	var verdict models.Verdict
	if err := json.Unmarshal(attempt.Verdict, &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode verdict: %w", err)
	}

	host := render.NewVerdictHost(&verdict)
	views := make([]render.View, 0, len(attempt.Test.Questions))
	for i := range attempt.Test.Questions {
		q := &attempt.Test.Questions[i]
		views = append(views, s.registry.Lookup(q.Type).Render(q, host))
	}

	return &ReviewResponse{Verdict: &verdict, Views: views}, nil
}

func (s *testRunService) Abandon(ctx context.Context, attemptID string, learnerID string) error {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.LearnerID != learnerID {
		return NewPermissionError(learnerID, attemptID, "attempt", "abandon", "not owned by learner")
	}
	if attempt.Status != models.AttemptInProgress {
		return ErrAttemptAlreadySubmitted
	}

	s.sessions.Remove(ctx, attemptID)

	if err := s.repo.Attempt().UpdateStatus(ctx, attemptID, models.AttemptAbandoned); err != nil {
		return fmt.Errorf("failed to abandon attempt: %w", err)
	}

	s.logger.Info("Test attempt abandoned", "attempt_id", attemptID)
	return nil
}

// SweepStaleAttempts closes in-progress attempts whose time ran out while no
// session was live to auto-submit them, typically after a service restart lost
// both the runner and the snapshot. minAge bounds the candidate scan; only
// attempts past their own deadline are closed. Attempts with a live runner are
// skipped, their countdown finishes them.
func (s *testRunService) SweepStaleAttempts(ctx context.Context, minAge time.Duration) (int, error) {
	stale, err := s.repo.Attempt().GetStaleAttempts(ctx, time.Now().Add(-minAge))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale attempts: %w", err)
	}

	closed := 0
	for _, attempt := range stale {
		deadline := attempt.StartedAt.Add(time.Duration(attempt.DurationSeconds) * time.Second)
		if time.Now().Before(deadline) {
			continue
		}
		if _, live := s.sessions.Get(attempt.ID); live {
			continue
		}
		if err := s.repo.Attempt().CompleteAttempt(ctx, attempt.ID, deadline, models.EndReasonTimeout); err != nil {
			s.logger.Error("Failed to close stale attempt",
				"attempt_id", attempt.ID,
				"error", err)
			continue
		}
		s.sessions.Remove(ctx, attempt.ID)
		closed++
	}

	if closed > 0 {
		s.logger.Info("Stale attempts closed", "count", closed)
	}
	return closed, nil
}

// ===== HELPERS =====

func (s *testRunService) liveRunner(attemptID, learnerID, action string) (*session.Runner, error) {
	runner, ok := s.sessions.Get(attemptID)
	if !ok {
		return nil, ErrAttemptSessionGone
	}
	if runner.LearnerID() != learnerID {
		return nil, NewPermissionError(learnerID, attemptID, "attempt", action, "not owned by learner")
	}
	return runner, nil
}

func (s *testRunService) stateResponse(ctx context.Context, runner *session.Runner) *AttemptStateResponse {
	title := ""
	if test, err := s.repo.Test().GetByID(ctx, runner.TestID()); err == nil {
		title = test.Title
	}
	return &AttemptStateResponse{
		AttemptID:        runner.AttemptID(),
		TestID:           runner.TestID(),
		TestTitle:        title,
		CurrentIndex:     runner.CurrentIndex(),
		QuestionCount:    runner.QuestionCount(),
		AnsweredCount:    runner.AnsweredCount(),
		RemainingSeconds: runner.Remaining(),
		Submitted:        runner.Submitted(),
		View:             runner.View(),
	}
}

// newSubmitFunc closes over the service so both manual submits and the
// countdown's auto-submit share one grade-and-persist path.
func (s *testRunService) newSubmitFunc() session.SubmitFunc {
	return func(ctx context.Context, sub *session.Submission) (*models.Verdict, error) {
		verdict, err := s.grading.GradeSubmission(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("grading failed: %w", err)
		}

		answersJSON, err := json.Marshal(sub.Answers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode answers: %w", err)
		}
		verdictJSON, err := json.Marshal(verdict)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verdict: %w", err)
		}

		reason := models.EndReasonManual
		status := models.AttemptSubmitted
		if runner, ok := s.sessions.Get(sub.AttemptID); ok && runner.Remaining() == 0 {
			reason = models.EndReasonTimeout
			status = models.AttemptTimedOut
		}

		finishedAt := sub.FinishedAt
		err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			attempt, err := tx.Attempt().GetByID(ctx, sub.AttemptID)
			if err != nil {
				return err
			}
			attempt.Status = status
			attempt.FinishedAt = &finishedAt
			attempt.EndReason = &reason
			attempt.Answers = answersJSON
			attempt.Verdict = verdictJSON
			attempt.Score = verdict.Score
			attempt.Percentage = verdict.Percentage
			attempt.Passed = verdict.Passed
			return tx.Attempt().Update(ctx, attempt)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to persist verdict: %w", err)
		}

		go func() {
			event := events.NewAttemptSubmittedEvent(sub.AttemptID, sub.TestID, sub.LearnerID, finishedAt, verdict.Score, verdict.Passed)
			if err := s.publisher.PublishProgressEvent(context.Background(), event); err != nil {
				s.logger.Error("Failed to publish attempt submitted event",
					"attempt_id", sub.AttemptID,
					"error", err)
			}
			s.sessions.Remove(context.Background(), sub.AttemptID)
		}()

		return verdict, nil
	}
}

func (s *testRunService) newProgressFunc() session.ProgressFunc {
	return func(ctx context.Context, ping session.ProgressPing) error {
		event := events.NewQuestionAnsweredEvent(ping.LearnerProfileID, ping.LessonID, ping.ItemType, ping.ItemRefID)
		return s.publisher.PublishProgressEvent(ctx, event)
	}
}
