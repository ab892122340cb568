package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/render"
)

var (
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrSubmitInFlight   = errors.New("submission already in progress")
	ErrMissingLearner   = errors.New("learner identity is missing")
	ErrNoQuestions      = errors.New("test has no questions")
)

// ProgressItemQuestion tags progress pings emitted when a question is
// answered and the learner moves on.
const ProgressItemQuestion = "test_question"

// Submission is the outbound payload handed to the scoring collaborator.
type Submission struct {
	AttemptID  string                   `json:"attempt_id"`
	TestID     uint                     `json:"test_id"`
	LearnerID  string                   `json:"learner_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Answers    []models.SubmittedAnswer `json:"answers"`
}

// ProgressPing is the fire-and-forget notification sent to the
// progress-tracking collaborator.
type ProgressPing struct {
	LearnerProfileID string `json:"learner_profile_id"`
	LessonID         uint   `json:"lesson_id"`
	ItemType         string `json:"item_type"`
	ItemRefID        uint   `json:"item_ref_id"`
}

// SubmitFunc scores a submission and returns the verdict.
type SubmitFunc func(ctx context.Context, sub *Submission) (*models.Verdict, error)

// ProgressFunc delivers a progress ping. Errors are logged, never surfaced.
type ProgressFunc func(ctx context.Context, ping ProgressPing) error

// Config assembles a Runner. Submit is required; Progress is optional.
type Config struct {
	AttemptID        string
	TestID           uint
	LessonID         uint
	LearnerID        string
	LearnerProfileID string
	Questions        []models.Question
	DurationMinutes  int

	Registry *render.Registry
	Submit   SubmitFunc
	Progress ProgressFunc
	Logger   *slog.Logger

	// Tick overrides the countdown interval, for tests. Zero means one
	// second.
	Tick time.Duration
}

// Runner drives a single test attempt from load to submission. It owns the
// question pointer, the countdown, and the answer sheet; renderers reach the
// sheet only through the host contract.
type Runner struct {
	mu sync.Mutex

	attemptID        string
	testID           uint
	lessonID         uint
	learnerID        string
	learnerProfileID string

	questions []models.Question
	byID      map[uint]*models.Question
	sheet     *Sheet

	current   int
	remaining int
	startedAt time.Time

	submitting bool
	submitted  bool
	verdict    *models.Verdict

	registry *render.Registry
	submit   SubmitFunc
	progress ProgressFunc
	logger   *slog.Logger

	tick     time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewRunner builds a runner over the test's questions, ordered by position
// with original order preserved on ties.
func NewRunner(cfg Config) (*Runner, error) {
	if len(cfg.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]models.Question, len(cfg.Questions))
	copy(questions, cfg.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Position < questions[j].Position
	})

	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	registry := cfg.Registry
	if registry == nil {
		registry = render.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tick := cfg.Tick
	if tick == 0 {
		tick = time.Second
	}

	return &Runner{
		attemptID:        cfg.AttemptID,
		testID:           cfg.TestID,
		lessonID:         cfg.LessonID,
		learnerID:        cfg.LearnerID,
		learnerProfileID: cfg.LearnerProfileID,
		questions:        questions,
		byID:             byID,
		sheet:            NewSheet(questions),
		current:          0,
		remaining:        cfg.DurationMinutes * 60,
		startedAt:        time.Now(),
		registry:         registry,
		submit:           cfg.Submit,
		progress:         cfg.Progress,
		logger:           logger,
		tick:             tick,
		done:             make(chan struct{}),
	}, nil
}

// Resume rebuilds a runner from a snapshot, reapplying the recorded answers,
// pointer, and remaining time.
func Resume(cfg Config, snap Snapshot) (*Runner, error) {
	r, err := NewRunner(cfg)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startedAt = snap.StartedAt
	r.current = clamp(snap.CurrentIndex, len(r.questions))
	r.remaining = snap.RemainingSeconds
	if r.remaining < 0 {
		r.remaining = 0
	}
	r.sheet.Restore(snap.Answers)
	return r, nil
}

func clamp(i, count int) int {
	if i < 0 {
		return 0
	}
	if i > count-1 {
		return count - 1
	}
	return i
}

// AttemptID returns the attempt this runner drives.
func (r *Runner) AttemptID() string { return r.attemptID }

// LearnerID returns the owning learner's identity.
func (r *Runner) LearnerID() string { return r.learnerID }

// TestID returns the test under attempt.
func (r *Runner) TestID() uint { return r.testID }

// ===== NAVIGATION =====

// CurrentIndex returns the mounted question pointer.
func (r *Runner) CurrentIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// QuestionCount returns the number of questions in the attempt.
func (r *Runner) QuestionCount() int {
	return len(r.questions)
}

// AnsweredCount returns how many questions carry a recorded answer.
func (r *Runner) AnsweredCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sheet.AnsweredCount()
}

// GoTo jumps to question i, clamped into the valid range. Answers are
// untouched.
func (r *Runner) GoTo(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = clamp(i, len(r.questions))
}

// Next advances to the following question, clamped at the last index. When
// the current question has a recorded answer, a progress ping is fired off
// the navigation path; its outcome never blocks or reorders navigation.
func (r *Runner) Next(ctx context.Context) {
	r.mu.Lock()
	q := &r.questions[r.current]
	answered := r.sheet.Answered(q.ID)
	r.current = clamp(r.current+1, len(r.questions))
	ping := ProgressPing{
		LearnerProfileID: r.learnerProfileID,
		LessonID:         r.lessonID,
		ItemType:         ProgressItemQuestion,
		ItemRefID:        q.ID,
	}
	notify := r.progress
	r.mu.Unlock()

	if answered && notify != nil {
		go func() {
			if err := notify(context.WithoutCancel(ctx), ping); err != nil {
				r.logger.Error("progress ping failed",
					"attempt_id", r.attemptID,
					"question_id", ping.ItemRefID,
					"error", err)
			}
		}()
	}
}

// Prev steps back one question, clamped at 0.
func (r *Runner) Prev() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = clamp(r.current-1, len(r.questions))
}

// ===== HOST CONTRACT =====

// GetSelected returns the recorded answer for a question, nil if untouched.
func (r *Runner) GetSelected(questionID uint) models.Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sheet.Get(questionID)
}

// SetSelected overwrites the answer for a question; the answer kind must
// match the question's declared type.
func (r *Runner) SetSelected(questionID uint, a models.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sheet.Set(questionID, a)
}

// liveHost exposes the sheet to renderers during an in-progress attempt. The
// runner's lock is already held when it is handed out.
type liveHost struct {
	sheet *Sheet
}

func (h liveHost) GetSelected(questionID uint) models.Answer          { return h.sheet.Get(questionID) }
func (h liveHost) SetSelected(questionID uint, a models.Answer) error { return h.sheet.Set(questionID, a) }
func (h liveHost) Disabled() bool                                     { return false }
func (h liveHost) Correctness(questionID uint) (bool, bool)           { return false, false }

// ===== RENDERING & INTERACTION =====

// View renders the mounted question through the registry.
func (r *Runner) View() render.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := &r.questions[r.current]
	return r.registry.Lookup(q.Type).Render(q, liveHost{sheet: r.sheet})
}

// Interact applies one user gesture to the mounted question.
func (r *Runner) Interact(in render.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := &r.questions[r.current]
	return r.registry.Lookup(q.Type).Interact(q, liveHost{sheet: r.sheet}, in)
}

// ===== COUNTDOWN =====

// Remaining returns the countdown value in seconds.
func (r *Runner) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// StartedAt returns the timestamp captured at session creation.
func (r *Runner) StartedAt() time.Time {
	return r.startedAt
}

// StartClock launches the countdown. Each tick decrements the remaining
// seconds; reaching zero triggers automatic submission exactly once.
func (r *Runner) StartClock(ctx context.Context) {
	go r.runClock(ctx)
}

func (r *Runner) runClock(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			if r.tickDown() {
				r.autoSubmit()
				return
			}
		}
	}
}

// tickDown decrements the countdown and reports whether it hit zero.
func (r *Runner) tickDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submitted || r.submitting {
		return false
	}
	if r.remaining > 0 {
		r.remaining--
	}
	return r.remaining == 0
}

func (r *Runner) autoSubmit() {
	// The timer is not synchronized with a manual submit racing it; the
	// latch inside Submit keeps this to a single outbound request.
	if _, err := r.Submit(context.Background()); err != nil {
		if errors.Is(err, ErrAlreadySubmitted) || errors.Is(err, ErrSubmitInFlight) {
			return
		}
		r.logger.Error("auto-submit failed",
			"attempt_id", r.attemptID,
			"error", err)
	}
}

// Stop halts the countdown without submitting, for abandoned sessions.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// ===== SUBMISSION =====

// Submitted reports whether a submission has completed.
func (r *Runner) Submitted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitted
}

// Verdict returns the scoring verdict, nil before a successful submission.
func (r *Runner) Verdict() *models.Verdict {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verdict
}

// Submit serializes every question's answer (unanswered ones included), sends
// the bundle to the scoring collaborator, and latches on success. A failed
// submission leaves all state untouched so the learner can retry.
func (r *Runner) Submit(ctx context.Context) (*models.Verdict, error) {
	r.mu.Lock()
	if r.submitted {
		r.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if r.submitting {
		r.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if r.learnerID == "" {
		r.mu.Unlock()
		return nil, ErrMissingLearner
	}
	r.submitting = true
	sub := &Submission{
		AttemptID:  r.attemptID,
		TestID:     r.testID,
		LearnerID:  r.learnerID,
		StartedAt:  r.startedAt,
		FinishedAt: time.Now(),
		Answers:    r.sheet.Serialize(),
	}
	r.mu.Unlock()

	verdict, err := r.submit(ctx, sub)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitting = false
	if err != nil {
		return nil, err
	}
	r.submitted = true
	r.verdict = verdict
	r.stopOnce.Do(func() { close(r.done) })
	return verdict, nil
}

// ===== SNAPSHOTS =====

// Snapshot captures the resumable state of an attempt.
type Snapshot struct {
	AttemptID        string                   `json:"attempt_id"`
	TestID           uint                     `json:"test_id"`
	LessonID         uint                     `json:"lesson_id"`
	LearnerID        string                   `json:"learner_id"`
	LearnerProfileID string                   `json:"learner_profile_id"`
	CurrentIndex     int                      `json:"current_index"`
	RemainingSeconds int                      `json:"remaining_seconds"`
	StartedAt        time.Time                `json:"started_at"`
	Answers          []models.SubmittedAnswer `json:"answers"`
}

// Snapshot returns the runner's resumable state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		AttemptID:        r.attemptID,
		TestID:           r.testID,
		LessonID:         r.lessonID,
		LearnerID:        r.learnerID,
		LearnerProfileID: r.learnerProfileID,
		CurrentIndex:     r.current,
		RemainingSeconds: r.remaining,
		StartedAt:        r.startedAt,
		Answers:          r.sheet.Serialize(),
	}
}
