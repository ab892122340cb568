package session

import (
	"context"
	"log/slog"
	"sync"
)

// Store persists attempt snapshots so a session survives a page reload or a
// service restart. The redis cache implements it.
type Store interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LoadSnapshot(ctx context.Context, attemptID string) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, attemptID string) error
}

// Manager tracks the live runners of in-progress attempts, one per attempt
// id, and mirrors them into the snapshot store.
type Manager struct {
	mu      sync.RWMutex
	runners map[string]*Runner

	store  Store
	logger *slog.Logger
}

// NewManager creates a manager. store may be nil when snapshot persistence is
// disabled.
func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		runners: make(map[string]*Runner),
		store:   store,
		logger:  logger,
	}
}

// Add registers a live runner under its attempt id.
func (m *Manager) Add(r *Runner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runners[r.AttemptID()] = r
}

// Get returns the live runner for an attempt, if any.
func (m *Manager) Get(attemptID string) (*Runner, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runners[attemptID]
	return r, ok
}

// Remove drops the live runner and its stored snapshot. The runner's clock is
// stopped if still running.
func (m *Manager) Remove(ctx context.Context, attemptID string) {
	m.mu.Lock()
	r, ok := m.runners[attemptID]
	delete(m.runners, attemptID)
	m.mu.Unlock()

	if ok {
		r.Stop()
	}
	if m.store != nil {
		if err := m.store.DeleteSnapshot(ctx, attemptID); err != nil {
			m.logger.Warn("failed to delete attempt snapshot",
				"attempt_id", attemptID,
				"error", err)
		}
	}
}

// Persist writes the runner's current snapshot to the store. Best effort: a
// failed write is logged, never surfaced to the learner.
func (m *Manager) Persist(ctx context.Context, attemptID string) {
	if m.store == nil {
		return
	}
	r, ok := m.Get(attemptID)
	if !ok {
		return
	}
	if err := m.store.SaveSnapshot(ctx, r.Snapshot()); err != nil {
		m.logger.Warn("failed to persist attempt snapshot",
			"attempt_id", attemptID,
			"error", err)
	}
}

// LoadSnapshot fetches a stored snapshot for resuming.
func (m *Manager) LoadSnapshot(ctx context.Context, attemptID string) (*Snapshot, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.LoadSnapshot(ctx, attemptID)
}

// Count returns the number of live runners.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runners)
}
