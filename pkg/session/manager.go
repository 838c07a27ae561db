package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/engine"
	"github.com/aretw0/parley/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.StateStore
	scripts ports.ScriptLoader

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker     ports.DistributedLocker // Optional distributed locker
	lockTTL    time.Duration
	engineOpts []engine.Option
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithEngineOptions adds options applied to every engine the manager resumes
// (recorder, hooks, display).
func WithEngineOptions(opts ...engine.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Session Manager over a state store and a script source.
func NewManager(store ports.StateStore, scripts ports.ScriptLoader, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		scripts: scripts,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start creates a session on the named script, enters it and persists the
// first snapshot. Starting an existing session ID fails.
func (m *Manager) Start(ctx context.Context, sessionID, scriptName string) (*domain.SessionState, domain.Unit, error) {
	var (
		state *domain.SessionState
		unit  domain.Unit
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, sessionID); err == nil {
			return fmt.Errorf("session %s: %w", sessionID, domain.ErrAlreadyStarted)
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		s, err := m.scripts.GetScript(ctx, scriptName)
		if err != nil {
			return err
		}

		eng := engine.New(s, m.options(sessionID, scriptName)...)
		if unit, err = eng.Start(ctx); err != nil {
			return err
		}
		state = eng.Snapshot()
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		m.logger.Info("session started", "session_id", sessionID, "script", scriptName)
		return nil
	})
	return state, unit, err
}

// Current returns the persisted state and its displayable unit.
func (m *Manager) Current(ctx context.Context, sessionID string) (*domain.SessionState, domain.Unit, error) {
	var unit domain.Unit
	state, err := m.withEngine(ctx, sessionID, false, func(ctx context.Context, eng *engine.Engine) error {
		unit = eng.Current()
		return nil
	})
	return state, unit, err
}

// Advance applies Advance to the session and persists the result.
func (m *Manager) Advance(ctx context.Context, sessionID string) (*domain.SessionState, domain.Unit, error) {
	var unit domain.Unit
	state, err := m.withEngine(ctx, sessionID, true, func(ctx context.Context, eng *engine.Engine) error {
		var err error
		unit, err = eng.Advance(ctx)
		return err
	})
	return state, unit, err
}

// Choose applies Choose to the session and persists the result.
func (m *Manager) Choose(ctx context.Context, sessionID, choiceID string) (*domain.SessionState, domain.Feedback, domain.Unit, error) {
	var (
		fb   domain.Feedback
		unit domain.Unit
	)
	state, err := m.withEngine(ctx, sessionID, true, func(ctx context.Context, eng *engine.Engine) error {
		var err error
		fb, unit, err = eng.Choose(ctx, choiceID)
		return err
	})
	return state, fb, unit, err
}

// withEngine resumes the session under its lock and runs fn. When persist is
// set and fn succeeds the new snapshot is saved; a failed action leaves the
// stored state as it was.
func (m *Manager) withEngine(ctx context.Context, sessionID string, persist bool, fn func(context.Context, *engine.Engine) error) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		stored, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		s, err := m.scripts.GetScript(ctx, stored.ScriptID)
		if err != nil {
			return fmt.Errorf("session %s: %w", sessionID, err)
		}
		eng, err := engine.Resume(s, stored, m.options(sessionID, stored.ScriptID)...)
		if err != nil {
			return fmt.Errorf("session %s: %w", sessionID, err)
		}

		if err := fn(ctx, eng); err != nil {
			state = stored
			return err
		}

		state = eng.Snapshot()
		if !persist {
			return nil
		}
		return m.store.Save(ctx, sessionID, state)
	})
	return state, err
}

func (m *Manager) options(sessionID, scriptName string) []engine.Option {
	opts := []engine.Option{
		engine.WithSessionID(sessionID),
		engine.WithScriptID(scriptName),
		engine.WithLogger(m.logger),
	}
	return append(opts, m.engineOpts...)
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Scripts returns the script source.
func (m *Manager) Scripts() ports.ScriptLoader {
	return m.scripts
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
