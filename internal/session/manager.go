package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/kv"
	"github.com/dmitrijs2005/todoauth/internal/services"
)

type Manager struct {
	svc    services.AuthService
	store  kv.Repository
	logger logging.Logger

	// opMu serializes actions, including the startup revalidation.
	opMu sync.Mutex

	mu         sync.RWMutex
	state      State
	rememberMe bool
	subs       map[int]chan State
	nextSub    int

	initOnce sync.Once
	ready    chan struct{}
}

func NewManager(svc services.AuthService, store kv.Repository, logger logging.Logger) *Manager {
	return &Manager{
		svc:        svc,
		store:      store,
		logger:     logger.With("component", "session"),
		rememberMe: true,
		subs:       map[int]chan State{},
		ready:      make(chan struct{}),
	}
}

// Init restores the persisted session. A stored token is revalidated in the
// background; Ready is closed once that finishes, or at once when there is
// nothing to revalidate. Calls after the first are no-ops.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		snap := kv.LoadJSON[*Snapshot](ctx, m.store, m.logger, common.AuthStateStorageKey)
		if snap == nil || snap.Token == "" {
			close(m.ready)
			m.notify()
			return
		}

		m.opMu.Lock()
		m.update(func(s *State) {
			s.Loading = true
			s.Error = ""
		})
		go m.revalidate(ctx, snap.Token)
	})
}

// revalidate runs with opMu held by Init and releases it when done.
func (m *Manager) revalidate(ctx context.Context, token string) {
	defer m.opMu.Unlock()
	defer close(m.ready)

	user, err := m.svc.GetCurrentUser(ctx, token)
	switch {
	case err != nil && ctx.Err() != nil:
		m.logger.Warn(ctx, "session revalidation interrupted", "error", err)
		m.update(func(s *State) { s.Loading = false })
	case err != nil || user == nil:
		m.logger.Info(ctx, "stored session is no longer valid")
		m.clear(ctx)
	default:
		m.setAuth(ctx, user, token)
		m.update(func(s *State) { s.Loading = false })
	}
}

// Ready is closed when initialization has completed.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until initialization completes or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

func (m *Manager) User() *models.User    { return m.State().User }
func (m *Manager) Token() string         { return m.State().Token }
func (m *Manager) IsAuthenticated() bool { return m.State().IsAuthenticated }
func (m *Manager) Loading() bool         { return m.State().Loading }
func (m *Manager) Error() string         { return m.State().Error }

func (m *Manager) Phase() Phase {
	select {
	case <-m.ready:
	default:
		return PhaseInit
	}
	s := m.State()
	switch {
	case s.Error != "":
		return PhaseError
	case s.IsAuthenticated:
		return PhaseActive
	default:
		return PhaseCleared
	}
}

// Subscribe returns a channel that receives the state after every change,
// and a function that cancels the subscription. A slow reader only misses
// intermediate states; the latest one is always delivered.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan State, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(ch)
			}
		})
	}
}

func (m *Manager) update(fn func(s *State)) {
	m.mu.Lock()
	fn(&m.state)
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state.clone()
	for _, ch := range m.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// Replace the unread state with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (m *Manager) setAuth(ctx context.Context, user *models.User, token string) {
	m.update(func(s *State) {
		s.User = user.Clone()
		s.Token = token
		s.IsAuthenticated = true
		s.Error = ""
	})
	m.save(ctx)
}

func (m *Manager) save(ctx context.Context) {
	s := m.State()
	kv.SaveJSON(ctx, m.store, m.logger, common.AuthStateStorageKey, Snapshot{
		User:            s.User,
		Token:           s.Token,
		IsAuthenticated: s.IsAuthenticated,
	})
}

// clear resets the state and removes the persisted snapshot.
func (m *Manager) clear(ctx context.Context) {
	m.update(func(s *State) { *s = State{} })
	if err := m.store.Delete(ctx, common.AuthStateStorageKey); err != nil {
		m.logger.Error(ctx, "failed to remove session snapshot", "error", err)
	}
}

// run wraps an action with the loading and error bookkeeping.
func (m *Manager) run(ctx context.Context, fallback string, fn func(ctx context.Context) error) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.update(func(s *State) {
		s.Loading = true
		s.Error = ""
	})

	err := fn(ctx)

	m.update(func(s *State) {
		s.Loading = false
		if err != nil {
			s.Error = common.UserMessage(err, fallback)
		}
	})
	if err != nil {
		m.logger.Debug(ctx, "session action failed", "error", err)
	}
	return err
}

// Close ends the process-local session. A login made without RememberMe
// leaves no snapshot behind. Subscriptions are closed.
func (m *Manager) Close(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	forget := !m.rememberMe && m.state.IsAuthenticated
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()

	if forget {
		if err := m.store.Delete(ctx, common.AuthStateStorageKey); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}
