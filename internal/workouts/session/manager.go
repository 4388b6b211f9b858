package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/2beens/fitlife/internal/snapshot"
	"github.com/2beens/fitlife/internal/telemetry/metrics"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNoSession = errors.New("no live session for this workout")

type ManagerParams struct {
	Plans     planRepo
	History   historyRepo
	Snapshots snapshot.Store
	Metrics   *metrics.Manager
	// TickInterval 0 disables the background timer, Session.Tick moves it then.
	TickInterval time.Duration
	NowFunc      func() time.Time
}

type sessionKey struct {
	workoutID string
	userID    string
}

// Manager keeps the live sessions, at most one per workout and user.
type Manager struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session

	loader       *Loader
	bridge       *Bridge
	finalizer    *Finalizer
	metrics      *metrics.Manager
	tickInterval time.Duration
	nowFunc      func() time.Time
}

func NewManager(params ManagerParams) *Manager {
	nowFunc := params.NowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}

	bridge := NewBridge(params.Snapshots, params.Metrics)
	return &Manager{
		sessions:     map[sessionKey]*Session{},
		loader:       NewLoader(params.Plans, params.History),
		bridge:       bridge,
		finalizer:    NewFinalizer(params.History, bridge, params.Metrics),
		metrics:      params.Metrics,
		tickInterval: params.TickInterval,
		nowFunc:      nowFunc,
	}
}

// Start returns the live session for (workoutID, userID), creating it when
// needed. A new session resumes from a matching snapshot and otherwise starts
// from the plan and the user's latest history.
func (m *Manager) Start(ctx context.Context, userID, workoutID string) (_ View, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.manager.start")
	span.SetAttributes(attribute.String("workout.id", workoutID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := sessionKey{workoutID: workoutID, userID: userID}
	if s, ok := m.live(key); ok {
		return s.View(), nil
	}

	// m.mu is not held while loading
	plan, err := m.loader.Plan(ctx, userID, workoutID)
	if err != nil {
		return View{}, err
	}

	restoredState, restored, err := m.bridge.Restore(ctx, userID, plan)
	if err != nil {
		return View{}, err
	}

	var state State
	if restored {
		state = *restoredState
	} else {
		state, err = m.loader.Initial(ctx, userID, plan, m.nowFunc())
		if err != nil {
			return View{}, err
		}
	}

	s := newSession(sessionParams{
		userID:       userID,
		workout:      plan,
		state:        state,
		restored:     restored,
		bridge:       m.bridge,
		finalizer:    m.finalizer,
		tickInterval: m.tickInterval,
	})

	m.mu.Lock()
	if current, ok := m.sessions[key]; ok && !current.ended() {
		m.mu.Unlock()
		// a concurrent Start for the same key got there first
		s.Close()
		return current.View(), nil
	}
	m.sessions[key] = s
	m.metrics.GaugeActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	s.persist(ctx)
	if restored {
		m.metrics.CounterSessions.WithLabelValues("restored").Inc()
		log.Debugf("session %s/%s restored from snapshot", workoutID, userID)
	} else {
		m.metrics.CounterSessions.WithLabelValues("started").Inc()
		log.Debugf("session %s/%s started", workoutID, userID)
	}

	return s.View(), nil
}

// live returns the session under key unless it already finished or closed.
func (m *Manager) live(key sessionKey) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok || s.ended() {
		return nil, false
	}
	return s, true
}

// Session returns the live session for (workoutID, userID).
func (m *Manager) Session(userID, workoutID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{workoutID: workoutID, userID: userID}]
	return s, ok
}

func (m *Manager) Mutate(ctx context.Context, userID, workoutID string, action Action) (View, error) {
	s, ok := m.Session(userID, workoutID)
	if !ok {
		return View{}, ErrNoSession
	}
	return s.Apply(ctx, action)
}

func (m *Manager) View(userID, workoutID string) (View, error) {
	s, ok := m.Session(userID, workoutID)
	if !ok {
		return View{}, ErrNoSession
	}
	return s.View(), nil
}

// Finish saves the session's completed sets with today's date and ends the
// session. On any error the session stays live and untouched.
func (m *Manager) Finish(ctx context.Context, userID, workoutID string, confirmer Confirmer) (_ *FinishResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.manager.finish")
	span.SetAttributes(attribute.String("workout.id", workoutID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s, ok := m.Session(userID, workoutID)
	if !ok {
		return nil, ErrNoSession
	}

	res, err := s.Finish(ctx, pkg.DateOf(m.nowFunc()), confirmer)
	if err != nil {
		return nil, err
	}

	m.remove(s)
	m.metrics.CounterSessions.WithLabelValues("finished").Inc()
	log.Debugf("session %s/%s finished with %d entries", workoutID, userID, len(res.Entries))
	return res, nil
}

// Discard drops the live session and its snapshot. The next Start begins
// from the plan again.
func (m *Manager) Discard(ctx context.Context, userID, workoutID string) error {
	if s, ok := m.Session(userID, workoutID); ok {
		m.remove(s)
	}
	if err := m.bridge.Clear(ctx, workoutID, userID); err != nil {
		return err
	}
	m.metrics.CounterSessions.WithLabelValues("discarded").Inc()
	return nil
}

// HasUnsavedSession reports whether a session for (workoutID, userID) holds
// progress that was not finished yet, live or in the snapshot store.
func (m *Manager) HasUnsavedSession(ctx context.Context, userID, workoutID string) (bool, error) {
	if _, ok := m.Session(userID, workoutID); ok {
		return true, nil
	}
	return m.bridge.Exists(ctx, workoutID, userID)
}

func (m *Manager) remove(s *Session) {
	key := sessionKey{workoutID: s.WorkoutID(), userID: s.UserID()}

	m.mu.Lock()
	if current, ok := m.sessions[key]; ok && current == s {
		delete(m.sessions, key)
	}
	m.metrics.GaugeActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	s.Close()
}

// Close stops all live sessions. Their snapshots stay in the store.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[sessionKey]*Session{}
	m.metrics.GaugeActiveSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	log.Debugf("session manager closed, %d live sessions stopped", len(sessions))
}
