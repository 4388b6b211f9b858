package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2beens/fitlife/internal/workouts"

	log "github.com/sirupsen/logrus"
)

var ErrSessionFinished = errors.New("session already finished")

const tickPersistTimeout = 2 * time.Second

// View is the read-only picture of a session handed to callers.
type View struct {
	WorkoutID            string                   `json:"workoutId"`
	WorkoutName          string                   `json:"workoutName"`
	Exercises            []workouts.Exercise      `json:"exercises"`
	CurrentExerciseIndex int                      `json:"currentExerciseIndex"`
	CurrentExercise      *workouts.Exercise       `json:"currentExercise,omitempty"`
	ExerciseSets         map[string][]ExerciseSet `json:"exerciseSets"`
	Progress             int                      `json:"progress"`
	ExerciseProgress     map[string]int           `json:"exerciseProgress"`
	AllCompleted         bool                     `json:"allCompleted"`
	Timer                int                      `json:"timer"`
	TimerFormatted       string                   `json:"timerFormatted"`
	TimerRunning         bool                     `json:"timerRunning"`
	StartedAt            time.Time                `json:"startedAt"`
	Restored             bool                     `json:"restored"`
}

// Session is one live execution of a workout by one user. All methods are
// safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	userID   string
	workout  *workouts.Workout
	state    State
	restored bool
	finished bool
	closed   bool
	// done mirrors finished || closed and is read without mu
	done atomic.Bool

	bridge    *Bridge
	finalizer *Finalizer

	// 0 means the timer only moves on explicit Tick calls
	tickInterval time.Duration
	ticker       *ticker
	tickGen      uint64
	tickers      sync.WaitGroup
}

type sessionParams struct {
	userID       string
	workout      *workouts.Workout
	state        State
	restored     bool
	bridge       *Bridge
	finalizer    *Finalizer
	tickInterval time.Duration
}

func newSession(params sessionParams) *Session {
	return &Session{
		userID:       params.userID,
		workout:      params.workout,
		state:        params.state,
		restored:     params.restored,
		bridge:       params.bridge,
		finalizer:    params.finalizer,
		tickInterval: params.tickInterval,
	}
}

func (s *Session) WorkoutID() string {
	return s.workout.ID
}

func (s *Session) UserID() string {
	return s.userID
}

// Apply runs action against the session state and persists the result.
func (s *Session) Apply(ctx context.Context, action Action) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.closed {
		return View{}, ErrSessionFinished
	}

	if err := action.apply(&s.state, len(s.workout.Exercises)); err != nil {
		return View{}, err
	}

	// completing a set restarts the rest timer, so its ticks restart too
	restart := action.Type == ActionToggleSet && s.state.TimerRunning && s.state.Timer == 0
	s.syncTickerLocked(restart)
	s.persistLocked(ctx)

	return s.viewLocked(), nil
}

// Tick advances a running timer by one second.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.closed {
		return
	}
	if s.state.Tick() {
		s.persistLocked(ctx)
	}
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.closed || gen != s.tickGen {
		return
	}
	if s.state.Tick() {
		ctx, cancel := context.WithTimeout(context.Background(), tickPersistTimeout)
		defer cancel()
		s.persistLocked(ctx)
	}
}

func (s *Session) syncTickerLocked(restart bool) {
	if s.tickInterval <= 0 || s.closed {
		return
	}

	running := s.state.TimerRunning && !s.finished
	if s.ticker != nil && (!running || restart) {
		s.ticker.halt()
		s.ticker = nil
	}
	if running && s.ticker == nil {
		s.tickGen++
		gen := s.tickGen
		s.ticker = startTicker(&s.tickers, s.tickInterval, func() {
			s.tick(gen)
		})
	}
}

func (s *Session) persist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked(ctx)
}

func (s *Session) persistLocked(ctx context.Context) {
	if err := s.bridge.Save(ctx, s.userID, s.state); err != nil {
		log.Errorf("save snapshot of session %s/%s: %s", s.workout.ID, s.userID, err)
	}
}

// Finish writes the completed sets as history for trainingDate. See Finalizer.Finish.
func (s *Session) Finish(ctx context.Context, trainingDate time.Time, confirmer Confirmer) (*FinishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.closed {
		return nil, ErrSessionFinished
	}

	res, err := s.finalizer.Finish(ctx, s.userID, s.workout.Exercises, s.state.Clone(), trainingDate, confirmer)
	if err != nil {
		return nil, err
	}

	s.finished = true
	s.done.Store(true)
	s.syncTickerLocked(false)
	return res, nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	state := s.state.Clone()

	exerciseProgress := make(map[string]int, len(s.workout.Exercises))
	for _, e := range s.workout.Exercises {
		exerciseProgress[e.ID] = state.ExerciseProgress(e.ID)
	}

	v := View{
		WorkoutID:            s.workout.ID,
		WorkoutName:          s.workout.Name,
		Exercises:            s.workout.Exercises,
		CurrentExerciseIndex: state.CurrentExerciseIndex,
		ExerciseSets:         state.ExerciseSets,
		Progress:             state.Progress(),
		ExerciseProgress:     exerciseProgress,
		AllCompleted:         state.AllCompleted(),
		Timer:                state.Timer,
		TimerFormatted:       FormatTimer(state.Timer),
		TimerRunning:         state.TimerRunning,
		StartedAt:            state.SessionStartTime,
		Restored:             s.restored,
	}
	if idx := state.CurrentExerciseIndex; idx >= 0 && idx < len(s.workout.Exercises) {
		current := s.workout.Exercises[idx]
		v.CurrentExercise = &current
	}
	return v
}

func (s *Session) ended() bool {
	return s.done.Load()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Close stops the timer goroutine and waits for it to exit. The snapshot is kept.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.done.Store(true)
	if s.ticker != nil {
		s.ticker.halt()
		s.ticker = nil
	}
	s.mu.Unlock()

	s.tickers.Wait()
}
