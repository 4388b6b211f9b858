package session

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fitlife/internal/workouts"
)

var (
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrUnknownSet      = errors.New("unknown set")
	ErrUnknownField    = errors.New("unknown set field")
)

type Field string

const (
	FieldReps      Field = "reps"
	FieldLoad      Field = "load"
	FieldCompleted Field = "completed"
)

type ExerciseSet struct {
	// Set is the 1-based set number.
	Set       int      `json:"set"`
	Reps      int      `json:"reps"`
	Load      float64  `json:"load"`
	Completed bool     `json:"completed"`
	LastReps  *int     `json:"lastReps,omitempty"`
	LastLoad  *float64 `json:"lastLoad,omitempty"`
}

// State is the in-progress data of one workout session. Its JSON form is the snapshot format.
type State struct {
	WorkoutID            string                   `json:"workoutId"`
	CurrentExerciseIndex int                      `json:"currentExerciseIndex"`
	ExerciseSets         map[string][]ExerciseSet `json:"exerciseSets"`
	Timer                int                      `json:"timer"`
	SessionStartTime     time.Time                `json:"sessionStartTime"`

	TimerRunning bool `json:"-"`
}

// NewState builds the initial state for plan: one incomplete set per planned
// set, load defaulting to the planned load, last values taken from history.
func NewState(workoutID string, plan []workouts.Exercise, last workouts.LastPerformance, startedAt time.Time) State {
	sets := make(map[string][]ExerciseSet, len(plan))
	for _, e := range plan {
		sets[e.ID] = newSets(e, last)
	}
	return State{
		WorkoutID:        workoutID,
		ExerciseSets:     sets,
		SessionStartTime: startedAt,
	}
}

func newSets(e workouts.Exercise, last workouts.LastPerformance) []ExerciseSet {
	var load float64
	if e.PlannedLoad != nil {
		load = *e.PlannedLoad
	}

	sets := make([]ExerciseSet, 0, e.PlannedSets)
	for i := 1; i <= e.PlannedSets; i++ {
		set := ExerciseSet{
			Set:  i,
			Load: load,
		}
		if h, ok := last.For(e.ID, i); ok {
			reps, load := h.Reps, h.Load
			set.LastReps = &reps
			set.LastLoad = &load
		}
		sets = append(sets, set)
	}
	return sets
}

func (s State) Clone() State {
	c := s
	c.ExerciseSets = make(map[string][]ExerciseSet, len(s.ExerciseSets))
	for id, sets := range s.ExerciseSets {
		c.ExerciseSets[id] = append([]ExerciseSet(nil), sets...)
	}
	return c
}

func (s *State) set(exerciseID string, setIndex int) (*ExerciseSet, error) {
	sets, ok := s.ExerciseSets[exerciseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseID)
	}
	if setIndex < 0 || setIndex >= len(sets) {
		return nil, fmt.Errorf("%w: %d of exercise %s", ErrUnknownSet, setIndex, exerciseID)
	}
	return &sets[setIndex], nil
}

// UpdateSet replaces one field of one set. Values are coerced: anything that
// is not a number becomes 0 and negative numbers become 0.
func (s *State) UpdateSet(exerciseID string, setIndex int, field Field, value any) error {
	set, err := s.set(exerciseID, setIndex)
	if err != nil {
		return err
	}

	switch field {
	case FieldReps:
		set.Reps = coerceReps(value)
	case FieldLoad:
		set.Load = coerceLoad(value)
	case FieldCompleted:
		set.Completed = coerceBool(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ToggleSetComplete flips the set's completed flag. Completing a set restarts
// the rest timer from 0.
func (s *State) ToggleSetComplete(exerciseID string, setIndex int) (completed bool, err error) {
	set, err := s.set(exerciseID, setIndex)
	if err != nil {
		return false, err
	}

	set.Completed = !set.Completed
	if set.Completed {
		s.Timer = 0
		s.TimerRunning = true
	}
	return set.Completed, nil
}

// NextExercise moves forward within [0, planLen-1] and resets the timer.
func (s *State) NextExercise(planLen int) {
	if s.CurrentExerciseIndex < planLen-1 {
		s.CurrentExerciseIndex++
	}
	s.ResetTimer()
}

func (s *State) PrevExercise() {
	if s.CurrentExerciseIndex > 0 {
		s.CurrentExerciseIndex--
	}
	s.ResetTimer()
}

func (s *State) ToggleTimer() {
	s.TimerRunning = !s.TimerRunning
}

func (s *State) ResetTimer() {
	s.Timer = 0
	s.TimerRunning = false
}

// Tick advances the timer by one second if it is running.
func (s *State) Tick() bool {
	if !s.TimerRunning {
		return false
	}
	s.Timer++
	return true
}

func (s State) counts() (completed, total int) {
	for _, sets := range s.ExerciseSets {
		for _, set := range sets {
			total++
			if set.Completed {
				completed++
			}
		}
	}
	return completed, total
}

// Progress is the rounded percentage of completed sets, 0 when there are no sets.
func (s State) Progress() int {
	return percentage(s.counts())
}

func (s State) ExerciseProgress(exerciseID string) int {
	var completed int
	sets := s.ExerciseSets[exerciseID]
	for _, set := range sets {
		if set.Completed {
			completed++
		}
	}
	return percentage(completed, len(sets))
}

func (s State) CompletedSets() int {
	completed, _ := s.counts()
	return completed
}

func (s State) AllCompleted() bool {
	completed, total := s.counts()
	return completed == total
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// FormatTimer renders seconds as MM:SS. Minutes keep growing past 59.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func coerceNumber(value any) float64 {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func coerceReps(value any) int {
	return int(math.Trunc(coerceNumber(value)))
}

func coerceLoad(value any) float64 {
	return coerceNumber(value)
}

func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return coerceNumber(value) != 0
	}
}
