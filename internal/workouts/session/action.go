package session

import (
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown action")

type ActionType string

const (
	ActionEditSet      ActionType = "edit_set"
	ActionToggleSet    ActionType = "toggle_set"
	ActionNextExercise ActionType = "next_exercise"
	ActionPrevExercise ActionType = "prev_exercise"
	ActionToggleTimer  ActionType = "toggle_timer"
	ActionResetTimer   ActionType = "reset_timer"
)

// Action is one user mutation of a session. Set is the 0-based position of
// the set within the exercise.
type Action struct {
	Type       ActionType `json:"type"`
	ExerciseID string     `json:"exerciseId,omitempty"`
	Set        int        `json:"set"`
	Field      Field      `json:"field,omitempty"`
	Value      any        `json:"value,omitempty"`
}

func EditSet(exerciseID string, set int, field Field, value any) Action {
	return Action{Type: ActionEditSet, ExerciseID: exerciseID, Set: set, Field: field, Value: value}
}

func ToggleSet(exerciseID string, set int) Action {
	return Action{Type: ActionToggleSet, ExerciseID: exerciseID, Set: set}
}

// apply mutates state. planLen bounds exercise navigation.
func (a Action) apply(state *State, planLen int) error {
	switch a.Type {
	case ActionEditSet:
		return state.UpdateSet(a.ExerciseID, a.Set, a.Field, a.Value)
	case ActionToggleSet:
		_, err := state.ToggleSetComplete(a.ExerciseID, a.Set)
		return err
	case ActionNextExercise:
		state.NextExercise(planLen)
	case ActionPrevExercise:
		state.PrevExercise()
	case ActionToggleTimer:
		state.ToggleTimer()
	case ActionResetTimer:
		state.ResetTimer()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	return nil
}
