package workouts

import (
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
)

const (
	tableWorkouts  = "workouts"
	tableExercises = "exercises"
	tableHistory   = "exercise_history"
)

type Workout struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Weekdays  []int     `json:"weekdays"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ExerciseCount int        `json:"exerciseCount"`
	Exercises     []Exercise `json:"exercises,omitempty"`
}

// RunsOn reports whether the workout is scheduled on weekday.
func (w Workout) RunsOn(weekday time.Weekday) bool {
	for _, d := range w.Weekdays {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

type Exercise struct {
	ID          string   `json:"id"`
	WorkoutID   string   `json:"workoutId"`
	Name        string   `json:"name"`
	PlannedSets int      `json:"plannedSets"`
	PlannedReps string   `json:"plannedReps"`
	PlannedLoad *float64 `json:"plannedLoad,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	OrderIndex  int      `json:"orderIndex"`
}

type HistoryEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	ExerciseID   string    `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName,omitempty"`
	TrainingDate time.Time `json:"trainingDate"`
	SetNumber    int       `json:"setNumber"`
	Reps         int       `json:"reps"`
	Load         float64   `json:"load"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Volume is load times reps.
func (h HistoryEntry) Volume() float64 {
	return h.Load * float64(h.Reps)
}

func workoutFromRow(row rowstore.Row) (Workout, error) {
	r := rowstore.NewReader(row)
	w := Workout{
		ID:        r.String("id"),
		UserID:    r.String("user_id"),
		Name:      r.String("name"),
		Weekdays:  r.Ints("weekdays"),
		Active:    r.Bool("active"),
		CreatedAt: r.Time("created_at"),
	}
	if _, ok := row["updated_at"]; ok {
		w.UpdatedAt = r.Time("updated_at")
	}
	if w.Weekdays == nil {
		w.Weekdays = []int{}
	}
	return w, r.Err()
}

func exerciseFromRow(row rowstore.Row) (Exercise, error) {
	r := rowstore.NewReader(row)
	e := Exercise{
		ID:          r.String("id"),
		WorkoutID:   r.String("workout_id"),
		Name:        r.String("name"),
		PlannedSets: r.Int("planned_sets"),
		PlannedReps: r.OptString("planned_reps"),
		PlannedLoad: r.OptFloat("planned_load"),
		Notes:       r.OptString("notes"),
		OrderIndex:  r.Int("order_index"),
	}
	return e, r.Err()
}

func historyFromRow(row rowstore.Row) (HistoryEntry, error) {
	r := rowstore.NewReader(row)
	h := HistoryEntry{
		ID:           r.String("id"),
		UserID:       r.String("user_id"),
		ExerciseID:   r.String("exercise_id"),
		TrainingDate: r.Time("training_date"),
		SetNumber:    r.Int("set_number"),
		Reps:         r.Int("reps"),
		Load:         r.Float("load"),
		Notes:        r.OptString("notes"),
		CreatedAt:    r.Time("created_at"),
	}
	if embedded := r.Rows("exercise"); len(embedded) > 0 {
		h.ExerciseName = rowstore.NewReader(embedded[0]).OptString("name")
	}
	return h, r.Err()
}

func (h HistoryEntry) toRow() rowstore.Row {
	row := rowstore.Row{
		"user_id":       h.UserID,
		"exercise_id":   h.ExerciseID,
		"training_date": h.TrainingDate,
		"set_number":    h.SetNumber,
		"reps":          h.Reps,
		"load":          h.Load,
	}
	if h.Notes != "" {
		row["notes"] = h.Notes
	}
	return row
}
