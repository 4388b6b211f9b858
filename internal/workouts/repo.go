package workouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrInvalidWorkout  = errors.New("invalid workout")
)

type ExerciseInput struct {
	// ID is set when updating an existing exercise.
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	PlannedSets int      `json:"plannedSets"`
	PlannedReps string   `json:"plannedReps"`
	PlannedLoad *float64 `json:"plannedLoad,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

type WorkoutInput struct {
	Name      string          `json:"name"`
	Weekdays  []int           `json:"weekdays"`
	Exercises []ExerciseInput `json:"exercises"`
}

// Normalize trims names, drops exercises with blank names and validates the rest.
func (in WorkoutInput) Normalize() (WorkoutInput, error) {
	out := WorkoutInput{
		Name:     strings.TrimSpace(in.Name),
		Weekdays: []int{},
	}
	if out.Name == "" {
		return out, fmt.Errorf("%w: name is empty", ErrInvalidWorkout)
	}

	seen := map[int]bool{}
	for _, d := range in.Weekdays {
		if d < 0 || d > 6 {
			return out, fmt.Errorf("%w: weekday %d out of range", ErrInvalidWorkout, d)
		}
		if !seen[d] {
			seen[d] = true
			out.Weekdays = append(out.Weekdays, d)
		}
	}

	for _, e := range in.Exercises {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		if e.PlannedSets < 1 {
			return out, fmt.Errorf("%w: exercise %s needs at least one set", ErrInvalidWorkout, e.Name)
		}
		if e.PlannedLoad != nil && *e.PlannedLoad < 0 {
			return out, fmt.Errorf("%w: exercise %s has a negative load", ErrInvalidWorkout, e.Name)
		}
		out.Exercises = append(out.Exercises, e)
	}
	return out, nil
}

type Repo struct {
	store   rowstore.Store
	nowFunc func() time.Time
}

func NewRepo(store rowstore.Store) *Repo {
	return &Repo{
		store:   store,
		nowFunc: time.Now,
	}
}

// List returns the user's workouts, newest first, with exercise counts.
func (r *Repo) List(ctx context.Context, userID string) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.SelectWithJoin(ctx, tableWorkouts,
		rowstore.Where(rowstore.Eq("user_id", userID)).OrderBy(rowstore.Desc("created_at")),
		rowstore.Join{
			Table:      tableExercises,
			LocalKey:   "id",
			ForeignKey: "workout_id",
			As:         "exercises",
		},
	)
	if err != nil {
		return nil, err
	}

	workouts := make([]Workout, 0, len(rows))
	for _, row := range rows {
		w, err := workoutFromRow(row)
		if err != nil {
			log.Errorf("skipping malformed workout row: %s", err)
			continue
		}
		w.ExerciseCount = len(rowstore.NewReader(row).Rows("exercises"))
		workouts = append(workouts, w)
	}

	span.SetAttributes(attribute.Int("workouts.count", len(workouts)))
	return workouts, nil
}

// Get returns the user's workout with its exercises.
func (r *Repo) Get(ctx context.Context, userID, workoutID string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	w, err := r.getWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	exercises, err := r.Exercises(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	w.Exercises = exercises
	w.ExerciseCount = len(exercises)

	return w, nil
}

func (r *Repo) getWorkout(ctx context.Context, userID, workoutID string) (*Workout, error) {
	if !rowstore.ValidID(workoutID) {
		return nil, ErrWorkoutNotFound
	}
	rows, err := r.store.Select(ctx, tableWorkouts, rowstore.Where(
		rowstore.Eq("id", workoutID),
		rowstore.Eq("user_id", userID),
	))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrWorkoutNotFound
	}

	w, err := workoutFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("decode workout %s: %w", workoutID, err)
	}
	return &w, nil
}

// Exercises returns the workout's exercises ordered by order index.
func (r *Repo) Exercises(ctx context.Context, workoutID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.Select(ctx, tableExercises,
		rowstore.Where(rowstore.Eq("workout_id", workoutID)).OrderBy(rowstore.Asc("order_index")),
	)
	if err != nil {
		return nil, err
	}

	exercises := make([]Exercise, 0, len(rows))
	for _, row := range rows {
		e, err := exerciseFromRow(row)
		if err != nil {
			log.Errorf("workout %s: skipping malformed exercise row: %s", workoutID, err)
			continue
		}
		exercises = append(exercises, e)
	}
	return exercises, nil
}

func (r *Repo) Create(ctx context.Context, userID string, input WorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	input, err = input.Normalize()
	if err != nil {
		return nil, err
	}

	now := r.nowFunc()
	rows, err := r.store.Insert(ctx, tableWorkouts, rowstore.Row{
		"user_id":    userID,
		"name":       input.Name,
		"weekdays":   input.Weekdays,
		"active":     true,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	w, err := workoutFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("decode created workout: %w", err)
	}

	if len(input.Exercises) > 0 {
		exRows := make([]rowstore.Row, 0, len(input.Exercises))
		for i, e := range input.Exercises {
			exRows = append(exRows, exerciseRow(w.ID, i+1, e, now))
		}
		if _, err := r.store.Insert(ctx, tableExercises, exRows...); err != nil {
			return nil, err
		}
	}

	return r.Get(ctx, userID, w.ID)
}

// Update replaces the workout's fields and exercise list. Exercises that keep
// their id are updated in place so their history survives.
func (r *Repo) Update(ctx context.Context, userID, workoutID string, input WorkoutInput) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	input, err = input.Normalize()
	if err != nil {
		return nil, err
	}

	existing, err := r.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	now := r.nowFunc()
	if _, err := r.store.Update(ctx, tableWorkouts, rowstore.Row{
		"name":       input.Name,
		"weekdays":   input.Weekdays,
		"updated_at": now,
	}, rowstore.Eq("id", workoutID), rowstore.Eq("user_id", userID)); err != nil {
		return nil, err
	}

	known := map[string]bool{}
	for _, e := range existing.Exercises {
		known[e.ID] = true
	}

	kept := map[string]bool{}
	var newRows []rowstore.Row
	for i, e := range input.Exercises {
		if e.ID != "" && known[e.ID] {
			kept[e.ID] = true
			patch := exerciseRow(workoutID, i+1, e, now)
			delete(patch, "created_at")
			delete(patch, "workout_id")
			if _, err := r.store.Update(ctx, tableExercises, patch, rowstore.Eq("id", e.ID)); err != nil {
				return nil, err
			}
			continue
		}
		newRows = append(newRows, exerciseRow(workoutID, i+1, e, now))
	}

	var removed []string
	for _, e := range existing.Exercises {
		if !kept[e.ID] {
			removed = append(removed, e.ID)
		}
	}
	if len(removed) > 0 {
		if err := r.store.Delete(ctx, tableExercises, rowstore.In("id", removed)); err != nil {
			return nil, err
		}
	}
	if len(newRows) > 0 {
		if _, err := r.store.Insert(ctx, tableExercises, newRows...); err != nil {
			return nil, err
		}
	}

	return r.Get(ctx, userID, workoutID)
}

func (r *Repo) SetActive(ctx context.Context, userID, workoutID string, active bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.setActive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(workoutID) {
		return ErrWorkoutNotFound
	}

	rows, err := r.store.Update(ctx, tableWorkouts, rowstore.Row{
		"active":     active,
		"updated_at": r.nowFunc(),
	}, rowstore.Eq("id", workoutID), rowstore.Eq("user_id", userID))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, workoutID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.getWorkout(ctx, userID, workoutID); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, tableExercises, rowstore.Eq("workout_id", workoutID)); err != nil {
		return err
	}
	return r.store.Delete(ctx, tableWorkouts, rowstore.Eq("id", workoutID), rowstore.Eq("user_id", userID))
}

// Today returns the oldest active workout scheduled for weekday.
func (r *Repo) Today(ctx context.Context, userID string, weekday time.Weekday) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.today")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.Select(ctx, tableWorkouts, rowstore.Where(
		rowstore.Eq("user_id", userID),
		rowstore.Eq("active", true),
	).OrderBy(rowstore.Asc("created_at")))
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		w, err := workoutFromRow(row)
		if err != nil {
			log.Errorf("skipping malformed workout row: %s", err)
			continue
		}
		if w.RunsOn(weekday) {
			return r.Get(ctx, userID, w.ID)
		}
	}
	return nil, ErrWorkoutNotFound
}

func exerciseRow(workoutID string, orderIndex int, e ExerciseInput, now time.Time) rowstore.Row {
	row := rowstore.Row{
		"workout_id":   workoutID,
		"name":         e.Name,
		"planned_sets": e.PlannedSets,
		"planned_reps": e.PlannedReps,
		"planned_load": nil,
		"notes":        e.Notes,
		"order_index":  orderIndex,
		"created_at":   now,
		"updated_at":   now,
	}
	if e.PlannedLoad != nil {
		row["planned_load"] = *e.PlannedLoad
	}
	return row
}
