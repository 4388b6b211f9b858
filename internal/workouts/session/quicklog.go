package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitlife/internal/telemetry/metrics"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/pkg"

	"go.opentelemetry.io/otel/attribute"
)

var ErrFutureDate = errors.New("training date cannot be in the future")

// QuickLogPlan is the form for back-filling a past workout: the plan and
// blank sets, without the user's history.
type QuickLogPlan struct {
	Workout      *workouts.Workout        `json:"workout"`
	ExerciseSets map[string][]ExerciseSet `json:"exerciseSets"`
}

// QuickLogger records a whole workout at once for a chosen date. It shares
// validation and the batch write with session finish, but keeps no state
// and no snapshot.
type QuickLogger struct {
	plans   planRepo
	history historyRepo
	metrics *metrics.Manager
	nowFunc func() time.Time
}

func NewQuickLogger(plans planRepo, history historyRepo, metricsManager *metrics.Manager) *QuickLogger {
	return &QuickLogger{
		plans:   plans,
		history: history,
		metrics: metricsManager,
		nowFunc: time.Now,
	}
}

func (q *QuickLogger) Plan(ctx context.Context, userID, workoutID string) (_ *QuickLogPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.quicklog.plan")
	span.SetAttributes(attribute.String("workout.id", workoutID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout, err := q.plans.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	state := NewState(workout.ID, workout.Exercises, nil, q.nowFunc())
	return &QuickLogPlan{
		Workout:      workout,
		ExerciseSets: state.ExerciseSets,
	}, nil
}

// Log writes one history entry per completed set. Set numbers follow the
// position of each set in its exercise's list.
func (q *QuickLogger) Log(
	ctx context.Context,
	userID, workoutID string,
	trainingDate time.Time,
	sets map[string][]ExerciseSet,
) (_ *FinishResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.quicklog.log")
	span.SetAttributes(attribute.String("workout.id", workoutID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	trainingDate = pkg.DateOf(trainingDate)
	if trainingDate.After(pkg.DateOf(q.nowFunc())) {
		return nil, ErrFutureDate
	}

	numbered := make(map[string][]ExerciseSet, len(sets))
	var completed int
	for exerciseID, exerciseSets := range sets {
		numbered[exerciseID] = make([]ExerciseSet, len(exerciseSets))
		for i, set := range exerciseSets {
			set.Set = i + 1
			numbered[exerciseID][i] = set
			if set.Completed {
				completed++
			}
		}
	}
	if completed == 0 {
		return nil, ErrNoCompletedSets
	}

	workout, err := q.plans.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(workout.Exercises))
	for _, e := range workout.Exercises {
		known[e.ID] = true
	}
	for exerciseID := range numbered {
		if !known[exerciseID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseID)
		}
	}

	entries := BuildEntries(userID, workout.Exercises, numbered, trainingDate)
	added, err := q.history.Add(ctx, entries)
	if err != nil {
		return nil, err
	}
	q.metrics.CounterHistoryEntries.Add(float64(len(added)))

	span.SetAttributes(attribute.Int("entries", len(added)))
	return &FinishResult{Entries: added}, nil
}
