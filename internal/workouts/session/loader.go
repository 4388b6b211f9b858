package session

import (
	"context"
	"time"

	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"

	"go.opentelemetry.io/otel/attribute"
)

// Loader reads a workout plan and builds fresh session state from it.
type Loader struct {
	plans   planRepo
	history historyRepo
}

func NewLoader(plans planRepo, history historyRepo) *Loader {
	return &Loader{
		plans:   plans,
		history: history,
	}
}

// Plan returns the user's workout with exercises ordered by order index.
func (l *Loader) Plan(ctx context.Context, userID, workoutID string) (_ *workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.loader.plan")
	span.SetAttributes(attribute.String("workout.id", workoutID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return l.plans.Get(ctx, userID, workoutID)
}

// Initial builds the starting state of a session over workout, with the
// user's most recent reps and load per set filled in.
func (l *Loader) Initial(ctx context.Context, userID string, workout *workouts.Workout, startedAt time.Time) (_ State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.loader.initial")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exerciseIDs := make([]string, 0, len(workout.Exercises))
	for _, e := range workout.Exercises {
		exerciseIDs = append(exerciseIDs, e.ID)
	}

	last, err := l.history.LatestPerSet(ctx, userID, exerciseIDs)
	if err != nil {
		return State{}, err
	}

	return NewState(workout.ID, workout.Exercises, last, startedAt), nil
}
