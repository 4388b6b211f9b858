package session

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fitlife/internal/telemetry/metrics"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const IncompleteSessionPrompt = "Not all sets are completed. Finish the workout anyway?"

var (
	ErrNoCompletedSets = errors.New("mark at least one set as completed before saving")
	ErrFinishCancelled = errors.New("finish cancelled")
)

type FinishResult struct {
	Entries []workouts.HistoryEntry `json:"entries"`
}

// Finalizer turns completed sets into history entries.
type Finalizer struct {
	history historyRepo
	bridge  *Bridge
	metrics *metrics.Manager
}

func NewFinalizer(history historyRepo, bridge *Bridge, metricsManager *metrics.Manager) *Finalizer {
	return &Finalizer{
		history: history,
		bridge:  bridge,
		metrics: metricsManager,
	}
}

// BuildEntries returns one entry per completed set, in plan order.
func BuildEntries(userID string, plan []workouts.Exercise, sets map[string][]ExerciseSet, trainingDate time.Time) []workouts.HistoryEntry {
	var entries []workouts.HistoryEntry
	for _, e := range plan {
		for i, set := range sets[e.ID] {
			if !set.Completed {
				continue
			}
			setNumber := set.Set
			if setNumber < 1 {
				setNumber = i + 1
			}
			entries = append(entries, workouts.HistoryEntry{
				UserID:       userID,
				ExerciseID:   e.ID,
				ExerciseName: e.Name,
				TrainingDate: trainingDate,
				SetNumber:    setNumber,
				Reps:         max(set.Reps, 0),
				Load:         max(set.Load, 0),
			})
		}
	}
	return entries
}

// Finish validates state, asks confirmer when sets are left incomplete and
// writes the entries in one batch. The snapshot is cleared only after the
// write succeeds; on any failure state and snapshot are left as they were.
func (f *Finalizer) Finish(
	ctx context.Context,
	userID string,
	plan []workouts.Exercise,
	state State,
	trainingDate time.Time,
	confirmer Confirmer,
) (_ *FinishResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.finalizer.finish")
	span.SetAttributes(attribute.String("workout.id", state.WorkoutID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	entries := BuildEntries(userID, plan, state.ExerciseSets, trainingDate)
	if len(entries) == 0 {
		return nil, ErrNoCompletedSets
	}

	if !state.AllCompleted() {
		if confirmer == nil {
			return nil, ErrFinishCancelled
		}
		proceed, err := confirmer.Confirm(ctx, IncompleteSessionPrompt)
		if err != nil {
			return nil, err
		}
		if !proceed {
			return nil, ErrFinishCancelled
		}
	}

	added, err := f.history.Add(ctx, entries)
	if err != nil {
		return nil, err
	}
	f.metrics.CounterHistoryEntries.Add(float64(len(added)))

	// entries are stored, a failed clear is only logged
	if err := f.bridge.Clear(ctx, state.WorkoutID, userID); err != nil {
		log.Errorf("clear snapshot of finished session %s/%s: %s", state.WorkoutID, userID, err)
	}

	span.SetAttributes(attribute.Int("entries", len(added)))
	return &FinishResult{Entries: added}, nil
}
