package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/2beens/fitlife/internal/snapshot"
	"github.com/2beens/fitlife/internal/telemetry/metrics"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"

	log "github.com/sirupsen/logrus"
)

// Bridge persists session state snapshots to a snapshot.Store.
type Bridge struct {
	store   snapshot.Store
	metrics *metrics.Manager
}

func NewBridge(store snapshot.Store, metricsManager *metrics.Manager) *Bridge {
	return &Bridge{
		store:   store,
		metrics: metricsManager,
	}
}

func (b *Bridge) Save(ctx context.Context, userID string, state State) error {
	snapshotJson, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	if err := b.store.Set(ctx, snapshot.Key(state.WorkoutID, userID), string(snapshotJson)); err != nil {
		return err
	}
	b.metrics.CounterSnapshotWrites.Inc()
	return nil
}

func (b *Bridge) Clear(ctx context.Context, workoutID, userID string) error {
	return b.store.Remove(ctx, snapshot.Key(workoutID, userID))
}

func (b *Bridge) Exists(ctx context.Context, workoutID, userID string) (bool, error) {
	_, found, err := b.store.Get(ctx, snapshot.Key(workoutID, userID))
	return found, err
}

// Restore returns the stored state for (workoutID, userID) reconciled with
// plan. It reports false when there is nothing usable: no snapshot, a snapshot
// that does not parse, one that belongs to another workout or one without sets.
func (b *Bridge) Restore(ctx context.Context, userID string, workout *workouts.Workout) (_ *State, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.bridge.restore")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := snapshot.Key(workout.ID, userID)
	raw, found, err := b.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Errorf("snapshot %s is corrupt, ignoring it: %s", key, err)
		b.metrics.CounterSnapshotCorrupted.Inc()
		return nil, false, nil
	}
	if state.WorkoutID != workout.ID {
		log.Debugf("snapshot %s belongs to workout %s, ignoring it", key, state.WorkoutID)
		return nil, false, nil
	}
	if !reconcile(&state, workout.Exercises) {
		log.Debugf("snapshot %s has no sets for the current plan, ignoring it", key)
		return nil, false, nil
	}

	return &state, true, nil
}

// reconcile drops set arrays of exercises no longer in plan, adds empty ones
// for new exercises and clamps the exercise index. It reports false when no
// stored sets survive.
func reconcile(state *State, plan []workouts.Exercise) bool {
	if len(state.ExerciseSets) == 0 {
		return false
	}

	sets := make(map[string][]ExerciseSet, len(plan))
	var kept int
	for _, e := range plan {
		if stored, ok := state.ExerciseSets[e.ID]; ok {
			sets[e.ID] = stored
			kept++
			continue
		}
		sets[e.ID] = newSets(e, nil)
	}
	if kept == 0 {
		return false
	}
	state.ExerciseSets = sets

	if state.CurrentExerciseIndex >= len(plan) {
		state.CurrentExerciseIndex = len(plan) - 1
	}
	if state.CurrentExerciseIndex < 0 {
		state.CurrentExerciseIndex = 0
	}
	if state.Timer < 0 {
		state.Timer = 0
	}
	state.TimerRunning = false
	return true
}
