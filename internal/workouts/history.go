package workouts

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// LastPerformance maps exercise id to set number to the latest entry for that set.
type LastPerformance map[string]map[int]HistoryEntry

func (lp LastPerformance) For(exerciseID string, setNumber int) (HistoryEntry, bool) {
	h, ok := lp[exerciseID][setNumber]
	return h, ok
}

type HistoryRepo struct {
	store   rowstore.Store
	nowFunc func() time.Time
}

func NewHistoryRepo(store rowstore.Store) *HistoryRepo {
	return &HistoryRepo{
		store:   store,
		nowFunc: time.Now,
	}
}

// Add writes all entries in a single batch insert.
func (r *HistoryRepo) Add(ctx context.Context, entries []HistoryEntry) (_ []HistoryEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.add")
	span.SetAttributes(attribute.Int("entries", len(entries)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(entries) == 0 {
		return nil, fmt.Errorf("no history entries to add")
	}

	now := r.nowFunc()
	rows := make([]rowstore.Row, 0, len(entries))
	for _, e := range entries {
		row := e.toRow()
		row["created_at"] = now
		rows = append(rows, row)
	}

	inserted, err := r.store.Insert(ctx, tableHistory, rows...)
	if err != nil {
		return nil, err
	}

	added := make([]HistoryEntry, 0, len(inserted))
	for _, row := range inserted {
		h, err := historyFromRow(row)
		if err != nil {
			log.Errorf("decode inserted history row: %s", err)
			continue
		}
		added = append(added, h)
	}
	return added, nil
}

// LatestPerSet returns, per exercise and set number, the user's most recent
// entry. Ties on training date go to the newest created_at.
func (r *HistoryRepo) LatestPerSet(ctx context.Context, userID string, exerciseIDs []string) (_ LastPerformance, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.latestPerSet")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	latest := LastPerformance{}
	if len(exerciseIDs) == 0 {
		return latest, nil
	}

	rows, err := r.store.Select(ctx, tableHistory, rowstore.Where(
		rowstore.Eq("user_id", userID),
		rowstore.In("exercise_id", exerciseIDs),
	).OrderBy(rowstore.Desc("training_date"), rowstore.Desc("created_at")))
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		h, err := historyFromRow(row)
		if err != nil {
			log.Errorf("skipping malformed history row: %s", err)
			continue
		}
		perSet, ok := latest[h.ExerciseID]
		if !ok {
			perSet = map[int]HistoryEntry{}
			latest[h.ExerciseID] = perSet
		}
		// rows arrive newest first
		if _, seen := perSet[h.SetNumber]; !seen {
			perSet[h.SetNumber] = h
		}
	}
	return latest, nil
}

// ListSince returns the user's entries with training date >= since, oldest
// first, with exercise names filled in.
func (r *HistoryRepo) ListSince(ctx context.Context, userID string, since time.Time) (_ []HistoryEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.listSince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.SelectWithJoin(ctx, tableHistory,
		rowstore.Where(
			rowstore.Eq("user_id", userID),
			rowstore.Gte("training_date", since),
		).OrderBy(rowstore.Asc("training_date"), rowstore.Asc("created_at")),
		rowstore.Join{
			Table:      tableExercises,
			LocalKey:   "exercise_id",
			ForeignKey: "id",
			As:         "exercise",
		},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		h, err := historyFromRow(row)
		if err != nil {
			log.Errorf("skipping malformed history row: %s", err)
			continue
		}
		entries = append(entries, h)
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}
