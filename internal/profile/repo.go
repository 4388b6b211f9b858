package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/pkg"

	log "github.com/sirupsen/logrus"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

const DefaultWeightHistoryLimit = 30

type ProfileInput struct {
	Name   string   `json:"name"`
	Age    *int     `json:"age,omitempty"`
	Sex    string   `json:"sex,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Goal   string   `json:"goal,omitempty"`
}

func (in ProfileInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProfile)
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > 150) {
		return fmt.Errorf("%w: age %d out of range", ErrInvalidProfile, *in.Age)
	}
	if in.Height != nil && (*in.Height < 50 || *in.Height > 300) {
		return fmt.Errorf("%w: height must be between 50 and 300 cm", ErrInvalidProfile)
	}
	if in.Weight != nil && *in.Weight < 1 {
		return fmt.Errorf("%w: weight must be at least 1 kg", ErrInvalidProfile)
	}
	return nil
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

func (r *Repo) Get(ctx context.Context, userID string) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.Select(ctx, tableProfiles, rowstore.Where(rowstore.Eq("user_id", userID)))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrProfileNotFound
	}

	p, err := profileFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("decode profile of %s: %w", userID, err)
	}
	return &p, nil
}

// Save creates or replaces the user's profile. A weight different from the
// stored one is also added to the weight history.
func (r *Repo) Save(ctx context.Context, userID string, input ProfileInput) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	previous, err := r.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	now := r.nowFunc()
	row := rowstore.Row{
		"user_id":    userID,
		"name":       strings.TrimSpace(input.Name),
		"age":        nil,
		"sex":        nilIfEmpty(input.Sex),
		"height":     nil,
		"weight":     nil,
		"goal":       nilIfEmpty(input.Goal),
		"updated_at": now,
	}
	if input.Age != nil {
		row["age"] = *input.Age
	}
	if input.Height != nil {
		row["height"] = *input.Height
	}
	if input.Weight != nil {
		row["weight"] = *input.Weight
	}

	saved, err := r.store.Upsert(ctx, tableProfiles, row, "user_id")
	if err != nil {
		return nil, err
	}

	if input.Weight != nil && weightChanged(previous, *input.Weight) {
		if _, err := r.store.Insert(ctx, tableWeightHistory, rowstore.Row{
			"user_id":    userID,
			"date":       pkg.DateOf(now),
			"weight":     *input.Weight,
			"created_at": now,
		}); err != nil {
			return nil, err
		}
	}

	p, err := profileFromRow(saved)
	if err != nil {
		return nil, fmt.Errorf("decode saved profile: %w", err)
	}
	return &p, nil
}

func weightChanged(previous *Profile, weight float64) bool {
	return previous == nil || previous.Weight == nil || *previous.Weight != weight
}

func nilIfEmpty(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// WeightHistory returns the latest limit entries, oldest first.
func (r *Repo) WeightHistory(ctx context.Context, userID string, limit int) (_ []WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.weightHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if limit <= 0 {
		limit = DefaultWeightHistoryLimit
	}
	rows, err := r.store.Select(ctx, tableWeightHistory, rowstore.Where(
		rowstore.Eq("user_id", userID),
	).OrderBy(rowstore.Desc("date"), rowstore.Desc("created_at")).WithLimit(limit))
	if err != nil {
		return nil, err
	}

	entries := decodeWeights(rows)
	slices.Reverse(entries)
	return entries, nil
}

// WeightSince returns the entries dated on or after since, oldest first.
func (r *Repo) WeightSince(ctx context.Context, userID string, since time.Time) (_ []WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.weightSince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.Select(ctx, tableWeightHistory, rowstore.Where(
		rowstore.Eq("user_id", userID),
		rowstore.Gte("date", since),
	).OrderBy(rowstore.Asc("date"), rowstore.Asc("created_at")))
	if err != nil {
		return nil, err
	}
	return decodeWeights(rows), nil
}

func decodeWeights(rows []rowstore.Row) []WeightEntry {
	entries := make([]WeightEntry, 0, len(rows))
	for _, row := range rows {
		e, err := weightFromRow(row)
		if err != nil {
			log.Errorf("skipping malformed weight row: %s", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
