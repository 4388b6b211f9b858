package evolution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitlife/internal/profile"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/pkg"

	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=analyzer_mocks_test.go -package=evolution_test

const (
	DefaultPeriodDays = 30
	MaxPeriodDays     = 3650

	// the week-over-week comparison always needs the last fourteen days
	comparisonDays = 14
)

var ErrInvalidPeriod = errors.New("invalid period")

type historyRepo interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]workouts.HistoryEntry, error)
}

type profileRepo interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
	WeightSince(ctx context.Context, userID string, since time.Time) ([]profile.WeightEntry, error)
}

type Params struct {
	// Days counts back from today, today included.
	Days int
	// ExerciseID optionally restricts the max load chart.
	ExerciseID string
}

type Analyzer struct {
	history  historyRepo
	profiles profileRepo
	nowFunc  func() time.Time
}

func NewAnalyzer(history historyRepo, profiles profileRepo) *Analyzer {
	return &Analyzer{
		history:  history,
		profiles: profiles,
		nowFunc:  time.Now,
	}
}

func (a *Analyzer) Report(ctx context.Context, userID string, params Params) (_ *Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.evolution.report")
	span.SetAttributes(attribute.Int("days", params.Days))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if params.Days == 0 {
		params.Days = DefaultPeriodDays
	}
	if params.Days < 1 || params.Days > MaxPeriodDays {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidPeriod, params.Days)
	}

	today := pkg.DateOf(a.nowFunc())
	from := today.AddDate(0, 0, -(params.Days - 1))
	historyFrom := from
	if params.Days < comparisonDays {
		historyFrom = today.AddDate(0, 0, -(comparisonDays - 1))
	}

	p, err := a.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	weights, err := a.profiles.WeightSince(ctx, userID, from)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}

	history, err := a.history.ListSince(ctx, userID, historyFrom)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	report := build(input{
		today:    today,
		from:     from,
		exercise: params.ExerciseID,
		profile:  p,
		weights:  weights,
		history:  history,
	})
	return &report, nil
}
