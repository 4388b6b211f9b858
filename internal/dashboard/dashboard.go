package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/2beens/fitlife/internal/diets"
	"github.com/2beens/fitlife/internal/habits"
	"github.com/2beens/fitlife/internal/profile"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=dashboard_mocks_test.go -package=dashboard_test

const (
	SectionProfile = "profile"
	SectionWorkout = "workout"
	SectionDiet    = "diet"
	SectionHabits  = "habits"
)

type workoutsRepo interface {
	Today(ctx context.Context, userID string, weekday time.Weekday) (*workouts.Workout, error)
}

type dietsRepo interface {
	Active(ctx context.Context, userID string, date time.Time) (*diets.Diet, error)
}

type habitsRepo interface {
	Active(ctx context.Context, userID string, date time.Time) ([]habits.Habit, error)
}

type profileRepo interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

type sessionTracker interface {
	HasUnsavedSession(ctx context.Context, userID, workoutID string) (bool, error)
}

type Dashboard struct {
	Date            time.Time         `json:"date"`
	Weekday         time.Weekday      `json:"weekday"`
	Profile         *profile.Profile  `json:"profile,omitempty"`
	Workout         *workouts.Workout `json:"workout,omitempty"`
	UnsavedSession  bool              `json:"unsavedSession"`
	Diet            *diets.Diet       `json:"diet,omitempty"`
	Habits          []habits.Habit    `json:"habits"`
	HabitCompletion int               `json:"habitCompletion"`
	// Unavailable lists the sections that failed to load.
	Unavailable []string `json:"unavailable,omitempty"`
}

type Params struct {
	Workouts workoutsRepo
	Diets    dietsRepo
	Habits   habitsRepo
	Profiles profileRepo
	Sessions sessionTracker
}

type Service struct {
	params  Params
	nowFunc func() time.Time
}

func NewService(params Params) *Service {
	return &Service{
		params:  params,
		nowFunc: time.Now,
	}
}

// Today loads every section concurrently. A failing section is logged and
// reported in Unavailable, the rest of the dashboard is still returned.
func (s *Service) Today(ctx context.Context, userID string) *Dashboard {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.today")
	defer span.End()

	now := s.nowFunc()
	today := pkg.DateOf(now)
	d := &Dashboard{
		Date:    today,
		Weekday: now.Weekday(),
		Habits:  []habits.Habit{},
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	load := func(section string, f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				log.Errorf("dashboard of %s: load %s: %s", userID, section, err)
				mu.Lock()
				d.Unavailable = append(d.Unavailable, section)
				mu.Unlock()
			}
		}()
	}

	load(SectionProfile, func() error {
		p, err := s.params.Profiles.Get(ctx, userID)
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mu.Lock()
		d.Profile = p
		mu.Unlock()
		return nil
	})

	load(SectionWorkout, func() error {
		w, err := s.params.Workouts.Today(ctx, userID, now.Weekday())
		if errors.Is(err, workouts.ErrWorkoutNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		unsaved, err := s.params.Sessions.HasUnsavedSession(ctx, userID, w.ID)
		if err != nil {
			log.Errorf("dashboard of %s: unsaved session of %s: %s", userID, w.ID, err)
		}
		mu.Lock()
		d.Workout = w
		d.UnsavedSession = unsaved
		mu.Unlock()
		return nil
	})

	load(SectionDiet, func() error {
		diet, err := s.params.Diets.Active(ctx, userID, today)
		if errors.Is(err, diets.ErrDietNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mu.Lock()
		d.Diet = diet
		mu.Unlock()
		return nil
	})

	load(SectionHabits, func() error {
		active, err := s.params.Habits.Active(ctx, userID, today)
		if err != nil {
			return err
		}
		if active == nil {
			active = []habits.Habit{}
		}
		mu.Lock()
		d.Habits = active
		d.HabitCompletion = habits.Completion(active)
		mu.Unlock()
		return nil
	})

	wg.Wait()
	slices.Sort(d.Unavailable)
	return d
}
