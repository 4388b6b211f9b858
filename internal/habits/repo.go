package habits

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	tableHabits      = "habits"
	tableHabitStatus = "habit_status"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrInvalidHabit  = errors.New("invalid habit")
)

type Habit struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Notification bool      `json:"notification"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`

	Done bool `json:"done"`
}

type HabitInput struct {
	Name         string `json:"name"`
	Notification bool   `json:"notification"`
}

// Completion is the rounded percentage of done habits, 0 without habits.
func Completion(habits []Habit) int {
	if len(habits) == 0 {
		return 0
	}
	var done int
	for _, h := range habits {
		if h.Done {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(habits)) * 100))
}

func habitFromRow(row rowstore.Row) (Habit, error) {
	r := rowstore.NewReader(row)
	h := Habit{
		ID:           r.String("id"),
		UserID:       r.String("user_id"),
		Name:         r.String("name"),
		Notification: r.Bool("notification"),
		Active:       r.Bool("active"),
		CreatedAt:    r.Time("created_at"),
	}
	return h, r.Err()
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

// Active returns the user's active habits, oldest first, with their status on date.
func (r *Repo) Active(ctx context.Context, userID string, date time.Time) (_ []Habit, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.habits.active")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.Select(ctx, tableHabits, rowstore.Where(
		rowstore.Eq("user_id", userID),
		rowstore.Eq("active", true),
	).OrderBy(rowstore.Asc("created_at")))
	if err != nil {
		return nil, err
	}

	habits := make([]Habit, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		h, err := habitFromRow(row)
		if err != nil {
			log.Errorf("skipping malformed habit row: %s", err)
			continue
		}
		habits = append(habits, h)
		ids = append(ids, h.ID)
	}

	done, err := r.statuses(ctx, userID, ids, date)
	if err != nil {
		return nil, err
	}
	for i := range habits {
		habits[i].Done = done[habits[i].ID]
	}

	span.SetAttributes(attribute.Int("habits.count", len(habits)))
	return habits, nil
}

func (r *Repo) statuses(ctx context.Context, userID string, habitIDs []string, date time.Time) (map[string]bool, error) {
	done := map[string]bool{}
	if len(habitIDs) == 0 {
		return done, nil
	}

	rows, err := r.store.Select(ctx, tableHabitStatus, rowstore.Where(
		rowstore.Eq("user_id", userID),
		rowstore.Eq("date", date),
		rowstore.In("habit_id", habitIDs),
	))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		reader := rowstore.NewReader(row)
		habitID, status := reader.String("habit_id"), reader.Bool("status")
		if err := reader.Err(); err != nil {
			log.Errorf("skipping malformed habit status row: %s", err)
			continue
		}
		done[strings.ToLower(habitID)] = status
	}
	return done, nil
}

func (r *Repo) Create(ctx context.Context, userID string, input HabitInput) (_ *Habit, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.habits.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrInvalidHabit)
	}

	now := r.nowFunc()
	rows, err := r.store.Insert(ctx, tableHabits, rowstore.Row{
		"user_id":      userID,
		"name":         name,
		"notification": input.Notification,
		"active":       true,
		"created_at":   now,
		"updated_at":   now,
	})
	if err != nil {
		return nil, err
	}

	h, err := habitFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("decode created habit: %w", err)
	}
	return &h, nil
}

// Toggle flips the habit's status on date and returns the new value.
func (r *Repo) Toggle(ctx context.Context, userID, habitID string, date time.Time) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.habits.toggle")
	span.SetAttributes(attribute.String("habit.id", habitID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(habitID) {
		return false, ErrHabitNotFound
	}

	rows, err := r.store.Select(ctx, tableHabits, rowstore.Where(
		rowstore.Eq("id", habitID),
		rowstore.Eq("user_id", userID),
	))
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, ErrHabitNotFound
	}

	done, err := r.statuses(ctx, userID, []string{habitID}, date)
	if err != nil {
		return false, err
	}
	next := !done[strings.ToLower(habitID)]

	if _, err := r.store.Upsert(ctx, tableHabitStatus, rowstore.Row{
		"user_id":    userID,
		"habit_id":   habitID,
		"date":       date,
		"status":     next,
		"updated_at": r.nowFunc(),
	}, "user_id", "habit_id", "date"); err != nil {
		return false, err
	}
	return next, nil
}

// Deactivate hides the habit. Its status history is kept.
func (r *Repo) Deactivate(ctx context.Context, userID, habitID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.habits.deactivate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(habitID) {
		return ErrHabitNotFound
	}

	rows, err := r.store.Update(ctx, tableHabits, rowstore.Row{
		"active":     false,
		"updated_at": r.nowFunc(),
	}, rowstore.Eq("id", habitID), rowstore.Eq("user_id", userID))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrHabitNotFound
	}
	return nil
}
