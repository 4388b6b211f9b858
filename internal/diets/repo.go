package diets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrDietNotFound = errors.New("diet not found")
	ErrMealNotFound = errors.New("meal not found")
	ErrInvalidDiet  = errors.New("invalid diet")
)

type FoodInput struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

type MealInput struct {
	Name      string      `json:"name"`
	TimeOfDay string      `json:"timeOfDay,omitempty"`
	Foods     []FoodInput `json:"foods"`
}

type DietInput struct {
	Name  string      `json:"name"`
	Meals []MealInput `json:"meals"`
}

// Normalize trims names and drops meals and foods with blank names.
func (in DietInput) Normalize() (DietInput, error) {
	out := DietInput{Name: strings.TrimSpace(in.Name)}
	if out.Name == "" {
		return out, fmt.Errorf("%w: name is empty", ErrInvalidDiet)
	}

	for _, m := range in.Meals {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			continue
		}
		m.TimeOfDay = strings.TrimSpace(m.TimeOfDay)
		if m.TimeOfDay != "" {
			if _, ok := minutesOfDay(m.TimeOfDay); !ok {
				return out, fmt.Errorf("%w: meal %s has invalid time %q", ErrInvalidDiet, m.Name, m.TimeOfDay)
			}
		}

		var foods []FoodInput
		for _, f := range m.Foods {
			f.Name = strings.TrimSpace(f.Name)
			if f.Name == "" {
				continue
			}
			foods = append(foods, f)
		}
		m.Foods = foods
		out.Meals = append(out.Meals, m)
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

// List returns the user's diets, newest first, with meal counts and the
// progress of date.
func (r *Repo) List(ctx context.Context, userID string, date time.Time) (_ []Diet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.SelectWithJoin(ctx, tableDiets,
		rowstore.Where(rowstore.Eq("user_id", userID)).OrderBy(rowstore.Desc("created_at")),
		rowstore.Join{
			Table:      tableMeals,
			LocalKey:   "id",
			ForeignKey: "diet_id",
			As:         "meals",
		},
	)
	if err != nil {
		return nil, err
	}

	diets := make([]Diet, 0, len(rows))
	mealsByDiet := map[string][]string{}
	var allMealIDs []string
	for _, row := range rows {
		d, err := dietFromRow(row)
		if err != nil {
			log.Errorf("skipping malformed diet row: %s", err)
			continue
		}
		for _, mealRow := range rowstore.NewReader(row).Rows("meals") {
			mealID := rowstore.NewReader(mealRow).String("id")
			mealsByDiet[d.ID] = append(mealsByDiet[d.ID], mealID)
			allMealIDs = append(allMealIDs, mealID)
		}
		d.MealCount = len(mealsByDiet[d.ID])
		diets = append(diets, d)
	}

	done, err := r.doneMeals(ctx, userID, allMealIDs, date)
	if err != nil {
		return nil, err
	}
	for i := range diets {
		var completed int
		for _, mealID := range mealsByDiet[diets[i].ID] {
			if done[mealID] {
				completed++
			}
		}
		diets[i].Progress = Progress(completed, diets[i].MealCount)
	}

	span.SetAttributes(attribute.Int("diets.count", len(diets)))
	return diets, nil
}

// Get returns the diet with its meals in order, their foods and the meal status of date.
func (r *Repo) Get(ctx context.Context, userID, dietID string, date time.Time) (_ *Diet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(dietID) {
		return nil, ErrDietNotFound
	}

	rows, err := r.store.Select(ctx, tableDiets, rowstore.Where(
		rowstore.Eq("id", dietID),
		rowstore.Eq("user_id", userID),
	))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrDietNotFound
	}
	d, err := dietFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("decode diet %s: %w", dietID, err)
	}

	if err := r.fillMeals(ctx, userID, &d, date); err != nil {
		return nil, err
	}
	return &d, nil
}

// Active returns the user's newest active diet with meals, or ErrDietNotFound.
func (r *Repo) Active(ctx context.Context, userID string, date time.Time) (_ *Diet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.active")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.store.Select(ctx, tableDiets, rowstore.Where(
		rowstore.Eq("user_id", userID),
		rowstore.Eq("active", true),
	).OrderBy(rowstore.Desc("created_at")).WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrDietNotFound
	}
	d, err := dietFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("decode active diet: %w", err)
	}

	if err := r.fillMeals(ctx, userID, &d, date); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) fillMeals(ctx context.Context, userID string, d *Diet, date time.Time) error {
	mealRows, err := r.store.SelectWithJoin(ctx, tableMeals,
		rowstore.Where(rowstore.Eq("diet_id", d.ID)).OrderBy(rowstore.Asc("order_index")),
		rowstore.Join{
			Table:      tableFoods,
			LocalKey:   "id",
			ForeignKey: "meal_id",
			As:         "foods",
			Query:      rowstore.Where().OrderBy(rowstore.Asc("created_at")),
		},
	)
	if err != nil {
		return err
	}

	now := r.nowFunc()
	meals := make([]Meal, 0, len(mealRows))
	mealIDs := make([]string, 0, len(mealRows))
	for _, row := range mealRows {
		m, err := mealFromRow(row)
		if err != nil {
			log.Errorf("diet %s: skipping malformed meal row: %s", d.ID, err)
			continue
		}
		for _, foodRow := range rowstore.NewReader(row).Rows("foods") {
			f, err := foodFromRow(foodRow)
			if err != nil {
				log.Errorf("meal %s: skipping malformed food row: %s", m.ID, err)
				continue
			}
			m.Foods = append(m.Foods, f)
		}
		m.Current = m.IsCurrent(now)
		meals = append(meals, m)
		mealIDs = append(mealIDs, m.ID)
	}

	done, err := r.doneMeals(ctx, userID, mealIDs, date)
	if err != nil {
		return err
	}
	for i := range meals {
		meals[i].Done = done[meals[i].ID]
	}

	d.Meals = meals
	d.MealCount = len(meals)
	d.Progress = Progress(d.CompletedMeals(), len(meals))
	return nil
}

func (r *Repo) doneMeals(ctx context.Context, userID string, mealIDs []string, date time.Time) (map[string]bool, error) {
	done := map[string]bool{}
	if len(mealIDs) == 0 {
		return done, nil
	}

	rows, err := r.store.Select(ctx, tableMealStatus, rowstore.Where(
		rowstore.Eq("user_id", userID),
		rowstore.Eq("date", date),
		rowstore.In("meal_id", mealIDs),
	))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		reader := rowstore.NewReader(row)
		mealID, status := reader.String("meal_id"), reader.Bool("status")
		if err := reader.Err(); err != nil {
			log.Errorf("skipping malformed meal status row: %s", err)
			continue
		}
		done[strings.ToLower(mealID)] = status
	}
	return done, nil
}

func (r *Repo) Create(ctx context.Context, userID string, input DietInput) (_ *Diet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	input, err = input.Normalize()
	if err != nil {
		return nil, err
	}

	now := r.nowFunc()
	rows, err := r.store.Insert(ctx, tableDiets, rowstore.Row{
		"user_id":    userID,
		"name":       input.Name,
		"active":     true,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	d, err := dietFromRow(rows[0])
	if err != nil {
		return nil, fmt.Errorf("decode created diet: %w", err)
	}

	if err := r.insertMeals(ctx, d.ID, input.Meals, now); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID, d.ID, pkg.DateOf(now))
}

// Update renames the diet and replaces all of its meals and foods.
func (r *Repo) Update(ctx context.Context, userID, dietID string, input DietInput) (_ *Diet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(dietID) {
		return nil, ErrDietNotFound
	}

	input, err = input.Normalize()
	if err != nil {
		return nil, err
	}

	now := r.nowFunc()
	updated, err := r.store.Update(ctx, tableDiets, rowstore.Row{
		"name":       input.Name,
		"updated_at": now,
	}, rowstore.Eq("id", dietID), rowstore.Eq("user_id", userID))
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, ErrDietNotFound
	}

	if err := r.deleteMeals(ctx, dietID); err != nil {
		return nil, err
	}
	if err := r.insertMeals(ctx, dietID, input.Meals, now); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID, dietID, pkg.DateOf(now))
}

func (r *Repo) insertMeals(ctx context.Context, dietID string, meals []MealInput, now time.Time) error {
	for i, m := range meals {
		row := rowstore.Row{
			"diet_id":     dietID,
			"name":        m.Name,
			"time_of_day": nil,
			"order_index": i + 1,
			"created_at":  now,
			"updated_at":  now,
		}
		if m.TimeOfDay != "" {
			row["time_of_day"] = m.TimeOfDay
		}
		inserted, err := r.store.Insert(ctx, tableMeals, row)
		if err != nil {
			return err
		}
		mealID := rowstore.NewReader(inserted[0]).String("id")

		if len(m.Foods) == 0 {
			continue
		}
		foodRows := make([]rowstore.Row, 0, len(m.Foods))
		for _, f := range m.Foods {
			foodRows = append(foodRows, rowstore.Row{
				"meal_id":    mealID,
				"name":       f.Name,
				"quantity":   f.Quantity,
				"notes":      f.Notes,
				"created_at": now,
				"updated_at": now,
			})
		}
		if _, err := r.store.Insert(ctx, tableFoods, foodRows...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) deleteMeals(ctx context.Context, dietID string) error {
	rows, err := r.store.Select(ctx, tableMeals, rowstore.Where(rowstore.Eq("diet_id", dietID)))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	mealIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		mealIDs = append(mealIDs, rowstore.NewReader(row).String("id"))
	}
	if err := r.store.Delete(ctx, tableFoods, rowstore.In("meal_id", mealIDs)); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, tableMealStatus, rowstore.In("meal_id", mealIDs)); err != nil {
		return err
	}
	return r.store.Delete(ctx, tableMeals, rowstore.Eq("diet_id", dietID))
}

func (r *Repo) SetActive(ctx context.Context, userID, dietID string, active bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.setActive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(dietID) {
		return ErrDietNotFound
	}

	rows, err := r.store.Update(ctx, tableDiets, rowstore.Row{
		"active":     active,
		"updated_at": r.nowFunc(),
	}, rowstore.Eq("id", dietID), rowstore.Eq("user_id", userID))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrDietNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, dietID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(dietID) {
		return ErrDietNotFound
	}

	rows, err := r.store.Select(ctx, tableDiets, rowstore.Where(
		rowstore.Eq("id", dietID),
		rowstore.Eq("user_id", userID),
	))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrDietNotFound
	}

	if err := r.deleteMeals(ctx, dietID); err != nil {
		return err
	}
	return r.store.Delete(ctx, tableDiets, rowstore.Eq("id", dietID), rowstore.Eq("user_id", userID))
}

// SetMealStatus records whether the meal was eaten on date. There is one
// status row per user, meal and date.
func (r *Repo) SetMealStatus(ctx context.Context, userID, mealID string, date time.Time, done bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.setMealStatus")
	span.SetAttributes(attribute.String("meal.id", mealID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.checkMealOwner(ctx, userID, mealID); err != nil {
		return err
	}

	_, err = r.store.Upsert(ctx, tableMealStatus, rowstore.Row{
		"user_id":    userID,
		"meal_id":    mealID,
		"date":       date,
		"status":     done,
		"updated_at": r.nowFunc(),
	}, "user_id", "meal_id", "date")
	return err
}

// ToggleMeal flips the meal's status for date and returns the new value.
func (r *Repo) ToggleMeal(ctx context.Context, userID, mealID string, date time.Time) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diets.toggleMeal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !rowstore.ValidID(mealID) {
		return false, ErrMealNotFound
	}

	done, err := r.doneMeals(ctx, userID, []string{mealID}, date)
	if err != nil {
		return false, err
	}
	next := !done[strings.ToLower(mealID)]
	if err := r.SetMealStatus(ctx, userID, mealID, date, next); err != nil {
		return false, err
	}
	return next, nil
}

func (r *Repo) checkMealOwner(ctx context.Context, userID, mealID string) error {
	if !rowstore.ValidID(mealID) {
		return ErrMealNotFound
	}
	rows, err := r.store.SelectWithJoin(ctx, tableMeals,
		rowstore.Where(rowstore.Eq("id", mealID)),
		rowstore.Join{
			Table:      tableDiets,
			LocalKey:   "diet_id",
			ForeignKey: "id",
			As:         "diet",
			Query:      rowstore.Where(rowstore.Eq("user_id", userID)),
		},
	)
	if err != nil {
		return err
	}
	if len(rows) == 0 || len(rowstore.NewReader(rows[0]).Rows("diet")) == 0 {
		return ErrMealNotFound
	}
	return nil
}
