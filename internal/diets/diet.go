package diets

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
)

const (
	tableDiets      = "diets"
	tableMeals      = "meals"
	tableFoods      = "foods"
	tableMealStatus = "meal_status"
)

// currentMealWindow is how far from its scheduled time a meal counts as current.
const currentMealWindow = 60

type Diet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	MealCount int    `json:"mealCount"`
	Progress  int    `json:"progress"`
	Meals     []Meal `json:"meals,omitempty"`
}

// CompletedMeals counts the meals marked as done.
func (d Diet) CompletedMeals() int {
	var done int
	for _, m := range d.Meals {
		if m.Done {
			done++
		}
	}
	return done
}

type Meal struct {
	ID         string `json:"id"`
	DietID     string `json:"dietId"`
	Name       string `json:"name"`
	TimeOfDay  string `json:"timeOfDay,omitempty"`
	OrderIndex int    `json:"orderIndex"`
	Foods      []Food `json:"foods"`

	Done    bool `json:"done"`
	Current bool `json:"current"`
}

// IsCurrent reports whether now is within an hour of the meal's time of day.
func (m Meal) IsCurrent(now time.Time) bool {
	mealMinutes, ok := minutesOfDay(m.TimeOfDay)
	if !ok {
		return false
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	diff := nowMinutes - mealMinutes
	if diff < 0 {
		diff = -diff
	}
	return diff <= currentMealWindow
}

// minutesOfDay parses HH:MM with optional seconds.
func minutesOfDay(timeOfDay string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(timeOfDay), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

type Food struct {
	ID       string `json:"id"`
	MealID   string `json:"mealId"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// Progress is the rounded percentage of done meals, 0 for a diet without meals.
func Progress(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func dietFromRow(row rowstore.Row) (Diet, error) {
	r := rowstore.NewReader(row)
	d := Diet{
		ID:        r.String("id"),
		UserID:    r.String("user_id"),
		Name:      r.String("name"),
		Active:    r.Bool("active"),
		CreatedAt: r.Time("created_at"),
	}
	if _, ok := row["updated_at"]; ok {
		d.UpdatedAt = r.Time("updated_at")
	}
	return d, r.Err()
}

func mealFromRow(row rowstore.Row) (Meal, error) {
	r := rowstore.NewReader(row)
	m := Meal{
		ID:         r.String("id"),
		DietID:     r.String("diet_id"),
		Name:       r.String("name"),
		TimeOfDay:  r.OptString("time_of_day"),
		OrderIndex: r.Int("order_index"),
		Foods:      []Food{},
	}
	return m, r.Err()
}

func foodFromRow(row rowstore.Row) (Food, error) {
	r := rowstore.NewReader(row)
	f := Food{
		ID:       r.String("id"),
		MealID:   r.String("meal_id"),
		Name:     r.String("name"),
		Quantity: r.OptString("quantity"),
		Notes:    r.OptString("notes"),
	}
	return f, r.Err()
}
