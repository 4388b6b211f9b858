package profile

import (
	"math"
	"time"

	"github.com/2beens/fitlife/internal/rowstore"
)

const (
	tableProfiles      = "profiles"
	tableWeightHistory = "weight_history"
)

type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Age       *int      `json:"age,omitempty"`
	Sex       string    `json:"sex,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	Weight    *float64  `json:"weight,omitempty"`
	Goal      string    `json:"goal,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	BMI         *float64    `json:"bmi,omitempty"`
	BMICategory BMICategory `json:"bmiCategory,omitempty"`
}

func (p *Profile) fillBMI() {
	p.BMI, p.BMICategory = nil, ""
	if p.Weight == nil || p.Height == nil {
		return
	}
	bmi, ok := BMI(*p.Weight, *p.Height)
	if !ok {
		return
	}
	p.BMI = &bmi
	p.BMICategory = CategoryOf(bmi)
}

// BMI is weight (kg) over height (m) squared, rounded to one decimal.
// heightCm must be positive.
func BMI(weightKg, heightCm float64) (float64, bool) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, false
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10, true
}

func CategoryOf(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

type WeightEntry struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

type TrendDirection string

const (
	TrendStable  TrendDirection = "stable"
	TrendGaining TrendDirection = "gaining"
	TrendLosing  TrendDirection = "losing"
)

type WeightTrend struct {
	Direction TrendDirection `json:"direction"`
	// Diff is the absolute change in kg.
	Diff float64 `json:"diff"`
}

const (
	trendWindow    = 5
	trendThreshold = 0.1
)

// Trend compares the first and last of the latest five entries. Entries are
// expected oldest first. It reports false with fewer than two entries.
func Trend(entries []WeightEntry) (WeightTrend, bool) {
	if len(entries) < 2 {
		return WeightTrend{}, false
	}
	recent := entries[max(0, len(entries)-trendWindow):]
	diff := recent[len(recent)-1].Weight - recent[0].Weight
	if math.Abs(diff) < trendThreshold {
		return WeightTrend{Direction: TrendStable}, true
	}

	direction := TrendLosing
	if diff > 0 {
		direction = TrendGaining
	}
	return WeightTrend{
		Direction: direction,
		Diff:      math.Round(math.Abs(diff)*10) / 10,
	}, true
}

func profileFromRow(row rowstore.Row) (Profile, error) {
	r := rowstore.NewReader(row)
	p := Profile{
		ID:        r.String("id"),
		UserID:    r.String("user_id"),
		Name:      r.OptString("name"),
		Age:       r.OptInt("age"),
		Sex:       r.OptString("sex"),
		Height:    r.OptFloat("height"),
		Weight:    r.OptFloat("weight"),
		Goal:      r.OptString("goal"),
		CreatedAt: r.Time("created_at"),
	}
	if _, ok := row["updated_at"]; ok {
		p.UpdatedAt = r.Time("updated_at")
	}
	p.fillBMI()
	return p, r.Err()
}

func weightFromRow(row rowstore.Row) (WeightEntry, error) {
	r := rowstore.NewReader(row)
	e := WeightEntry{
		ID:     r.String("id"),
		Date:   r.Time("date"),
		Weight: r.Float("weight"),
	}
	return e, r.Err()
}
