package evolution

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/2beens/fitlife/internal/profile"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/pkg"
)

type WeightChange struct {
	Diff    float64 `json:"diff"`
	Percent float64 `json:"percent"`
}

type WeightPoint struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
	BMI    *float64  `json:"bmi,omitempty"`
}

type LoadPoint struct {
	Date       time.Time `json:"date"`
	ExerciseID string    `json:"exerciseId"`
	Exercise   string    `json:"exercise"`
	MaxLoad    float64   `json:"maxLoad"`
}

type VolumePoint struct {
	Date   time.Time `json:"date"`
	Volume float64   `json:"volume"`
}

type FrequencyPoint struct {
	WeekStart time.Time `json:"weekStart"`
	Days      int       `json:"days"`
}

// ExerciseHighlight names the exercise that leads one of the comparisons.
type ExerciseHighlight struct {
	ExerciseID string  `json:"exerciseId"`
	Exercise   string  `json:"exercise"`
	Value      float64 `json:"value"`
}

type WeekOverWeek struct {
	ThisWeek float64 `json:"thisWeek"`
	LastWeek float64 `json:"lastWeek"`
	Delta    float64 `json:"delta"`
	// Percent is nil when nothing was lifted in the previous seven days.
	Percent *float64 `json:"percent,omitempty"`
}

type Report struct {
	From              time.Time          `json:"from"`
	To                time.Time          `json:"to"`
	WeightChange      *WeightChange      `json:"weightChange,omitempty"`
	CurrentBMI        *float64           `json:"currentBmi,omitempty"`
	BMICategory       string             `json:"bmiCategory,omitempty"`
	Weights           []WeightPoint      `json:"weights"`
	TotalWorkouts     int                `json:"totalWorkouts"`
	TotalVolume       float64            `json:"totalVolume"`
	AvgStrengthGrowth float64            `json:"avgStrengthGrowth"`
	Exercises         []string           `json:"exercises"`
	MaxLoads          []LoadPoint        `json:"maxLoads"`
	Volume            []VolumePoint      `json:"volume"`
	Frequency         []FrequencyPoint   `json:"frequency"`
	BestEvolution     *ExerciseHighlight `json:"bestEvolution,omitempty"`
	MostConsistent    *ExerciseHighlight `json:"mostConsistent,omitempty"`
	HighestVolume     *ExerciseHighlight `json:"highestVolume,omitempty"`
	WeekOverWeek      WeekOverWeek       `json:"weekOverWeek"`
}

type input struct {
	today    time.Time
	from     time.Time
	exercise string
	profile  *profile.Profile
	weights  []profile.WeightEntry
	// history covers at least the period and the last fourteen days,
	// oldest first.
	history []workouts.HistoryEntry
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func build(in input) Report {
	report := Report{
		From:      in.from,
		To:        in.today,
		Weights:   []WeightPoint{},
		Exercises: []string{},
		MaxLoads:  []LoadPoint{},
		Volume:    []VolumePoint{},
		Frequency: []FrequencyPoint{},
	}

	var height float64
	if in.profile != nil && in.profile.Height != nil {
		height = *in.profile.Height
	}
	if in.profile != nil && in.profile.BMI != nil {
		report.CurrentBMI = in.profile.BMI
		report.BMICategory = string(in.profile.BMICategory)
	}

	for _, w := range in.weights {
		point := WeightPoint{Date: w.Date, Weight: w.Weight}
		if bmi, ok := profile.BMI(w.Weight, height); ok {
			point.BMI = &bmi
		}
		report.Weights = append(report.Weights, point)
	}
	if len(in.weights) >= 2 {
		first, last := in.weights[0].Weight, in.weights[len(in.weights)-1].Weight
		change := WeightChange{Diff: round1(last - first)}
		if first != 0 {
			change.Percent = round1((last - first) / first * 100)
		}
		report.WeightChange = &change
	}

	var period []workouts.HistoryEntry
	for _, h := range in.history {
		if !h.TrainingDate.Before(in.from) {
			period = append(period, h)
		}
	}

	report.WeekOverWeek = weekOverWeek(in.today, in.history)
	report.TotalWorkouts = len(distinctDays(period))

	for _, h := range period {
		report.TotalVolume += h.Volume()
	}
	report.TotalVolume = math.Round(report.TotalVolume)

	groups := groupByExercise(period)
	for _, g := range groups {
		report.Exercises = append(report.Exercises, g.name)
	}
	report.AvgStrengthGrowth = avgStrengthGrowth(groups)
	report.BestEvolution = bestEvolution(groups)
	report.MostConsistent = mostConsistent(groups)
	report.HighestVolume = highestVolume(groups)

	report.MaxLoads = maxLoads(period, in.exercise)
	report.Volume = volumePerDay(period)
	report.Frequency = weeklyFrequency(period)

	return report
}

func distinctDays(entries []workouts.HistoryEntry) map[time.Time]struct{} {
	days := make(map[time.Time]struct{})
	for _, h := range entries {
		days[pkg.DateOf(h.TrainingDate)] = struct{}{}
	}
	return days
}

type exerciseGroup struct {
	id      string
	name    string
	entries []workouts.HistoryEntry
	volume  float64
}

// groupByExercise keeps each group's entries in training date order and
// returns the groups sorted by name.
func groupByExercise(entries []workouts.HistoryEntry) []*exerciseGroup {
	byID := make(map[string]*exerciseGroup)
	for _, h := range entries {
		g, ok := byID[h.ExerciseID]
		if !ok {
			name := h.ExerciseName
			if name == "" {
				name = h.ExerciseID
			}
			g = &exerciseGroup{id: h.ExerciseID, name: name}
			byID[h.ExerciseID] = g
		}
		g.entries = append(g.entries, h)
		g.volume += h.Volume()
	}

	groups := make([]*exerciseGroup, 0, len(byID))
	for _, g := range byID {
		slices.SortStableFunc(g.entries, func(a, b workouts.HistoryEntry) int {
			return a.TrainingDate.Compare(b.TrainingDate)
		})
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b *exerciseGroup) int {
		return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.id, b.id))
	})
	return groups
}

// avgStrengthGrowth averages, over exercises with at least two entries, the
// percent change from the first to the last recorded load.
func avgStrengthGrowth(groups []*exerciseGroup) float64 {
	var total float64
	var count int
	for _, g := range groups {
		if len(g.entries) < 2 {
			continue
		}
		first, last := g.entries[0].Load, g.entries[len(g.entries)-1].Load
		if first == 0 {
			continue
		}
		total += (last - first) / first * 100
		count++
	}
	if count == 0 {
		return 0
	}
	return round1(total / float64(count))
}

func bestEvolution(groups []*exerciseGroup) *ExerciseHighlight {
	var best *ExerciseHighlight
	for _, g := range groups {
		if len(g.entries) < 2 {
			continue
		}
		growth := g.entries[len(g.entries)-1].Load - g.entries[0].Load
		if growth <= 0 || (best != nil && growth <= best.Value) {
			continue
		}
		best = &ExerciseHighlight{ExerciseID: g.id, Exercise: g.name, Value: growth}
	}
	return best
}

func mostConsistent(groups []*exerciseGroup) *ExerciseHighlight {
	var best *ExerciseHighlight
	for _, g := range groups {
		count := float64(len(g.entries))
		if best == nil || count > best.Value {
			best = &ExerciseHighlight{ExerciseID: g.id, Exercise: g.name, Value: count}
		}
	}
	return best
}

func highestVolume(groups []*exerciseGroup) *ExerciseHighlight {
	var best *ExerciseHighlight
	for _, g := range groups {
		if best == nil || g.volume > best.Value {
			best = &ExerciseHighlight{ExerciseID: g.id, Exercise: g.name, Value: g.volume}
		}
	}
	return best
}

// maxLoads returns the heaviest load per training day and exercise. A
// non-empty exercise id restricts the chart to that exercise.
func maxLoads(entries []workouts.HistoryEntry, exerciseID string) []LoadPoint {
	type key struct {
		day        time.Time
		exerciseID string
	}
	index := make(map[key]int)
	points := []LoadPoint{}
	for _, h := range entries {
		if exerciseID != "" && h.ExerciseID != exerciseID {
			continue
		}
		k := key{day: pkg.DateOf(h.TrainingDate), exerciseID: h.ExerciseID}
		if i, ok := index[k]; ok {
			points[i].MaxLoad = max(points[i].MaxLoad, h.Load)
			continue
		}
		name := h.ExerciseName
		if name == "" {
			name = h.ExerciseID
		}
		index[k] = len(points)
		points = append(points, LoadPoint{Date: k.day, ExerciseID: h.ExerciseID, Exercise: name, MaxLoad: h.Load})
	}
	slices.SortStableFunc(points, func(a, b LoadPoint) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.Exercise, b.Exercise))
	})
	return points
}

func volumePerDay(entries []workouts.HistoryEntry) []VolumePoint {
	perDay := make(map[time.Time]float64)
	for _, h := range entries {
		perDay[pkg.DateOf(h.TrainingDate)] += h.Volume()
	}
	points := make([]VolumePoint, 0, len(perDay))
	for day, volume := range perDay {
		points = append(points, VolumePoint{Date: day, Volume: volume})
	}
	slices.SortFunc(points, func(a, b VolumePoint) int {
		return a.Date.Compare(b.Date)
	})
	return points
}

// weeklyFrequency counts distinct training days per week, weeks starting on
// Sunday.
func weeklyFrequency(entries []workouts.HistoryEntry) []FrequencyPoint {
	perWeek := make(map[time.Time]map[time.Time]struct{})
	for day := range distinctDays(entries) {
		week := pkg.WeekStart(day)
		if perWeek[week] == nil {
			perWeek[week] = make(map[time.Time]struct{})
		}
		perWeek[week][day] = struct{}{}
	}
	points := make([]FrequencyPoint, 0, len(perWeek))
	for week, days := range perWeek {
		points = append(points, FrequencyPoint{WeekStart: week, Days: len(days)})
	}
	slices.SortFunc(points, func(a, b FrequencyPoint) int {
		return a.WeekStart.Compare(b.WeekStart)
	})
	return points
}

// weekOverWeek compares the volume of the last seven days, today included,
// with the seven days before.
func weekOverWeek(today time.Time, entries []workouts.HistoryEntry) WeekOverWeek {
	thisFrom := today.AddDate(0, 0, -6)
	lastFrom := today.AddDate(0, 0, -13)

	var wow WeekOverWeek
	for _, h := range entries {
		day := pkg.DateOf(h.TrainingDate)
		switch {
		case day.After(today) || day.Before(lastFrom):
		case day.Before(thisFrom):
			wow.LastWeek += h.Volume()
		default:
			wow.ThisWeek += h.Volume()
		}
	}
	wow.Delta = wow.ThisWeek - wow.LastWeek
	if wow.LastWeek > 0 {
		percent := round1(wow.Delta / wow.LastWeek * 100)
		wow.Percent = &percent
	}
	return wow
}
