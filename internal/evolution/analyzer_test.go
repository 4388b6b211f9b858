package evolution_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/fitlife/internal/evolution"
	"github.com/2beens/fitlife/internal/profile"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testUserID = "user-1"

func TestAnalyzer_Report(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := NewMockhistoryRepo(ctrl)
	profiles := NewMockprofileRepo(ctrl)
	analyzer := evolution.NewAnalyzer(history, profiles)

	today := pkg.DateOf(time.Now())
	profiles.EXPECT().Get(gomock.Any(), testUserID).Return(nil, profile.ErrProfileNotFound)
	profiles.EXPECT().
		WeightSince(gomock.Any(), testUserID, gomock.Any()).
		Return([]profile.WeightEntry{{Date: today, Weight: 80}}, nil)
	history.EXPECT().
		ListSince(gomock.Any(), testUserID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, since time.Time) ([]workouts.HistoryEntry, error) {
			// a short period still loads two weeks for the comparison
			assert.True(t, since.Before(today.AddDate(0, 0, -12)))
			return []workouts.HistoryEntry{
				{ExerciseID: "ex-1", ExerciseName: "Squat", TrainingDate: today.AddDate(0, 0, -10), Reps: 10, Load: 50},
				{ExerciseID: "ex-1", ExerciseName: "Squat", TrainingDate: today, Reps: 10, Load: 60},
			}, nil
		})

	report, err := analyzer.Report(context.Background(), testUserID, evolution.Params{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalWorkouts)
	assert.Equal(t, 600.0, report.TotalVolume)
	assert.Equal(t, 600.0, report.WeekOverWeek.ThisWeek)
	assert.Equal(t, 500.0, report.WeekOverWeek.LastWeek)
	assert.Nil(t, report.WeightChange)
	assert.Nil(t, report.CurrentBMI)
}

func TestAnalyzer_Report_InvalidPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := evolution.NewAnalyzer(NewMockhistoryRepo(ctrl), NewMockprofileRepo(ctrl))

	_, err := analyzer.Report(context.Background(), testUserID, evolution.Params{Days: -3})
	assert.ErrorIs(t, err, evolution.ErrInvalidPeriod)
	_, err = analyzer.Report(context.Background(), testUserID, evolution.Params{Days: evolution.MaxPeriodDays + 1})
	assert.ErrorIs(t, err, evolution.ErrInvalidPeriod)
}

func TestAnalyzer_Report_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := NewMockhistoryRepo(ctrl)
	profiles := NewMockprofileRepo(ctrl)
	analyzer := evolution.NewAnalyzer(history, profiles)

	profiles.EXPECT().Get(gomock.Any(), testUserID).Return(nil, errors.New("connection refused"))

	_, err := analyzer.Report(context.Background(), testUserID, evolution.Params{})
	assert.ErrorContains(t, err, "connection refused")
}
