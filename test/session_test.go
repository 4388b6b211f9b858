//go:build integration_test

package test

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/fitlife/internal/evolution"
	"github.com/2beens/fitlife/internal/snapshot"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/internal/workouts/session"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) createWorkout(ctx context.Context, name string) workouts.Workout {
	load := 40.0
	var w workouts.Workout
	s.doJSON(ctx, http.MethodPost, "/workouts", workouts.WorkoutInput{
		Name:     name,
		Weekdays: []int{int(time.Now().Weekday())},
		Exercises: []workouts.ExerciseInput{
			{Name: "Bench press", PlannedSets: 2, PlannedReps: "10", PlannedLoad: &load},
			{Name: "Dips", PlannedSets: 1, PlannedReps: "12"},
		},
	}, http.StatusCreated, &w)
	require.Len(s.T(), w.Exercises, 2)
	return w
}

func (s *IntegrationTestSuite) TestWorkoutSession_SnapshotAndFinish() {
	t := s.T()
	ctx := context.Background()

	w := s.createWorkout(ctx, "Push")
	benchID, dipsID := w.Exercises[0].ID, w.Exercises[1].ID

	var view session.View
	s.doJSON(ctx, http.MethodPost, "/sessions/"+w.ID, nil, http.StatusOK, &view)
	require.Len(t, view.ExerciseSets[benchID], 2)

	// start writes the first snapshot into redis
	snapshotKey := snapshot.Key(w.ID, testUserID)
	raw, err := s.redisClient.Get(ctx, snapshotKey).Result()
	require.NoError(t, err)
	assert.Contains(t, raw, benchID)

	s.doJSON(ctx, http.MethodPost, "/sessions/"+w.ID+"/actions",
		session.EditSet(benchID, 0, session.FieldLoad, 42.5), http.StatusOK, &view)
	s.doJSON(ctx, http.MethodPost, "/sessions/"+w.ID+"/actions",
		session.ToggleSet(benchID, 0), http.StatusOK, &view)
	s.doJSON(ctx, http.MethodPost, "/sessions/"+w.ID+"/actions",
		session.ToggleSet(dipsID, 0), http.StatusOK, &view)
	assert.Equal(t, 67, view.Progress)

	var confirm session.ConfirmationResponse
	s.doJSON(ctx, http.MethodPost, "/sessions/"+w.ID+"/finish", nil, http.StatusConflict, &confirm)
	assert.NotEmpty(t, confirm.Prompt)

	var result session.FinishResult
	s.doJSON(ctx, http.MethodPost, "/sessions/"+w.ID+"/finish?confirm=true", nil, http.StatusOK, &result)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, 2, s.countHistory(ctx, benchID, dipsID))

	// a saved session leaves no snapshot behind
	_, err = s.redisClient.Get(ctx, snapshotKey).Result()
	assert.ErrorIs(t, err, redis.Nil)

	var history workouts.HistoryResponse
	today := time.Now().Format("2006-01-02")
	s.doJSON(ctx, http.MethodGet, "/history?since="+today, nil, http.StatusOK, &history)
	var benchLoads []float64
	for _, h := range history.Entries {
		if h.ExerciseID == benchID {
			benchLoads = append(benchLoads, h.Load)
		}
	}
	assert.Equal(t, []float64{42.5}, benchLoads)

	var report evolution.Report
	s.doJSON(ctx, http.MethodGet, "/evolution?days=7&exercise="+benchID, nil, http.StatusOK, &report)
	require.NotEmpty(t, report.MaxLoads)
	assert.Equal(t, 42.5, report.MaxLoads[len(report.MaxLoads)-1].MaxLoad)
}

func (s *IntegrationTestSuite) TestWorkoutSession_Discard() {
	t := s.T()
	ctx := context.Background()

	w := s.createWorkout(ctx, "Discarded push")

	s.doJSON(ctx, http.MethodPost, "/sessions/"+w.ID, nil, http.StatusOK, nil)
	var unsaved session.UnsavedResponse
	s.doJSON(ctx, http.MethodGet, "/sessions/"+w.ID+"/unsaved", nil, http.StatusOK, &unsaved)
	assert.True(t, unsaved.Unsaved)

	status, _ := s.do(ctx, http.MethodDelete, "/sessions/"+w.ID, nil)
	require.Equal(t, http.StatusNoContent, status)

	exists, err := s.redisClient.Exists(ctx, snapshot.Key(w.ID, testUserID)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
	assert.Zero(t, s.countHistory(ctx, w.Exercises[0].ID, w.Exercises[1].ID))
}

func (s *IntegrationTestSuite) TestQuickLog() {
	t := s.T()
	ctx := context.Background()

	w := s.createWorkout(ctx, "Quick push")
	benchID := w.Exercises[0].ID

	var plan session.QuickLogPlan
	s.doJSON(ctx, http.MethodGet, "/quick-log/"+w.ID, nil, http.StatusOK, &plan)
	require.Len(t, plan.ExerciseSets[benchID], 2)

	sets := plan.ExerciseSets
	sets[benchID][0].Completed = true
	sets[benchID][1].Completed = true

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	var result session.FinishResult
	s.doJSON(ctx, http.MethodPost, "/quick-log/"+w.ID, session.QuickLogRequest{
		TrainingDate: yesterday,
		ExerciseSets: sets,
	}, http.StatusOK, &result)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, yesterday, result.Entries[0].TrainingDate.Format("2006-01-02"))
	assert.Equal(t, 2, s.countHistory(ctx, benchID))

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	status, _ := s.do(ctx, http.MethodPost, "/quick-log/"+w.ID, session.QuickLogRequest{
		TrainingDate: tomorrow,
		ExerciseSets: sets,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func (s *IntegrationTestSuite) TestMalformedWorkoutID() {
	t := s.T()
	ctx := context.Background()

	testCases := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/workouts/not-a-uuid"},
		{method: http.MethodPost, path: "/sessions/not-a-uuid"},
		{method: http.MethodGet, path: "/quick-log/not-a-uuid"},
	}
	for _, tc := range testCases {
		status, _ := s.do(ctx, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, status, tc.method+" "+tc.path)
	}
}
