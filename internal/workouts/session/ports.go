package session

import (
	"context"

	"github.com/2beens/fitlife/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=session_test

type planRepo interface {
	Get(ctx context.Context, userID, workoutID string) (*workouts.Workout, error)
}

type historyRepo interface {
	LatestPerSet(ctx context.Context, userID string, exerciseIDs []string) (workouts.LastPerformance, error)
	Add(ctx context.Context, entries []workouts.HistoryEntry) ([]workouts.HistoryEntry, error)
}

// Confirmer answers the yes/no question asked before finishing a session
// with incomplete sets. There is no default answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// StaticConfirmer gives the same answer every time and remembers whether it was asked.
type StaticConfirmer struct {
	Answer bool
	Asked  bool
	Prompt string
}

func (c *StaticConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.Asked = true
	c.Prompt = prompt
	return c.Answer, nil
}
