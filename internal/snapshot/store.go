package snapshot

import (
	"context"
	"fmt"
)

const keyPrefix = "workout_session_"

// Store is a key-value port for in-progress session snapshots. Entries never expire.
type Store interface {
	// Get returns false when no value is stored under key.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Key is the snapshot key of a (workout, user) pair.
func Key(workoutID, userID string) string {
	return fmt.Sprintf("%s%s_%s", keyPrefix, workoutID, userID)
}
