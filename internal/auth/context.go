package auth

import (
	"context"
	"net/http"
)

type userIDKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id put there by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// RequestUserID reads the user id from r, answering 401 when it is missing.
func RequestUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}
