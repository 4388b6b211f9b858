package auth

import (
	"context"
	"errors"
)

var (
	ErrNotLogged      = errors.New("not logged in")
	ErrTokenMalformed = errors.New("malformed session value")
)

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*StaticChecker)(nil)

// Checker resolves a session token to the id of the user owning it.
type Checker interface {
	UserID(ctx context.Context, token string) (string, error)
}

// StaticChecker serves a fixed token set. Used by tests and the memory-only dev setup.
type StaticChecker struct {
	Sessions map[string]string
}

func NewStaticChecker() *StaticChecker {
	return &StaticChecker{
		Sessions: map[string]string{},
	}
}

func (c *StaticChecker) UserID(_ context.Context, token string) (string, error) {
	userID, ok := c.Sessions[token]
	if !ok {
		return "", ErrNotLogged
	}
	return userID, nil
}
