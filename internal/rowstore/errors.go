package rowstore

import (
	"errors"
	"fmt"

	"github.com/2beens/fitlife/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUniqueViolation     = errors.New("unique violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check violation")
	ErrInvalidValue        = errors.New("invalid value")
)

// ValidID reports whether id has the shape of a row id. Lookups with other
// ids can skip the store, they match nothing.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Error is the single error type returned by stores. Message is meant for users.
type Error struct {
	Op      string
	Table   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Table, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, table string, err error) *Error {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr
	}

	msg := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg = pgErr.Message
	}

	switch {
	case pkg.IsUniqueViolationError(err):
		err = fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	case pkg.IsForeignKeyViolationError(err):
		err = fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	case pkg.IsCheckViolationError(err):
		err = fmt.Errorf("%w: %w", ErrCheckViolation, err)
	case pkg.IsInvalidTextRepresentationError(err):
		err = fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	return &Error{
		Op:      op,
		Table:   table,
		Message: msg,
		Err:     err,
	}
}

// Message returns the user facing text of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Message
	}
	return err.Error()
}
