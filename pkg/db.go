package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	PgCodeUniqueViolation     = "23505"
	PgCodeForeignKeyViolation = "23503"
	PgCodeCheckViolation      = "23514"

	// e.g. a malformed uuid literal
	PgCodeInvalidTextRepresentation = "22P02"
)

// PgErrorCode returns the SQLSTATE of the first *pgconn.PgError in err's chain.
func PgErrorCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	return pgErr.Code, true
}

func IsUniqueViolationError(err error) bool {
	code, ok := PgErrorCode(err)
	return ok && code == PgCodeUniqueViolation
}

func IsForeignKeyViolationError(err error) bool {
	code, ok := PgErrorCode(err)
	return ok && code == PgCodeForeignKeyViolation
}

func IsCheckViolationError(err error) bool {
	code, ok := PgErrorCode(err)
	return ok && code == PgCodeCheckViolation
}

func IsInvalidTextRepresentationError(err error) bool {
	code, ok := PgErrorCode(err)
	return ok && code == PgCodeInvalidTextRepresentation
}
