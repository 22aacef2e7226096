package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store-level sentinels shared by every backend.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrAlreadyConsumed means a conditional state transition matched no row,
	// e.g. a refresh token that was revoked between read and rotation.
	ErrAlreadyConsumed = errors.New("record already consumed")

	ErrDuplicateEmail    = fmt.Errorf("%w: email", ErrDuplicate)
	ErrDuplicateUsername = fmt.Errorf("%w: username", ErrDuplicate)
)

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr, true
	}
	return nil, false
}

// DuplicateFor maps a constraint or column name onto the matching duplicate sentinel.
func DuplicateFor(name string) error {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "email"):
		return ErrDuplicateEmail
	case strings.Contains(name, "username"):
		return ErrDuplicateUsername
	default:
		return ErrDuplicate
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if IsNoRows(err) {
		return ErrNotFound
	}
	if pgErr, ok := isUniqueViolation(err); ok {
		return DuplicateFor(pgErr.ConstraintName)
	}
	return err
}
