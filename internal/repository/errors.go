package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = gorm.ErrRecordNotFound
	ErrConditionFailed = errors.New("update condition not met")
)

const pgUniqueViolation = "23505"

// UniqueViolation reports whether err is a unique-constraint failure and, when
// the driver exposes it, which constraint or column tripped.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	// sqlite: "UNIQUE constraint failed: bookings.booking_code"
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		rest := msg[i+len("UNIQUE constraint failed: "):]
		if j := strings.IndexAny(rest, " ,)"); j >= 0 {
			rest = rest[:j]
		}
		return rest, true
	}
	if strings.Contains(strings.ToLower(msg), "duplicate key value violates unique constraint") {
		return "", true
	}
	return "", false
}

func IsUniqueViolation(err error) bool {
	_, ok := UniqueViolation(err)
	return ok
}

// IsCodeConflict matches unique violations on *_code columns, which is what
// concurrent identifier allocation produces.
func IsCodeConflict(err error) bool {
	target, ok := UniqueViolation(err)
	if !ok {
		return false
	}
	return target == "" || strings.HasSuffix(target, "_code")
}
