// Package store persists the schedule, bookings and price tables in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/booking"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrInvalid wraps input the store refuses to persist.
	ErrInvalid = errors.New("invalid record")
)

// Store implements the calendar, booking repository and price table source on one database.
type Store struct {
	db *sql.DB
}

var (
	_ availability.Calendar    = (*Store)(nil)
	_ booking.Repository       = (*Store)(nil)
	_ booking.PriceTableSource = (*Store)(nil)
)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// violates reports whether a constraint error names the given columns, as SQLite
// spells them in "UNIQUE constraint failed: table.col, table.col".
func violates(err error, columns string) bool {
	return strings.Contains(err.Error(), "constraint failed: "+columns)
}

// timestamp renders a DATETIME column as RFC 3339 text.
func timestamp(column string) string {
	return "strftime('%Y-%m-%dT%H:%M:%SZ', " + column + ")"
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
