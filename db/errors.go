package db

import (
	"strings"

	"github.com/teranos/mmgen/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed database.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err is or wraps ErrDatabaseClosed, or is
// a raw driver error saying the same. database/sql returns its own
// unexported error for this, so the message is the only handle on it.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// Wrap adds "failed to <what>" context to a database error. Closed
// connection errors are marked with ErrDatabaseClosed so callers can tell
// shutdown races from real failures. nil stays nil.
func Wrap(err error, what string) error {
	if err == nil {
		return nil
	}
	if IsDatabaseClosed(err) {
		err = errors.Mark(err, ErrDatabaseClosed)
	}
	return errors.Wrapf(err, "failed to %s", what)
}
