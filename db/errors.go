package db

import (
	"strings"

	"github.com/evolvekit/evolve/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed
// ledger index, typically during shutdown.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the index connection is
// closed. The string fallback covers raw driver errors that cannot be
// wrapped at the source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}
