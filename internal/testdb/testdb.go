// Package testdb opens migrated in-memory databases for tests.
package testdb

import (
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/hcissey0/lecture-notes-app/internal/db"
)

// goose keeps its dialect and filesystem in package state
var migrateMu sync.Mutex

// New returns a fresh, migrated in-memory SQLite database that is closed
// when the test finishes.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	migrateMu.Lock()
	defer migrateMu.Unlock()
	err = db.RunMigrations(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("migrate in-memory database: %v", err)
	}

	return database
}
