package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/thenoetrevino/kanbot/internal/app"
	"github.com/thenoetrevino/kanbot/internal/database"
)

// SetupTestDB creates a migrated in-memory database, closed on cleanup
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// SetupTestApp creates an App on a fresh in-memory database.
// The App is closed on cleanup.
func SetupTestApp(t *testing.T, opts ...app.Option) *app.App {
	t.Helper()
	db := SetupTestDB(t)

	a, err := app.New(context.Background(), db, opts...)
	if err != nil {
		t.Fatalf("Failed to create test app: %v", err)
	}
	t.Cleanup(func() {
		_ = a.Close()
	})
	return a
}
