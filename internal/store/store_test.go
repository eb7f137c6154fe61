package store

import (
	"database/sql"
	"testing"

	"github.com/cltvc/volunteercentral/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertTestUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	result, err := db.Exec(`INSERT INTO users (email, full_name) VALUES (?, ?)`, email, "Test User")
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}
