// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database is created for tests.
// setupTestDB goes through db.Open, so tests run against the authoritative
// schema and the same connection parameters as production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/example/orderbot/internal/db"
)

// setupTestDB creates a fresh database file with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedOrder inserts a test order and returns its ID.
func seedOrder(t *testing.T, db *sql.DB, threadKey, creatorID string) int64 {
	t.Helper()
	if threadKey == "" {
		threadKey = "T42"
	}
	if creatorID == "" {
		creatorID = "U1"
	}
	res, err := db.Exec("INSERT INTO orders (thread_key, creator_id) VALUES (?, ?)", threadKey, creatorID)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedItem inserts a test item and returns its ID.
func seedItem(t *testing.T, db *sql.DB, orderID int64, name string, quantity, progress int32) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO order_items (order_id, product_name, quantity, progress, completed) VALUES (?, ?, ?, ?, ?)",
		orderID, name, quantity, progress, progress >= quantity,
	)
	if err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}
