package db

import (
	"database/sql"
	"fmt"
)

// currentSchemaVersion is stored in PRAGMA user_version.
const currentSchemaVersion = 2

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_orders_schema",
		Up:      func(*sql.DB) error { return nil }, // created by SchemaSQL
	},
	{
		Version: 2,
		Name:    "add_completed_at_to_orders",
		Up:      migrationV2,
	},
}

// RunMigrations applies every migration newer than the stored user_version.
func RunMigrations(database *sql.DB) error {
	var version int
	if err := database.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= version {
			continue
		}
		if err := m.Up(database); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
	}

	if _, err := database.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// SchemaVersion returns the stored schema version.
func SchemaVersion(database *sql.DB) (int, error) {
	var version int
	err := database.QueryRow("PRAGMA user_version").Scan(&version)
	return version, err
}

// migrationV2 adds orders.completed_at for databases created before close
// persisted its timestamp. Fresh databases already have the column.
func migrationV2(database *sql.DB) error {
	exists, err := columnExists(database, "orders", "completed_at")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = database.Exec("ALTER TABLE orders ADD COLUMN completed_at DATETIME")
	return err
}

func columnExists(database *sql.DB, table, column string) (bool, error) {
	rows, err := database.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
