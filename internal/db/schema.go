package db

// SchemaSQL is the complete schema for fresh orderbot databases.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via Open(), so repository code referencing a
// column that doesn't exist here fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Bump currentSchemaVersion
const SchemaSQL = `
-- Orders (one per chat thread)
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_key TEXT NOT NULL UNIQUE,
	creator_id TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

-- Order items (product lines within an order)
CREATE TABLE IF NOT EXISTS order_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL,
	product_name TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK(quantity > 0),
	progress INTEGER NOT NULL DEFAULT 0 CHECK(progress >= 0),
	completed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
	UNIQUE(order_id, product_name)
);

CREATE INDEX IF NOT EXISTS idx_order_items_open_names ON order_items(completed, product_name);
`
