package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with development fixtures: one open
// order with mixed item states and one closed order.
func SeedFixtures(database *sql.DB) error {
	orders := []struct {
		threadKey string
		creatorID string
		completed bool
	}{
		{"dev-thread-1", "dev-user-1", false},
		{"dev-thread-2", "dev-user-2", true},
	}
	ids := make(map[string]int64, len(orders))
	for _, o := range orders {
		res, err := database.Exec(
			"INSERT INTO orders (thread_key, creator_id, completed) VALUES (?, ?, ?)",
			o.threadKey, o.creatorID, o.completed,
		)
		if err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
		ids[o.threadKey] = id
	}

	items := []struct {
		threadKey string
		name      string
		quantity  int
		progress  int
	}{
		{"dev-thread-1", "Widget", 10, 4},
		{"dev-thread-1", "Gadget", 5, 5},
		{"dev-thread-1", "Bolt M6", 200, 0},
		{"dev-thread-2", "Widget", 3, 3},
	}
	for _, it := range items {
		if _, err := database.Exec(
			"INSERT INTO order_items (order_id, product_name, quantity, progress, completed) VALUES (?, ?, ?, ?, ?)",
			ids[it.threadKey], it.name, it.quantity, it.progress, it.progress >= it.quantity,
		); err != nil {
			return fmt.Errorf("seed order_items: %w", err)
		}
	}

	return nil
}
