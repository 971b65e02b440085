package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/ports/secondary"
)

// OrderItemRepository implements secondary.OrderItemRepository with SQLite.
type OrderItemRepository struct {
	db *sql.DB
}

// NewOrderItemRepository creates a new SQLite order item repository.
func NewOrderItemRepository(db *sql.DB) *OrderItemRepository {
	return &OrderItemRepository{db: db}
}

const itemSelectCols = "id, order_id, product_name, quantity, progress, completed"

// scanItem scans an order item row into an OrderItemRecord.
func scanItem(scanner interface {
	Scan(dest ...any) error
}) (*secondary.OrderItemRecord, error) {
	var record secondary.OrderItemRecord
	err := scanner.Scan(
		&record.ID, &record.OrderID, &record.ProductName,
		&record.Quantity, &record.Progress, &record.Completed,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create persists a new item with zero progress.
func (r *OrderItemRepository) Create(ctx context.Context, orderID int64, productName string, quantity int32) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO order_items (order_id, product_name, quantity) VALUES (?, ?, ?)",
		orderID, productName, quantity,
	)
	if isUniqueViolation(err) {
		return 0, apperr.ErrDuplicateItem(productName).WithCause(err)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create order item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read order item id: %w", err)
	}
	return id, nil
}

// Find retrieves an item by exact product name, or nil if absent.
func (r *OrderItemRepository) Find(ctx context.Context, orderID int64, productName string, onlyIncomplete bool) (*secondary.OrderItemRecord, error) {
	query := "SELECT " + itemSelectCols + " FROM order_items WHERE order_id = ? AND product_name = ?"
	if onlyIncomplete {
		query += " AND completed = 0"
	}

	record, err := scanItem(r.db.QueryRowContext(ctx, query, orderID, productName))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order item: %w", err)
	}
	return record, nil
}

// ListByOrder retrieves an order's items sorted by product name ascending.
func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]*secondary.OrderItemRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemSelectCols+" FROM order_items WHERE order_id = ? ORDER BY product_name ASC",
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []*secondary.OrderItemRecord
	for rows.Next() {
		record, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, record)
	}

	return items, rows.Err()
}

// UpdateProgress stores new progress and completion state.
func (r *OrderItemRepository) UpdateProgress(ctx context.Context, itemID int64, progress int32, completed bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE order_items SET progress = ?, completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		progress, completed, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order item progress: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "Order item %d does not exist.", itemID)
	}
	return nil
}

// UpdateQuantity stores a corrected quantity.
func (r *OrderItemRepository) UpdateQuantity(ctx context.Context, itemID int64, quantity int32) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE order_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		quantity, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order item quantity: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "Order item %d does not exist.", itemID)
	}
	return nil
}

// Delete removes an item by product name.
func (r *OrderItemRepository) Delete(ctx context.Context, orderID int64, productName string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM order_items WHERE order_id = ? AND product_name = ?",
		orderID, productName,
	)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.ErrItemNotFound(productName)
	}
	return nil
}

// ListOpenProductNames returns distinct names of incomplete items in open orders.
func (r *OrderItemRepository) ListOpenProductNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT oi.product_name
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.completed = 0 AND o.completed = 0
		ORDER BY oi.product_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list product names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan product name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
