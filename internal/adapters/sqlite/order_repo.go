package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/ports/secondary"
)

// OrderRepository implements secondary.OrderRepository with SQLite.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new SQLite order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderSelectCols = "id, thread_key, creator_id, completed, created_at"

// scanOrder scans an order row into an OrderRecord.
func scanOrder(scanner interface {
	Scan(dest ...any) error
}) (*secondary.OrderRecord, error) {
	var (
		record    secondary.OrderRecord
		createdAt time.Time
	)
	if err := scanner.Scan(&record.ID, &record.ThreadKey, &record.CreatorID, &record.Completed, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return &record, nil
}

// Create persists a new open order.
func (r *OrderRepository) Create(ctx context.Context, threadKey, creatorID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO orders (thread_key, creator_id) VALUES (?, ?)",
		threadKey, creatorID,
	)
	if isUniqueViolation(err) {
		return 0, apperr.ErrOrderExists().WithCause(err)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read order id: %w", err)
	}
	return id, nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*secondary.OrderRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderSelectCols+" FROM orders WHERE id = ?",
		id,
	)

	record, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrOrderNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return record, nil
}

// GetByThreadKey retrieves the order bound to a thread, or nil if none.
func (r *OrderRepository) GetByThreadKey(ctx context.Context, threadKey string) (*secondary.OrderRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderSelectCols+" FROM orders WHERE thread_key = ?",
		threadKey,
	)

	record, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by thread: %w", err)
	}
	return record, nil
}

// MarkCompleted sets the completed flag and timestamp.
func (r *OrderRepository) MarkCompleted(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE orders SET completed = 1, completed_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.ErrOrderNotFound(id)
	}
	return nil
}

// Delete removes an order. Items are removed by ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.ErrOrderNotFound(id)
	}
	return nil
}

// List retrieves orders matching the given filters, newest first.
func (r *OrderRepository) List(ctx context.Context, filters secondary.OrderFilters) ([]*secondary.OrderRecord, error) {
	query := "SELECT " + orderSelectCols + " FROM orders WHERE 1=1"
	args := []any{}

	if !filters.IncludeCompleted {
		query += " AND completed = 0"
	}

	query += " ORDER BY id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*secondary.OrderRecord
	for rows.Next() {
		record, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, record)
	}

	return orders, rows.Err()
}
