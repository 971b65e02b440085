// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// OrderRepository defines the secondary port for order persistence.
// Missing rows are reported with an apperr NotFound error, except for lookups
// documented to return nil, and unique violations with an apperr Conflict error.
type OrderRepository interface {
	// Create persists a new open order and returns its store-assigned ID.
	Create(ctx context.Context, threadKey, creatorID string) (int64, error)

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id int64) (*OrderRecord, error)

	// GetByThreadKey retrieves the order bound to a thread, or nil if none.
	GetByThreadKey(ctx context.Context, threadKey string) (*OrderRecord, error)

	// MarkCompleted sets the completed flag.
	MarkCompleted(ctx context.Context, id int64) error

	// Delete removes an order and, by cascade, its items.
	Delete(ctx context.Context, id int64) error

	// List retrieves orders matching the given filters, newest first.
	List(ctx context.Context, filters OrderFilters) ([]*OrderRecord, error)
}

// OrderItemRepository defines the secondary port for order item persistence.
type OrderItemRepository interface {
	// Create persists a new item with zero progress.
	Create(ctx context.Context, orderID int64, productName string, quantity int32) (int64, error)

	// Find retrieves an item by exact product name. With onlyIncomplete set,
	// completed items are treated as absent. Returns nil if absent.
	Find(ctx context.Context, orderID int64, productName string, onlyIncomplete bool) (*OrderItemRecord, error)

	// ListByOrder retrieves an order's items sorted by product name ascending.
	ListByOrder(ctx context.Context, orderID int64) ([]*OrderItemRecord, error)

	// UpdateProgress stores new progress and completion state.
	UpdateProgress(ctx context.Context, itemID int64, progress int32, completed bool) error

	// UpdateQuantity stores a corrected quantity.
	UpdateQuantity(ctx context.Context, itemID int64, quantity int32) error

	// Delete removes an item by product name.
	Delete(ctx context.Context, orderID int64, productName string) error

	// ListOpenProductNames returns distinct names of incomplete items that
	// belong to open orders, sorted ascending.
	ListOpenProductNames(ctx context.Context) ([]string, error)
}

// OrderRecord represents an order as stored in persistence.
type OrderRecord struct {
	ID        int64
	ThreadKey string
	CreatorID string
	Completed bool
	CreatedAt string
}

// OrderItemRecord represents an order item as stored in persistence.
type OrderItemRecord struct {
	ID          int64
	OrderID     int64
	ProductName string
	Quantity    int32
	Progress    int32
	Completed   bool
}

// OrderFilters contains filter options for querying orders.
type OrderFilters struct {
	// IncludeCompleted also returns closed orders.
	IncludeCompleted bool
	Limit            int
}
