// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces that external actors use to interact with the system.
package primary

import "context"

// OrderService defines the primary port for the order engine.
type OrderService interface {
	// CreateOrder binds a new open order to a thread.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// AddItem adds a product line with zero progress.
	AddItem(ctx context.Context, req AddItemRequest) (*OrderItem, error)

	// UpdateProgress adds progress to an incomplete item, completing it when
	// the requested quantity is reached.
	UpdateProgress(ctx context.Context, req ItemDeltaRequest) (*OrderItem, error)

	// AdjustQuantity adds delta to the requested quantity of an incomplete item.
	AdjustQuantity(ctx context.Context, req ItemDeltaRequest) (*OrderItem, error)

	// RemoveItem removes a product line, completed or not.
	RemoveItem(ctx context.Context, orderID int64, productName string) error

	// CloseOrder marks the order completed. Only the creator may close it.
	CloseOrder(ctx context.Context, orderID int64, requesterID string) error

	// GetOrder retrieves an order with its items.
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	// ListOrders lists orders, open ones only unless includeCompleted is set.
	ListOrders(ctx context.Context, includeCompleted bool) ([]*Order, error)
}

// OrderDirectory defines the primary port for thread → order resolution.
type OrderDirectory interface {
	// Resolve returns the order bound to threadKey. ok is false when the
	// thread has no order.
	Resolve(ctx context.Context, threadKey string) (orderID int64, ok bool, err error)
}

// SummaryService defines the primary port for the summary projector.
type SummaryService interface {
	// Render returns the report for an order. An unknown order renders as a
	// sentence, not an error; err is only set when the store fails.
	Render(ctx context.Context, orderID int64) (string, error)
}

// CreateOrderRequest contains parameters for creating an order.
type CreateOrderRequest struct {
	ThreadKey string
	InThread  bool
	CreatorID string
}

// AddItemRequest contains parameters for adding a product line.
type AddItemRequest struct {
	OrderID     int64
	ProductName string
	Quantity    int64
}

// ItemDeltaRequest contains parameters for progress updates and quantity
// corrections. Delta is the signed command argument before validation.
type ItemDeltaRequest struct {
	OrderID     int64
	ProductName string
	Delta       int64
}

// Order represents an order at the port boundary.
type Order struct {
	ID        int64
	ThreadKey string
	CreatorID string
	Completed bool
	CreatedAt string
	Items     []*OrderItem // populated by GetOrder
}

// OrderItem represents a product line at the port boundary.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductName string
	Quantity    int32
	Progress    int32
	Completed   bool
}
