// Package order contains the pure business logic for orders and their items.
// Guards are pure functions that evaluate preconditions without side effects.
package order

import (
	"math"

	"github.com/example/orderbot/internal/apperr"
)

// MaxAmount is the largest quantity, progress or delta a command may carry.
const MaxAmount = math.MaxInt32

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Kind    apperr.Kind
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &apperr.Error{Kind: r.Kind, Message: r.Reason}
}

func allow() GuardResult {
	return GuardResult{Allowed: true}
}

func deny(err *apperr.Error) GuardResult {
	return GuardResult{Allowed: false, Reason: err.Message, Kind: err.Kind}
}

// CreateOrderContext provides context for order creation guards.
type CreateOrderContext struct {
	ThreadKey   string
	InThread    bool
	OrderExists bool
}

// AddItemContext provides context for adding a product line.
type AddItemContext struct {
	ProductName    string
	OrderCompleted bool
	ItemExists     bool
}

// ItemMutationContext provides context for progress updates and quantity
// corrections. ItemFound reflects a lookup restricted to incomplete items.
type ItemMutationContext struct {
	ProductName    string
	OrderCompleted bool
	ItemFound      bool
}

// RemoveItemContext provides context for removing a product line.
type RemoveItemContext struct {
	ProductName    string
	OrderCompleted bool
	ItemExists     bool
}

// CloseOrderContext provides context for closing an order.
type CloseOrderContext struct {
	OrderExists bool
	RequesterID string
	CreatorID   string
	Completed   bool
}

// ValidateAmount checks a quantity, progress or delta argument.
// Rules:
// - Must be greater than zero
// - Must fit in a signed 32-bit integer
func ValidateAmount(amount int64) GuardResult {
	if amount <= 0 {
		return deny(apperr.ErrInvalidQuantity())
	}
	if amount > MaxAmount {
		return deny(apperr.ErrQuantityOutOfRange())
	}
	return allow()
}

// ValidateProductName checks a normalized product name.
func ValidateProductName(name string) GuardResult {
	if name == "" {
		return deny(apperr.ErrEmptyProductName())
	}
	return allow()
}

// CanCreateOrder evaluates whether an order can be created in a thread.
// Rules:
// - Command must be invoked inside a thread
// - Thread must not already have an order
func CanCreateOrder(ctx CreateOrderContext) GuardResult {
	if !ctx.InThread {
		return deny(apperr.ErrNotInThread())
	}
	if ctx.OrderExists {
		return deny(apperr.ErrOrderExists())
	}
	return allow()
}

// CanAddItem evaluates whether a product line can be added.
// Rules:
// - Order must not be completed
// - Product name must be unique within the order
func CanAddItem(ctx AddItemContext) GuardResult {
	if ctx.OrderCompleted {
		return deny(apperr.ErrOrderClosed())
	}
	if ctx.ItemExists {
		return deny(apperr.ErrDuplicateItem(ctx.ProductName))
	}
	return allow()
}

// CanMutateItem evaluates whether progress or quantity of an item can change.
// Rules:
// - Order must not be completed
// - Item must exist and not be completed
func CanMutateItem(ctx ItemMutationContext) GuardResult {
	if ctx.OrderCompleted {
		return deny(apperr.ErrOrderClosed())
	}
	if !ctx.ItemFound {
		return deny(apperr.ErrItemNotFoundOrCompleted(ctx.ProductName))
	}
	return allow()
}

// CanRemoveItem evaluates whether a product line can be removed.
// Completed items can be removed too.
func CanRemoveItem(ctx RemoveItemContext) GuardResult {
	if ctx.OrderCompleted {
		return deny(apperr.ErrOrderClosed())
	}
	if !ctx.ItemExists {
		return deny(apperr.ErrItemNotFound(ctx.ProductName))
	}
	return allow()
}

// CanCloseOrder evaluates whether the requester may close the order.
// Rules:
// - Order must exist
// - Requester must be the creator (checked before completion so that a
//   non-creator is always refused with an authorization error)
// - Order must not already be completed
func CanCloseOrder(ctx CloseOrderContext) GuardResult {
	if !ctx.OrderExists {
		return deny(apperr.ErrNoOrderInThread())
	}
	if ctx.RequesterID != ctx.CreatorID {
		return deny(apperr.ErrForbidden())
	}
	if ctx.Completed {
		return deny(apperr.ErrAlreadyClosed())
	}
	return allow()
}
