package app

import (
	"context"
	"fmt"

	"github.com/example/orderbot/internal/ports/primary"
	"github.com/example/orderbot/internal/ports/secondary"
)

// OrderDirectoryImpl resolves a chat thread to the order bound to it.
// It holds no state of its own; every call reads the store.
type OrderDirectoryImpl struct {
	orderRepo secondary.OrderRepository
}

// NewOrderDirectory creates a new OrderDirectory.
func NewOrderDirectory(orderRepo secondary.OrderRepository) *OrderDirectoryImpl {
	return &OrderDirectoryImpl{orderRepo: orderRepo}
}

// Resolve returns the order bound to threadKey.
func (d *OrderDirectoryImpl) Resolve(ctx context.Context, threadKey string) (int64, bool, error) {
	record, err := d.orderRepo.GetByThreadKey(ctx, threadKey)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve thread %s: %w", threadKey, err)
	}
	if record == nil {
		return 0, false, nil
	}
	return record.ID, true, nil
}

// Ensure OrderDirectoryImpl implements the interface
var _ primary.OrderDirectory = (*OrderDirectoryImpl)(nil)
