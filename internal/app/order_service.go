// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"fmt"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/core/order"
	"github.com/example/orderbot/internal/ports/primary"
	"github.com/example/orderbot/internal/ports/secondary"
)

// OrderServiceImpl implements the OrderService interface.
type OrderServiceImpl struct {
	orderRepo secondary.OrderRepository
	itemRepo  secondary.OrderItemRepository
	locker    secondary.Locker
}

// NewOrderService creates a new OrderService with injected dependencies.
func NewOrderService(
	orderRepo secondary.OrderRepository,
	itemRepo secondary.OrderItemRepository,
	locker secondary.Locker,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		locker:    locker,
	}
}

func orderLockKey(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

func threadLockKey(threadKey string) string {
	return "thread:" + threadKey
}

// withLock runs fn while holding key.
func withLock(ctx context.Context, locker secondary.Locker, key string, fn func() error) error {
	unlock, err := locker.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	defer unlock()
	return fn()
}

// CreateOrder binds a new open order to a thread.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req primary.CreateOrderRequest) (*primary.Order, error) {
	if !req.InThread {
		return nil, order.CanCreateOrder(order.CreateOrderContext{ThreadKey: req.ThreadKey}).Error()
	}

	var created *primary.Order
	err := withLock(ctx, s.locker, threadLockKey(req.ThreadKey), func() error {
		existing, err := s.orderRepo.GetByThreadKey(ctx, req.ThreadKey)
		if err != nil {
			return fmt.Errorf("failed to look up thread order: %w", err)
		}

		guardCtx := order.CreateOrderContext{
			ThreadKey:   req.ThreadKey,
			InThread:    req.InThread,
			OrderExists: existing != nil,
		}
		if result := order.CanCreateOrder(guardCtx); !result.Allowed {
			return result.Error()
		}

		// The unique constraint still backs this up across processes.
		id, err := s.orderRepo.Create(ctx, req.ThreadKey, req.CreatorID)
		if err != nil {
			return err
		}

		record, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to reload order: %w", err)
		}
		created = s.recordToOrder(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddItem adds a product line with zero progress.
func (s *OrderServiceImpl) AddItem(ctx context.Context, req primary.AddItemRequest) (*primary.OrderItem, error) {
	if result := order.ValidateAmount(req.Quantity); !result.Allowed {
		return nil, result.Error()
	}
	name := order.NormalizeProductName(req.ProductName)
	if result := order.ValidateProductName(name); !result.Allowed {
		return nil, result.Error()
	}

	var added *primary.OrderItem
	err := withLock(ctx, s.locker, orderLockKey(req.OrderID), func() error {
		record, err := s.orderRepo.GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}

		existing, err := s.itemRepo.Find(ctx, req.OrderID, name, false)
		if err != nil {
			return fmt.Errorf("failed to look up item: %w", err)
		}

		guardCtx := order.AddItemContext{
			ProductName:    name,
			OrderCompleted: record.Completed,
			ItemExists:     existing != nil,
		}
		if result := order.CanAddItem(guardCtx); !result.Allowed {
			return result.Error()
		}

		id, err := s.itemRepo.Create(ctx, req.OrderID, name, int32(req.Quantity))
		if err != nil {
			return err
		}

		added = &primary.OrderItem{
			ID:          id,
			OrderID:     req.OrderID,
			ProductName: name,
			Quantity:    int32(req.Quantity),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateProgress adds progress to an incomplete item. Reaching the requested
// quantity clamps progress and completes the item.
func (s *OrderServiceImpl) UpdateProgress(ctx context.Context, req primary.ItemDeltaRequest) (*primary.OrderItem, error) {
	var updated *primary.OrderItem
	err := s.mutateIncompleteItem(ctx, req, func(item *secondary.OrderItemRecord) error {
		next := order.ApplyProgress(item.Progress, item.Quantity, req.Delta)
		if err := s.itemRepo.UpdateProgress(ctx, item.ID, next.Progress, next.Completed); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		item.Progress = next.Progress
		item.Completed = next.Completed
		updated = s.itemRecordToItem(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdjustQuantity adds delta to the requested quantity of an incomplete item.
func (s *OrderServiceImpl) AdjustQuantity(ctx context.Context, req primary.ItemDeltaRequest) (*primary.OrderItem, error) {
	var updated *primary.OrderItem
	err := s.mutateIncompleteItem(ctx, req, func(item *secondary.OrderItemRecord) error {
		quantity, err := order.ApplyQuantityAdjustment(item.Quantity, req.Delta)
		if err != nil {
			return err
		}
		if err := s.itemRepo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
			return fmt.Errorf("failed to update quantity: %w", err)
		}

		item.Quantity = quantity
		updated = s.itemRecordToItem(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// mutateIncompleteItem validates the delta, then runs apply on the named
// incomplete item while holding the order lock.
func (s *OrderServiceImpl) mutateIncompleteItem(
	ctx context.Context,
	req primary.ItemDeltaRequest,
	apply func(item *secondary.OrderItemRecord) error,
) error {
	if result := order.ValidateAmount(req.Delta); !result.Allowed {
		return result.Error()
	}
	name := order.NormalizeProductName(req.ProductName)

	return withLock(ctx, s.locker, orderLockKey(req.OrderID), func() error {
		record, err := s.orderRepo.GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}

		item, err := s.itemRepo.Find(ctx, req.OrderID, name, true)
		if err != nil {
			return fmt.Errorf("failed to look up item: %w", err)
		}

		guardCtx := order.ItemMutationContext{
			ProductName:    name,
			OrderCompleted: record.Completed,
			ItemFound:      item != nil,
		}
		if result := order.CanMutateItem(guardCtx); !result.Allowed {
			return result.Error()
		}

		return apply(item)
	})
}

// RemoveItem removes a product line, completed or not.
func (s *OrderServiceImpl) RemoveItem(ctx context.Context, orderID int64, productName string) error {
	name := order.NormalizeProductName(productName)

	return withLock(ctx, s.locker, orderLockKey(orderID), func() error {
		record, err := s.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		existing, err := s.itemRepo.Find(ctx, orderID, name, false)
		if err != nil {
			return fmt.Errorf("failed to look up item: %w", err)
		}

		guardCtx := order.RemoveItemContext{
			ProductName:    name,
			OrderCompleted: record.Completed,
			ItemExists:     existing != nil,
		}
		if result := order.CanRemoveItem(guardCtx); !result.Allowed {
			return result.Error()
		}

		return s.itemRepo.Delete(ctx, orderID, name)
	})
}

// CloseOrder marks the order completed. Only the creator may close it.
func (s *OrderServiceImpl) CloseOrder(ctx context.Context, orderID int64, requesterID string) error {
	return withLock(ctx, s.locker, orderLockKey(orderID), func() error {
		record, err := s.orderRepo.GetByID(ctx, orderID)
		if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}

		guardCtx := order.CloseOrderContext{
			OrderExists: record != nil,
			RequesterID: requesterID,
		}
		if record != nil {
			guardCtx.CreatorID = record.CreatorID
			guardCtx.Completed = record.Completed
		}
		if result := order.CanCloseOrder(guardCtx); !result.Allowed {
			return result.Error()
		}

		if err := s.orderRepo.MarkCompleted(ctx, orderID); err != nil {
			return fmt.Errorf("failed to close order: %w", err)
		}
		return nil
	})
}

// GetOrder retrieves an order with its items.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, orderID int64) (*primary.Order, error) {
	record, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	o := s.recordToOrder(record)
	o.Items = make([]*primary.OrderItem, len(items))
	for i, it := range items {
		o.Items[i] = s.itemRecordToItem(it)
	}
	return o, nil
}

// ListOrders lists orders, open ones only unless includeCompleted is set.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, includeCompleted bool) ([]*primary.Order, error) {
	records, err := s.orderRepo.List(ctx, secondary.OrderFilters{IncludeCompleted: includeCompleted})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*primary.Order, len(records))
	for i, r := range records {
		orders[i] = s.recordToOrder(r)
	}
	return orders, nil
}

// Helper methods

func (s *OrderServiceImpl) recordToOrder(r *secondary.OrderRecord) *primary.Order {
	return &primary.Order{
		ID:        r.ID,
		ThreadKey: r.ThreadKey,
		CreatorID: r.CreatorID,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt,
	}
}

func (s *OrderServiceImpl) itemRecordToItem(r *secondary.OrderItemRecord) *primary.OrderItem {
	return &primary.OrderItem{
		ID:          r.ID,
		OrderID:     r.OrderID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		Progress:    r.Progress,
		Completed:   r.Completed,
	}
}

// Ensure OrderServiceImpl implements the interface
var _ primary.OrderService = (*OrderServiceImpl)(nil)
