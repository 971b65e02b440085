package app

import (
	"context"
	"fmt"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/core/summary"
	"github.com/example/orderbot/internal/ports/primary"
	"github.com/example/orderbot/internal/ports/secondary"
)

// SummaryServiceImpl implements the SummaryService interface.
type SummaryServiceImpl struct {
	orderRepo secondary.OrderRepository
	itemRepo  secondary.OrderItemRepository
}

// NewSummaryService creates a new SummaryService with injected dependencies.
func NewSummaryService(
	orderRepo secondary.OrderRepository,
	itemRepo secondary.OrderItemRepository,
) *SummaryServiceImpl {
	return &SummaryServiceImpl{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
	}
}

// Render reads the order and its items and renders the report.
func (s *SummaryServiceImpl) Render(ctx context.Context, orderID int64) (string, error) {
	record, err := s.orderRepo.GetByID(ctx, orderID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return summary.RenderMissing(orderID), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load order: %w", err)
	}

	records, err := s.itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to load items: %w", err)
	}

	items := make([]summary.Item, len(records))
	for i, r := range records {
		items[i] = summary.Item{
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Progress:    r.Progress,
			Completed:   r.Completed,
		}
	}

	return summary.Render(summary.Order{
		ID:        record.ID,
		ThreadKey: record.ThreadKey,
		Completed: record.Completed,
	}, items), nil
}

// Ensure SummaryServiceImpl implements the interface
var _ primary.SummaryService = (*SummaryServiceImpl)(nil)
