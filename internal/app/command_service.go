package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/core/order"
	"github.com/example/orderbot/internal/core/summary"
	"github.com/example/orderbot/internal/ctxutil"
	"github.com/example/orderbot/internal/ports/primary"
	"github.com/example/orderbot/internal/ports/secondary"
)

// syncWarning is shown next to a successful reply when the status message
// could not be refreshed.
const syncWarning = "The order was updated, but the pinned status message could not be refreshed."

// CommandServiceImpl implements the CommandService interface. It resolves
// the thread's order, calls the engine, refreshes the status message and
// builds the reply.
type CommandServiceImpl struct {
	orders    primary.OrderService
	directory primary.OrderDirectory
	summaries primary.SummaryService
	statuses  primary.StatusSyncService
	itemRepo  secondary.OrderItemRepository
	catalog   secondary.ProductCatalog
	logger    zerolog.Logger
}

// NewCommandService creates a new CommandService with injected dependencies.
func NewCommandService(
	orders primary.OrderService,
	directory primary.OrderDirectory,
	summaries primary.SummaryService,
	statuses primary.StatusSyncService,
	itemRepo secondary.OrderItemRepository,
	catalog secondary.ProductCatalog,
	logger zerolog.Logger,
) *CommandServiceImpl {
	return &CommandServiceImpl{
		orders:    orders,
		directory: directory,
		summaries: summaries,
		statuses:  statuses,
		itemRepo:  itemRepo,
		catalog:   catalog,
		logger:    logger,
	}
}

// CreateOrder binds a new order to the invoking thread.
func (s *CommandServiceImpl) CreateOrder(ctx context.Context, inv primary.Invocation) (*primary.Reply, error) {
	return s.run(ctx, "create-order", inv, func(ctx context.Context, log zerolog.Logger) (*primary.Reply, error) {
		created, err := s.orders.CreateOrder(ctx, primary.CreateOrderRequest{
			ThreadKey: inv.Thread.Key(),
			InThread:  inv.InThread,
			CreatorID: inv.UserID,
		})
		if err != nil {
			return nil, err
		}

		reply := &primary.Reply{Content: fmt.Sprintf("Order created in this thread (ID: %d).", created.ID)}
		s.syncStatus(ctx, log, inv, created.ID, reply)
		return reply, nil
	})
}

// AddProduct adds a product line to the thread's order.
func (s *CommandServiceImpl) AddProduct(ctx context.Context, inv primary.Invocation, productName string, quantity int64) (*primary.Reply, error) {
	return s.run(ctx, "add-product", inv, func(ctx context.Context, log zerolog.Logger) (*primary.Reply, error) {
		// Amount errors take precedence over a missing order.
		if result := order.ValidateAmount(quantity); !result.Allowed {
			return nil, result.Error()
		}
		orderID, err := s.resolve(ctx, inv)
		if err != nil {
			return nil, err
		}

		item, err := s.orders.AddItem(ctx, primary.AddItemRequest{
			OrderID:     orderID,
			ProductName: productName,
			Quantity:    quantity,
		})
		if err != nil {
			return nil, err
		}

		reply := &primary.Reply{Content: fmt.Sprintf("Product '%s' has been added to the order.", item.ProductName)}
		s.syncStatus(ctx, log, inv, orderID, reply)
		return reply, nil
	})
}

// UpdateProgress records progress on an incomplete product line.
func (s *CommandServiceImpl) UpdateProgress(ctx context.Context, inv primary.Invocation, productName string, progress int64) (*primary.Reply, error) {
	return s.run(ctx, "update-progress", inv, func(ctx context.Context, log zerolog.Logger) (*primary.Reply, error) {
		if result := order.ValidateAmount(progress); !result.Allowed {
			return nil, result.Error()
		}
		orderID, err := s.resolve(ctx, inv)
		if err != nil {
			return nil, err
		}

		item, err := s.orders.UpdateProgress(ctx, primary.ItemDeltaRequest{
			OrderID:     orderID,
			ProductName: productName,
			Delta:       progress,
		})
		if err != nil {
			return nil, err
		}

		reply := &primary.Reply{Content: ProgressReply(item), Public: true}
		s.syncStatus(ctx, log, inv, orderID, reply)
		return reply, nil
	})
}

// AdjustQuantity raises the requested quantity of an incomplete product line.
func (s *CommandServiceImpl) AdjustQuantity(ctx context.Context, inv primary.Invocation, productName string, quantity int64) (*primary.Reply, error) {
	return s.run(ctx, "adjust-quantity", inv, func(ctx context.Context, log zerolog.Logger) (*primary.Reply, error) {
		if result := order.ValidateAmount(quantity); !result.Allowed {
			return nil, result.Error()
		}
		orderID, err := s.resolve(ctx, inv)
		if err != nil {
			return nil, err
		}

		item, err := s.orders.AdjustQuantity(ctx, primary.ItemDeltaRequest{
			OrderID:     orderID,
			ProductName: productName,
			Delta:       quantity,
		})
		if err != nil {
			return nil, err
		}

		reply := &primary.Reply{
			Content: fmt.Sprintf("Updated the requested quantity of product '%s'.", item.ProductName),
			Public:  true,
		}
		s.syncStatus(ctx, log, inv, orderID, reply)
		return reply, nil
	})
}

// RemoveProduct removes a product line from the thread's order.
func (s *CommandServiceImpl) RemoveProduct(ctx context.Context, inv primary.Invocation, productName string) (*primary.Reply, error) {
	return s.run(ctx, "remove-product", inv, func(ctx context.Context, log zerolog.Logger) (*primary.Reply, error) {
		orderID, err := s.resolve(ctx, inv)
		if err != nil {
			return nil, err
		}

		if err := s.orders.RemoveItem(ctx, orderID, productName); err != nil {
			return nil, err
		}

		reply := &primary.Reply{
			Content: fmt.Sprintf("Product '%s' has been removed from the order.", order.NormalizeProductName(productName)),
		}
		s.syncStatus(ctx, log, inv, orderID, reply)
		return reply, nil
	})
}

// ShowOrder replies privately with the current report.
func (s *CommandServiceImpl) ShowOrder(ctx context.Context, inv primary.Invocation) (*primary.Reply, error) {
	return s.run(ctx, "show-order", inv, func(ctx context.Context, _ zerolog.Logger) (*primary.Reply, error) {
		orderID, err := s.resolve(ctx, inv)
		if err != nil {
			return nil, err
		}

		report, err := s.summaries.Render(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &primary.Reply{Content: summary.CodeBlock(report)}, nil
	})
}

// CloseOrder marks the thread's order completed.
func (s *CommandServiceImpl) CloseOrder(ctx context.Context, inv primary.Invocation) (*primary.Reply, error) {
	return s.run(ctx, "close-order", inv, func(ctx context.Context, log zerolog.Logger) (*primary.Reply, error) {
		orderID, err := s.resolve(ctx, inv)
		if err != nil {
			return nil, err
		}

		if err := s.orders.CloseOrder(ctx, orderID, inv.UserID); err != nil {
			return nil, err
		}

		reply := &primary.Reply{Content: "The order has been marked as completed.", Public: true}
		s.syncStatus(ctx, log, inv, orderID, reply)
		return reply, nil
	})
}

// SuggestOrderProducts completes product names of the thread's order.
func (s *CommandServiceImpl) SuggestOrderProducts(ctx context.Context, threadKey, partial string) ([]string, error) {
	orderID, ok, err := s.directory.Resolve(ctx, threadKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(o.Items))
	for i, it := range o.Items {
		names[i] = it.ProductName
	}
	return order.MatchNames(names, partial, order.MaxSuggestions), nil
}

// SuggestKnownProducts completes names from the dictionary followed by names
// of incomplete items in open orders.
func (s *CommandServiceImpl) SuggestKnownProducts(ctx context.Context, partial string) ([]string, error) {
	open, err := s.itemRepo.ListOpenProductNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list product names: %w", err)
	}

	var names []string
	if s.catalog != nil {
		names = append(names, s.catalog.Names()...)
	}
	names = append(names, open...)
	return order.MatchNames(names, partial, order.MaxSuggestions), nil
}

// ProgressReply is the public reply to a successful progress update.
func ProgressReply(item *primary.OrderItem) string {
	if item.Completed {
		return fmt.Sprintf("Product '%s' completed! (%d/%d)", item.ProductName, item.Quantity, item.Quantity)
	}
	return fmt.Sprintf("Updated product '%s': %d/%d.", item.ProductName, item.Progress, item.Quantity)
}

// resolve maps the invoking thread to its order.
func (s *CommandServiceImpl) resolve(ctx context.Context, inv primary.Invocation) (int64, error) {
	orderID, ok, err := s.directory.Resolve(ctx, inv.Thread.Key())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperr.ErrNoOrderInThread()
	}
	return orderID, nil
}

// syncStatus refreshes the pinned status message. A failure leaves the
// committed mutation in place and attaches a warning to the reply.
func (s *CommandServiceImpl) syncStatus(ctx context.Context, log zerolog.Logger, inv primary.Invocation, orderID int64, reply *primary.Reply) {
	if err := s.statuses.Sync(ctx, inv.Thread, orderID); err != nil {
		log.Warn().Err(err).Int64("order_id", orderID).Msg("status sync failed")
		reply.Warning = syncWarning
	}
}

// run wraps a command with an invocation id, logging and error mapping.
// Recoverable failures become private replies; anything else is returned.
func (s *CommandServiceImpl) run(
	ctx context.Context,
	command string,
	inv primary.Invocation,
	fn func(ctx context.Context, log zerolog.Logger) (*primary.Reply, error),
) (*primary.Reply, error) {
	invocationID := uuid.NewString()
	ctx = ctxutil.WithInvocationID(ctxutil.WithActorID(ctx, inv.UserID), invocationID)

	threadKey := ""
	if inv.Thread != nil {
		threadKey = inv.Thread.Key()
	}
	log := s.logger.With().
		Str("invocation_id", invocationID).
		Str("command", command).
		Str("thread", threadKey).
		Str("user", inv.UserID).
		Logger()

	start := time.Now()
	reply, err := fn(ctx, log)
	elapsed := time.Since(start)

	if err == nil {
		log.Info().Dur("duration", elapsed).Bool("public", reply.Public).Msg("command handled")
		return reply, nil
	}

	kind := apperr.KindOf(err)
	if apperr.IsRecoverable(err) {
		log.Info().Dur("duration", elapsed).Str("kind", kind.String()).Str("reason", apperr.UserMessage(err)).Msg("command rejected")
		return &primary.Reply{Content: apperr.UserMessage(err)}, nil
	}

	log.Error().Err(err).Dur("duration", elapsed).Str("kind", kind.String()).Msg("command failed")
	return nil, err
}

// Ensure CommandServiceImpl implements the interface
var _ primary.CommandService = (*CommandServiceImpl)(nil)
