// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/orderbot/internal/core/order"
	"github.com/example/orderbot/internal/core/summary"
	"github.com/example/orderbot/internal/ports/primary"
	"github.com/example/orderbot/internal/ports/secondary"
)

// OrderAdapter is a thin adapter that translates CLI operations to order
// service calls. It depends only on interfaces, enabling easy testing with mocks.
type OrderAdapter struct {
	orders    primary.OrderService
	directory primary.OrderDirectory
	summaries primary.SummaryService
	catalog   secondary.ProductCatalog
	out       io.Writer
}

// NewOrderAdapter creates a new OrderAdapter.
func NewOrderAdapter(
	orders primary.OrderService,
	directory primary.OrderDirectory,
	summaries primary.SummaryService,
	catalog secondary.ProductCatalog,
	out io.Writer,
) *OrderAdapter {
	return &OrderAdapter{
		orders:    orders,
		directory: directory,
		summaries: summaries,
		catalog:   catalog,
		out:       out,
	}
}

// List lists orders, open ones only unless all is set.
func (a *OrderAdapter) List(ctx context.Context, all bool) error {
	orders, err := a.orders.ListOrders(ctx, all)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-22s %-13s %-20s %s\n", "ID", "THREAD", "STATUS", "CREATOR", "CREATED")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────────")
	for _, o := range orders {
		fmt.Fprintf(a.out, "%-6d %-22s %-13s %-20s %s\n", o.ID, o.ThreadKey, statusText(o.Completed), o.CreatorID, o.CreatedAt)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show prints the report for the order bound to threadKey.
func (a *OrderAdapter) Show(ctx context.Context, threadKey string) error {
	orderID, ok, err := a.directory.Resolve(ctx, threadKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no order found for thread %s", threadKey)
	}

	o, err := a.orders.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}

	fmt.Fprintf(a.out, "\nOrder:   %d\n", o.ID)
	fmt.Fprintf(a.out, "Thread:  %s\n", o.ThreadKey)
	fmt.Fprintf(a.out, "Creator: %s\n", o.CreatorID)
	fmt.Fprintf(a.out, "Status:  %s\n", statusText(o.Completed))
	fmt.Fprintln(a.out)

	if len(o.Items) == 0 {
		fmt.Fprintln(a.out, "No products yet")
		return nil
	}

	for _, it := range o.Items {
		line := summary.Line(summary.Item{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Progress:    it.Progress,
			Completed:   it.Completed,
		})
		status := order.StatusOf(it.Completed)
		if status == order.ItemCompleted {
			line = color.New(color.FgHiGreen).Sprint(line)
		}
		fmt.Fprintf(a.out, "  %-10s %s\n", status, line)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Report prints the exact text shown in the pinned status message.
func (a *OrderAdapter) Report(ctx context.Context, orderID int64) error {
	report, err := a.summaries.Render(ctx, orderID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, summary.CodeBlock(report))
	return nil
}

// Products lists dictionary names matching partial.
func (a *OrderAdapter) Products(partial string) error {
	var names []string
	if a.catalog != nil {
		names = a.catalog.Names()
	}
	if partial != "" {
		names = order.MatchNames(names, partial, len(names))
	}

	if len(names) == 0 {
		fmt.Fprintln(a.out, "No products found")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(a.out, n)
	}
	return nil
}

func statusText(completed bool) string {
	label := summary.StatusLabel(completed)
	if completed {
		return color.New(color.FgHiGreen).Sprint(label)
	}
	return color.New(color.FgYellow).Sprint(label)
}
