// Package summary renders an order into the canonical text shown in the
// pinned status message. This is part of the Functional Core - no I/O.
package summary

import (
	"fmt"
	"slices"
	"strings"
)

// CompletedMarker is appended to completed product lines.
const CompletedMarker = "✅"

const (
	statusInProgress = "IN PROGRESS"
	statusDone       = "DONE"
)

// Order is the order state needed for rendering.
type Order struct {
	ID        int64
	ThreadKey string
	Completed bool
}

// Item is a product line as rendered.
type Item struct {
	ProductName string
	Quantity    int32
	Progress    int32
	Completed   bool
}

// Render produces the order report. Items are listed by product name
// ascending regardless of input order.
func Render(o Order, items []Item) string {
	if len(items) == 0 {
		return fmt.Sprintf("Order '%s' (ID: %d) has no products yet.", o.ThreadKey, o.ID)
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		return strings.Compare(a.ProductName, b.ProductName)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s (ID: %d)\n", o.ThreadKey, o.ID)
	fmt.Fprintf(&b, "Status: %s\n", StatusLabel(o.Completed))
	b.WriteString("Products:\n")
	for _, it := range sorted {
		b.WriteString(Line(it))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderMissing is the report for an order id that does not resolve.
func RenderMissing(orderID int64) string {
	return fmt.Sprintf("Order with ID %d does not exist.", orderID)
}

// Line formats a single product line.
func Line(it Item) string {
	line := fmt.Sprintf("%s: %d/%d", it.ProductName, it.Progress, it.Quantity)
	if it.Completed {
		line += CompletedMarker
	}
	return line
}

// StatusLabel maps the order completion flag to its display label.
func StatusLabel(completed bool) string {
	if completed {
		return statusDone
	}
	return statusInProgress
}

// CodeBlock wraps a report in a chat code block.
func CodeBlock(report string) string {
	if !strings.HasSuffix(report, "\n") {
		report += "\n"
	}
	return "```\n" + report + "```"
}
