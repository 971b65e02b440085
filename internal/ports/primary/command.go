package primary

import (
	"context"

	"github.com/example/orderbot/internal/ports/secondary"
)

// CommandService defines the primary port exposed to chat adapters. Each
// method handles one slash command end to end: thread resolution, engine
// call, status synchronization and reply text.
type CommandService interface {
	CreateOrder(ctx context.Context, inv Invocation) (*Reply, error)
	AddProduct(ctx context.Context, inv Invocation, productName string, quantity int64) (*Reply, error)
	UpdateProgress(ctx context.Context, inv Invocation, productName string, progress int64) (*Reply, error)
	AdjustQuantity(ctx context.Context, inv Invocation, productName string, quantity int64) (*Reply, error)
	RemoveProduct(ctx context.Context, inv Invocation, productName string) (*Reply, error)
	ShowOrder(ctx context.Context, inv Invocation) (*Reply, error)
	CloseOrder(ctx context.Context, inv Invocation) (*Reply, error)

	// SuggestOrderProducts completes product names of the thread's order.
	SuggestOrderProducts(ctx context.Context, threadKey, partial string) ([]string, error)

	// SuggestKnownProducts completes names from the dictionary and from
	// incomplete items of open orders.
	SuggestKnownProducts(ctx context.Context, partial string) ([]string, error)
}

// StatusSyncService defines the primary port for the status synchronizer.
type StatusSyncService interface {
	// Sync makes the thread's single pinned status message show the latest
	// rendering of the order.
	Sync(ctx context.Context, thread secondary.ChatThread, orderID int64) error
}

// Invocation describes who invoked a command and where.
type Invocation struct {
	Thread   secondary.ChatThread
	InThread bool
	UserID   string
}

// Reply is what the adapter sends back to the invoking user.
type Reply struct {
	Content string
	// Public replies are visible to the whole thread; others only to the invoker.
	Public bool
	// Warning is set when the mutation committed but the status message
	// could not be updated.
	Warning string
}
