package secondary

import "context"

// ChatThread defines the secondary port for the conversation thread an order
// lives in. Implementations wrap a chat platform client.
type ChatThread interface {
	// Key returns the external thread identifier used as the order directory key.
	Key() string

	// RecentMessages returns up to limit of the newest messages, newest first.
	RecentMessages(ctx context.Context, limit int) ([]ChatMessage, error)

	// EditMessage replaces the content of an existing message.
	EditMessage(ctx context.Context, messageID, content string) error

	// SendMessage posts a new message and returns its ID.
	SendMessage(ctx context.Context, content string) (string, error)

	// PinMessage pins a message in the thread.
	PinMessage(ctx context.Context, messageID string) error
}

// ChatMessage is the subset of a chat message the status synchronizer needs.
type ChatMessage struct {
	ID       string
	Content  string
	Pinned   bool
	FromSelf bool // authored by this bot
}
