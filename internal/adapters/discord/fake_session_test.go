package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/example/orderbot/internal/ports/primary"
)

// fakeSession implements sessionAPI in memory.
type fakeSession struct {
	mu        sync.Mutex
	channels  map[string]*discordgo.Channel
	messages  map[string][]*discordgo.Message // oldest first
	nextID    int
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	deletes   int
	followups []*discordgo.WebhookParams
	// calls records interaction API calls in order: respond, edit, delete, followup.
	calls []string
	commands  []*discordgo.ApplicationCommand
	lastLimit int

	channelErr error
	sendErr    error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		channels: make(map[string]*discordgo.Channel),
		messages: make(map[string][]*discordgo.Message),
	}
}

func (f *fakeSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("unknown channel")
	}
	return ch, nil
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	msgs := f.messages[channelID]
	var result []*discordgo.Message
	for i := len(msgs) - 1; i >= 0 && len(result) < limit; i-- {
		c := *msgs[i]
		result = append(result, &c)
	}
	return result, nil
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	m := &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", f.nextID),
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: "bot"},
	}
	f.messages[channelID] = append(f.messages[channelID], m)
	return m, nil
}

func (f *fakeSession) ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[channelID] {
		if m.ID == messageID {
			m.Content = content
			return m, nil
		}
	}
	return nil, errors.New("unknown message")
}

func (f *fakeSession) ChannelMessagePin(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[channelID] {
		if m.ID == messageID {
			m.Pinned = true
			return nil
		}
	}
	return errors.New("unknown message")
}

func (f *fakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	f.calls = append(f.calls, "respond")
	return nil
}

func (f *fakeSession) InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, newresp)
	f.calls = append(f.calls, "edit")
	return &discordgo.Message{}, nil
}

func (f *fakeSession) InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	f.calls = append(f.calls, "delete")
	return nil
}

// editedContent returns the content of the n-th response edit.
func (f *fakeSession) editedContent(n int) string {
	if n >= len(f.edits) || f.edits[n].Content == nil {
		return ""
	}
	return *f.edits[n].Content
}

func (f *fakeSession) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	f.calls = append(f.calls, "followup")
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.commands = commands
	return commands, nil
}

// mockCommandService implements primary.CommandService with function fields.
type mockCommandService struct {
	CreateOrderFn          func(ctx context.Context, inv primary.Invocation) (*primary.Reply, error)
	AddProductFn           func(ctx context.Context, inv primary.Invocation, name string, quantity int64) (*primary.Reply, error)
	UpdateProgressFn       func(ctx context.Context, inv primary.Invocation, name string, progress int64) (*primary.Reply, error)
	AdjustQuantityFn       func(ctx context.Context, inv primary.Invocation, name string, quantity int64) (*primary.Reply, error)
	RemoveProductFn        func(ctx context.Context, inv primary.Invocation, name string) (*primary.Reply, error)
	ShowOrderFn            func(ctx context.Context, inv primary.Invocation) (*primary.Reply, error)
	CloseOrderFn           func(ctx context.Context, inv primary.Invocation) (*primary.Reply, error)
	SuggestOrderProductsFn func(ctx context.Context, threadKey, partial string) ([]string, error)
	SuggestKnownProductsFn func(ctx context.Context, partial string) ([]string, error)
}

func (m *mockCommandService) CreateOrder(ctx context.Context, inv primary.Invocation) (*primary.Reply, error) {
	return m.CreateOrderFn(ctx, inv)
}

func (m *mockCommandService) AddProduct(ctx context.Context, inv primary.Invocation, name string, quantity int64) (*primary.Reply, error) {
	return m.AddProductFn(ctx, inv, name, quantity)
}

func (m *mockCommandService) UpdateProgress(ctx context.Context, inv primary.Invocation, name string, progress int64) (*primary.Reply, error) {
	return m.UpdateProgressFn(ctx, inv, name, progress)
}

func (m *mockCommandService) AdjustQuantity(ctx context.Context, inv primary.Invocation, name string, quantity int64) (*primary.Reply, error) {
	return m.AdjustQuantityFn(ctx, inv, name, quantity)
}

func (m *mockCommandService) RemoveProduct(ctx context.Context, inv primary.Invocation, name string) (*primary.Reply, error) {
	return m.RemoveProductFn(ctx, inv, name)
}

func (m *mockCommandService) ShowOrder(ctx context.Context, inv primary.Invocation) (*primary.Reply, error) {
	return m.ShowOrderFn(ctx, inv)
}

func (m *mockCommandService) CloseOrder(ctx context.Context, inv primary.Invocation) (*primary.Reply, error) {
	return m.CloseOrderFn(ctx, inv)
}

func (m *mockCommandService) SuggestOrderProducts(ctx context.Context, threadKey, partial string) ([]string, error) {
	return m.SuggestOrderProductsFn(ctx, threadKey, partial)
}

func (m *mockCommandService) SuggestKnownProducts(ctx context.Context, partial string) ([]string, error) {
	return m.SuggestKnownProductsFn(ctx, partial)
}

var _ primary.CommandService = (*mockCommandService)(nil)
