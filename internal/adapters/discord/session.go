// Package discord adapts a discordgo session to the chat ports: threads for
// the status synchronizer and slash commands for the command service.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/example/orderbot/internal/ports/secondary"
)

// sessionAPI is the subset of *discordgo.Session used by this package.
type sessionAPI interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessagePin(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// stateSession prefers the gateway state cache for channel lookups.
type stateSession struct {
	*discordgo.Session
}

func (s stateSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if s.State != nil {
		if ch, err := s.State.Channel(channelID); err == nil {
			return ch, nil
		}
	}
	return s.Session.Channel(channelID, options...)
}

// Thread implements secondary.ChatThread for one Discord channel or thread.
type Thread struct {
	api       sessionAPI
	channelID string
	selfID    string
}

// NewThread wraps a channel. selfID is the bot user's ID, used to recognize
// the bot's own status message.
func NewThread(api sessionAPI, channelID, selfID string) *Thread {
	return &Thread{api: api, channelID: channelID, selfID: selfID}
}

// Key returns the channel ID.
func (t *Thread) Key() string {
	return t.channelID
}

// RecentMessages returns up to limit messages, newest first.
func (t *Thread) RecentMessages(ctx context.Context, limit int) ([]secondary.ChatMessage, error) {
	msgs, err := t.api.ChannelMessages(t.channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to read messages in %s: %w", t.channelID, err)
	}

	result := make([]secondary.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, secondary.ChatMessage{
			ID:       m.ID,
			Content:  m.Content,
			Pinned:   m.Pinned,
			FromSelf: m.Author != nil && m.Author.ID == t.selfID,
		})
	}
	return result, nil
}

// EditMessage replaces a message's content.
func (t *Thread) EditMessage(ctx context.Context, messageID, content string) error {
	if _, err := t.api.ChannelMessageEdit(t.channelID, messageID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit message %s: %w", messageID, err)
	}
	return nil
}

// SendMessage posts a message and returns its ID.
func (t *Thread) SendMessage(ctx context.Context, content string) (string, error) {
	m, err := t.api.ChannelMessageSend(t.channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", t.channelID, err)
	}
	return m.ID, nil
}

// PinMessage pins a message.
func (t *Thread) PinMessage(ctx context.Context, messageID string) error {
	if err := t.api.ChannelMessagePin(t.channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to pin message %s: %w", messageID, err)
	}
	return nil
}

var _ secondary.ChatThread = (*Thread)(nil)
