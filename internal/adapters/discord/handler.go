package discord

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/ports/primary"
)

// interactionTimeout bounds the work done for one interaction.
const interactionTimeout = 10 * time.Second

// Handler dispatches interactions to the command service.
type Handler struct {
	api      sessionAPI
	commands primary.CommandService
	logger   zerolog.Logger
	selfID   atomic.Value // string
}

// NewHandler creates an interaction handler.
func NewHandler(api sessionAPI, commands primary.CommandService, logger zerolog.Logger) *Handler {
	h := &Handler{api: api, commands: commands, logger: logger}
	h.selfID.Store("")
	return h
}

// SetSelfID records the bot user's ID once the gateway is ready.
func (h *Handler) SetSelfID(id string) {
	h.selfID.Store(id)
}

func (h *Handler) self() string {
	return h.selfID.Load().(string)
}

// Handle processes one interaction.
func (h *Handler) Handle(ctx context.Context, i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(ctx, interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		h.handleAutocomplete(ctx, i)
	}
}

func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()

	// Acknowledge first; the reply is sent by editing the deferred response.
	if err := h.acknowledge(ctx, i, publicCommands[data.Name]); err != nil {
		h.logger.Error().Err(err).Str("interaction", i.ID).Str("command", data.Name).Msg("failed to acknowledge interaction")
		return
	}

	inv := primary.Invocation{
		Thread:   NewThread(h.api, i.ChannelID, h.self()),
		InThread: h.isThread(ctx, i.ChannelID),
		UserID:   interactionUserID(i),
	}
	opts := optionMap(data.Options)

	reply, err := h.dispatch(ctx, data.Name, inv, opts)
	if err != nil {
		reply = &primary.Reply{Content: apperr.UserMessage(err)}
	}
	h.respond(ctx, i, publicCommands[data.Name], reply)
}

// publicCommands are acknowledged visibly to the whole thread.
var publicCommands = map[string]bool{
	CommandUpdateProgress: true,
	CommandAdjustQuantity: true,
	CommandCloseOrder:     true,
}

func (h *Handler) acknowledge(ctx context.Context, i *discordgo.Interaction, public bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{},
	}
	if !public {
		resp.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	return h.api.InteractionRespond(i, resp, discordgo.WithContext(ctx))
}

func (h *Handler) dispatch(ctx context.Context, name string, inv primary.Invocation, opts options) (*primary.Reply, error) {
	product := opts.string(OptionProductName)

	switch name {
	case CommandCreateOrder:
		return h.commands.CreateOrder(ctx, inv)
	case CommandAddProduct:
		return h.commands.AddProduct(ctx, inv, product, opts.int(OptionQuantity))
	case CommandUpdateProgress:
		return h.commands.UpdateProgress(ctx, inv, product, opts.int(OptionProgress))
	case CommandAdjustQuantity:
		return h.commands.AdjustQuantity(ctx, inv, product, opts.int(OptionQuantity))
	case CommandRemoveProduct:
		return h.commands.RemoveProduct(ctx, inv, product)
	case CommandShowOrder:
		return h.commands.ShowOrder(ctx, inv)
	case CommandCloseOrder:
		return h.commands.CloseOrder(ctx, inv)
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
}

// respond fills in the deferred response. A private reply to a publicly
// deferred command replaces the placeholder with an ephemeral followup.
func (h *Handler) respond(ctx context.Context, i *discordgo.Interaction, deferredPublic bool, reply *primary.Reply) {
	if deferredPublic && !reply.Public {
		if err := h.api.InteractionResponseDelete(i, discordgo.WithContext(ctx)); err != nil {
			h.logger.Warn().Err(err).Str("interaction", i.ID).Msg("failed to remove deferred response")
		}
		h.followup(ctx, i, reply.Content)
	} else {
		content := reply.Content
		if _, err := h.api.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx)); err != nil {
			h.logger.Error().Err(err).Str("interaction", i.ID).Msg("failed to respond to interaction")
			return
		}
	}

	if reply.Warning != "" {
		h.followup(ctx, i, reply.Warning)
	}
}

func (h *Handler) followup(ctx context.Context, i *discordgo.Interaction, content string) {
	params := &discordgo.WebhookParams{Content: content, Flags: discordgo.MessageFlagsEphemeral}
	if _, err := h.api.FollowupMessageCreate(i, false, params, discordgo.WithContext(ctx)); err != nil {
		h.logger.Warn().Err(err).Str("interaction", i.ID).Msg("failed to send followup")
	}
}

func (h *Handler) handleAutocomplete(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	partial := focusedValue(data.Options)

	var (
		names []string
		err   error
	)
	if data.Name == CommandAddProduct {
		names, err = h.commands.SuggestKnownProducts(ctx, partial)
	} else {
		names, err = h.commands.SuggestOrderProducts(ctx, i.ChannelID, partial)
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("command", data.Name).Msg("autocomplete failed")
		names = nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, n := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n})
	}

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}
	if err := h.api.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		h.logger.Warn().Err(err).Str("interaction", i.ID).Msg("failed to send autocomplete choices")
	}
}

// isThread reports whether the channel is a thread. Lookup failures count as
// not a thread.
func (h *Handler) isThread(ctx context.Context, channelID string) bool {
	ch, err := h.api.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		h.logger.Warn().Err(err).Str("channel", channelID).Msg("channel lookup failed")
		return false
	}
	return ch.IsThread()
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) string(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) int(name string) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return 0
}

func focusedValue(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, o := range opts {
		if o.Focused {
			if s, ok := o.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}
