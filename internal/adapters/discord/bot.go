package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/example/orderbot/internal/config"
	"github.com/example/orderbot/internal/ports/primary"
)

// Bot owns the gateway connection.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	cfg     config.DiscordConfig
	logger  zerolog.Logger
}

// NewBot creates a bot. Nothing connects until Run.
func NewBot(cfg config.DiscordConfig, commands primary.CommandService, logger zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return &Bot{
		session: session,
		handler: NewHandler(stateSession{session}, commands, logger),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Run connects, registers commands and serves interactions until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.handler.SetSelfID(r.User.ID)
		b.logger.Info().Str("user", r.User.String()).Msg("bot ready")
	})
	b.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		b.handler.Handle(ctx, ic.Interaction)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	defer b.session.Close()

	registered, err := RegisterCommands(stateSession{b.session}, b.cfg.AppID, b.cfg.GuildID)
	if err != nil {
		return err
	}
	b.logger.Info().Int("count", len(registered)).Str("guild", b.cfg.GuildID).Msg("commands registered")

	<-ctx.Done()
	b.logger.Info().Msg("bot shutting down")
	return nil
}
