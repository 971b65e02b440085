package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/orderbot/internal/wire"
)

// ServeCmd returns the command that runs the Discord bot.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot",
		Long: `Connect to Discord, register the slash commands and handle them until
interrupted. When http.addr is configured the read-only ops API runs alongside.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return serve(ctx, a)
		},
	}
}

// serve runs the bot and the optional HTTP API. The first one to stop stops
// the other.
func serve(ctx context.Context, a *wire.App) error {
	bot, err := a.Bot()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	running := 1
	go func() { errCh <- bot.Run(ctx) }()

	if srv := a.HTTPServer(); srv != nil {
		running++
		go func() { errCh <- srv.Run(ctx) }()
	}

	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
		cancel()
	}

	a.Logger.Info().Msg("orderbot stopped")
	return firstErr
}
